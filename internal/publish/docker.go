package publish

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/shinji-kodama/semrel/internal/model"
)

// pingTimeout bounds the daemon reachability check. Docker Desktop on
// macOS can take a few seconds to answer after waking up.
const pingTimeout = 5 * time.Second

// dockerHubAuthServer is the server address the daemon expects for
// Docker Hub credentials.
const dockerHubAuthServer = "https://index.docker.io/v1/"

// imageAPI is the subset of the Docker Engine client used for publishing.
// *client.Client satisfies it; tests substitute a fake.
type imageAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, ref string, options image.PushOptions) (io.ReadCloser, error)
	Close() error
}

// RegistryAuth holds optional registry credentials. When empty the push
// relies on credentials the daemon already has.
type RegistryAuth struct {
	Username string
	Password string

	// ServerAddress overrides the registry derived from the image name.
	ServerAddress string
}

// Docker publishes container images through the Docker Engine API.
type Docker struct {
	api imageAPI

	// Progress receives the daemon's push progress. Nil discards it.
	Progress io.Writer
}

// NewDocker connects to the Docker daemon. DOCKER_HOST is honored when set;
// otherwise the platform's default socket is located.
func NewDocker() (*Docker, error) {
	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		detected, err := detectDockerHost()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitPublishError, "Docker socket not found", err)
		}
		host = detected
	}

	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitPublishError,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}
	return &Docker{api: c}, nil
}

// Close releases the underlying client.
func (d *Docker) Close() error {
	if d.api == nil {
		return nil
	}
	return d.api.Close()
}

// Ping checks that the daemon is reachable.
func (d *Docker) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := d.api.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitPublishError, "Docker daemon is not responding; is Docker running?", err)
	}
	return nil
}

// PublishImage tags repo:latest as repo:version and pushes the new tag.
// It returns the pushed reference.
func (d *Docker) PublishImage(ctx context.Context, repo, version string, auth RegistryAuth) (string, error) {
	named, err := reference.ParseNormalizedNamed(repo)
	if err != nil {
		return "", model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("invalid image name %q", repo), err)
	}
	if _, tagged := named.(reference.Tagged); tagged {
		return "", model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("image name %q must not carry a tag", repo))
	}

	source := reference.FamiliarString(named) + ":latest"
	target := reference.FamiliarString(named) + ":" + version

	if err := d.api.ImageTag(ctx, source, target); err != nil {
		return "", model.WrapCLIError(model.ExitPublishError,
			fmt.Sprintf("failed to tag %s as %s", source, target), err)
	}

	encoded, err := encodeAuth(named, auth)
	if err != nil {
		return "", model.WrapCLIError(model.ExitPublishError, "failed to encode registry credentials", err)
	}

	stream, err := d.api.ImagePush(ctx, target, image.PushOptions{RegistryAuth: encoded})
	if err != nil {
		return "", model.WrapCLIError(model.ExitPublishError, fmt.Sprintf("failed to push %s", target), err)
	}
	defer stream.Close()

	// Push failures are reported inside the progress stream, not as an API
	// error, so the stream has to be read to the end.
	out := d.Progress
	if out == nil {
		out = io.Discard
	}
	if err := jsonmessage.DisplayJSONMessagesStream(stream, out, 0, false, nil); err != nil {
		return "", model.WrapCLIError(model.ExitPublishError, fmt.Sprintf("failed to push %s", target), err)
	}

	return target, nil
}

// encodeAuth builds the X-Registry-Auth header value. Without a username
// it returns "" so the daemon falls back to its own credential store.
func encodeAuth(named reference.Named, auth RegistryAuth) (string, error) {
	if auth.Username == "" {
		return "", nil
	}

	server := auth.ServerAddress
	if server == "" {
		server = reference.Domain(named)
	}
	if server == "docker.io" {
		server = dockerHubAuthServer
	}

	return registry.EncodeAuthConfig(registry.AuthConfig{
		Username:      auth.Username,
		Password:      auth.Password,
		ServerAddress: server,
	})
}

// detectDockerHost returns the daemon address for the current platform.
// Unix sockets are detected by file existence; the Windows named pipe is
// probed with a short dial because os.Stat does not work on pipes.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return firstUnixSocket("/var/run/docker.sock")
	case "darwin":
		candidates := []string{"/var/run/docker.sock"}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".docker", "run", "docker.sock"))
		}
		return firstUnixSocket(candidates...)
	case "windows":
		const pipe = `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipe, time.Second)
		if err != nil {
			return "", fmt.Errorf("docker named pipe not reachable at %s: %w", pipe, err)
		}
		conn.Close()
		return "npipe://" + pipe, nil
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// firstUnixSocket returns a unix:// URI for the first existing path.
func firstUnixSocket(paths ...string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return "unix://" + p, nil
		}
	}
	return "", fmt.Errorf("docker socket not found at any of %v", paths)
}
