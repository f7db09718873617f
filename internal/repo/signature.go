package repo

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/semrel/internal/model"
)

// ErrNoSignature is returned when no provider yields a complete committer
// name and email.
var ErrNoSignature = errors.New("no committer name and email found")

// SignatureProvider returns a committer signature from one source. A
// provider that finds nothing returns an incomplete signature, not an error.
type SignatureProvider func(ctx context.Context) (model.Signature, error)

// EnvSignature reads GIT_COMMITTER_NAME and GIT_COMMITTER_EMAIL through
// lookup (os.LookupEnv in production).
func EnvSignature(lookup func(string) (string, bool)) SignatureProvider {
	return func(context.Context) (model.Signature, error) {
		name, _ := lookup("GIT_COMMITTER_NAME")
		email, _ := lookup("GIT_COMMITTER_EMAIL")
		return model.Signature{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}, nil
	}
}

// GitConfigSignature reads user.name and user.email from one git config
// scope: "--local", "--global" or "--system".
func (r *Repository) GitConfigSignature(scope string) SignatureProvider {
	return func(ctx context.Context) (model.Signature, error) {
		name, err := r.configValue(ctx, scope, "user.name")
		if err != nil {
			return model.Signature{}, err
		}
		email, err := r.configValue(ctx, scope, "user.email")
		if err != nil {
			return model.Signature{}, err
		}
		return model.Signature{Name: name, Email: email}, nil
	}
}

// DefaultSignatureProviders returns the lookup chain used for release
// commits: environment, then local repository config, then user config,
// then system config.
func (r *Repository) DefaultSignatureProviders() []SignatureProvider {
	return []SignatureProvider{
		EnvSignature(os.LookupEnv),
		r.GitConfigSignature("--local"),
		r.GitConfigSignature("--global"),
		r.GitConfigSignature("--system"),
	}
}

// ResolveSignature tries each provider in order and returns the first
// complete signature. Provider errors stop the chain, because a broken git
// config should be reported rather than silently skipped.
func ResolveSignature(ctx context.Context, providers ...SignatureProvider) (model.Signature, error) {
	for _, p := range providers {
		sig, err := p(ctx)
		if err != nil {
			return model.Signature{}, model.WrapCLIError(model.ExitSignatureError,
				"failed to read the committer's name and email address", err)
		}
		if sig.IsComplete() {
			return sig, nil
		}
	}
	return model.Signature{}, model.WrapCLIError(model.ExitSignatureError,
		"failed to get the committer's name and email address", ErrNoSignature)
}

// configValue reads one key from a config scope. A missing key (git exits
// with status 1 and no output) is not an error.
func (r *Repository) configValue(ctx context.Context, scope, key string) (string, error) {
	out, err := r.git(ctx, "config", scope, "--get", key)
	if err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) && exitStatus(cliErr.Err) == 1 {
			return "", nil
		}
		// A scope whose file does not exist also counts as "not set".
		if strings.Contains(err.Error(), "unable to read config file") {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// exitStatus returns the process exit status carried by err, or -1.
func exitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
