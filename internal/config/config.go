// Package config assembles the single configuration value used by a
// release run.
//
// Values come from four layers, later layers overriding earlier ones:
//
//  1. built-in defaults
//  2. the repository file (.semrel.yml, .semrel.yaml or .semrel.json)
//  3. environment variables
//  4. command-line flags
//
// The resulting Config is built once at startup and passed by pointer to
// every collaborator. The release engine itself never sees it; it only
// receives primitive values extracted from it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/semrel/internal/model"
)

// Defaults applied before any other layer.
const (
	DefaultBranch        = "master"
	DefaultPackage       = "all"
	DefaultChangelog     = "CHANGELOG.md"
	DefaultTagPrefix     = "v"
	DefaultRemote        = "origin"
	DefaultSummaryModel  = "gpt-4o-mini"
	DefaultRepositoryDir = "."
)

// fileNames are the repository configuration files, in lookup order.
var fileNames = []string{".semrel.yml", ".semrel.yaml", ".semrel.json"}

// File is the on-disk repository configuration. Every field is optional.
type File struct {
	Branch    string `yaml:"branch" json:"branch"`
	Package   string `yaml:"package" json:"package"`
	Changelog string `yaml:"changelog" json:"changelog"`
	TagPrefix string `yaml:"tagPrefix" json:"tagPrefix"`

	Docker struct {
		// Image is the repository name of the container image to publish,
		// e.g. "ghcr.io/acme/widget".
		Image string `yaml:"image" json:"image"`

		// Registry is the server address used for authentication. Defaults
		// to the registry part of Image.
		Registry string `yaml:"registry" json:"registry"`
	} `yaml:"docker" json:"docker"`

	Summary struct {
		Model   string `yaml:"model" json:"model"`
		BaseURL string `yaml:"baseURL" json:"baseURL"`
	} `yaml:"summary" json:"summary"`
}

// Config is the fully resolved configuration for one run.
type Config struct {
	// RepositoryPath is the directory the tool operates on.
	RepositoryPath string

	// Branch is the only branch releases are made from.
	Branch string

	// Package selects the workspace member to version, or "all".
	Package string

	// ChangelogFile is relative to RepositoryPath.
	ChangelogFile string

	// TagPrefix is prepended to the version to form the tag name.
	TagPrefix string

	// Remote is the git remote pushed to.
	Remote string

	// Write enables modifying the repository (manifest, changelog, commit,
	// tag). When false the run is a dry run.
	Write bool

	// Release enables pushing and publishing. It is only ever true when
	// Write is true.
	Release bool

	// Summarize enables LLM release highlights in the hosted release body.
	Summarize bool

	GitHubUsername string
	GitHubToken    string
	CargoToken     string

	DockerImage    string
	DockerRegistry string
	DockerUsername string
	DockerPassword string

	SummaryModel   string
	SummaryBaseURL string
	OpenAIAPIKey   string

	// ConfigFile is the repository file that was loaded, empty if none.
	ConfigFile string
}

// Overrides carries command-line values. Nil or empty fields leave the
// lower layers untouched.
type Overrides struct {
	RepositoryPath string
	Branch         string
	Package        string

	// Write and Release are raw answers such as "yes" or "no".
	Write   *string
	Release *string

	Summarize bool
}

// LookupFunc reads an environment variable. os.LookupEnv in production.
type LookupFunc func(key string) (string, bool)

// Load builds a Config from defaults, the repository file found in the
// repository directory, the environment and the overrides.
func Load(lookup LookupFunc, o Overrides) (*Config, error) {
	cfg := &Config{
		RepositoryPath: DefaultRepositoryDir,
		Branch:         DefaultBranch,
		Package:        DefaultPackage,
		ChangelogFile:  DefaultChangelog,
		TagPrefix:      DefaultTagPrefix,
		Remote:         DefaultRemote,
		SummaryModel:   DefaultSummaryModel,
	}
	if o.RepositoryPath != "" {
		cfg.RepositoryPath = o.RepositoryPath
	}

	file, path, err := LoadFile(cfg.RepositoryPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		cfg.ConfigFile = path
		cfg.applyFile(file)
	}

	cfg.applyEnv(lookup)
	cfg.applyOverrides(o, lookup)
	return cfg, nil
}

// LoadFile reads the first repository configuration file present in dir.
// It returns the zero File and an empty path when there is none.
func LoadFile(dir string) (File, string, error) {
	var f File
	for _, name := range fileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return f, "", model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to read %s", path), err)
		}

		if strings.HasSuffix(name, ".json") {
			// Comments and trailing commas are allowed in the JSON form.
			err = json.Unmarshal(jsonc.ToJSON(data), &f)
		} else {
			err = yaml.Unmarshal(data, &f)
		}
		if err != nil {
			return f, "", model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse %s", path), err)
		}
		return f, path, nil
	}
	return f, "", nil
}

func (c *Config) applyFile(f File) {
	setIfNotEmpty(&c.Branch, f.Branch)
	setIfNotEmpty(&c.Package, f.Package)
	setIfNotEmpty(&c.ChangelogFile, f.Changelog)
	setIfNotEmpty(&c.TagPrefix, f.TagPrefix)
	setIfNotEmpty(&c.DockerImage, f.Docker.Image)
	setIfNotEmpty(&c.DockerRegistry, f.Docker.Registry)
	setIfNotEmpty(&c.SummaryModel, f.Summary.Model)
	setIfNotEmpty(&c.SummaryBaseURL, f.Summary.BaseURL)
}

func (c *Config) applyEnv(lookup LookupFunc) {
	env := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	c.GitHubUsername = env("GH_USERNAME")
	c.GitHubToken = env("GH_TOKEN")
	c.CargoToken = env("CARGO_TOKEN")
	c.DockerUsername = env("DOCKER_USERNAME")
	c.DockerPassword = env("DOCKER_PASSWORD")
	c.OpenAIAPIKey = env("OPENAI_API_KEY")
}

func (c *Config) applyOverrides(o Overrides, lookup LookupFunc) {
	setIfNotEmpty(&c.Branch, o.Branch)
	setIfNotEmpty(&c.Package, o.Package)
	c.Summarize = o.Summarize

	// Without an explicit answer, writing is enabled exactly when running
	// in CI.
	if o.Write != nil {
		c.Write = StringToBool(*o.Write)
	} else {
		_, c.Write = lookup("CI")
	}

	release := false
	if o.Release != nil {
		release = StringToBool(*o.Release)
	}
	c.Release = c.Write && release
}

// StringToBool interprets a yes/no answer. "yes", "true" and "1" (any case)
// are true; everything else is false.
func StringToBool(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "true", "1":
		return true
	default:
		return false
	}
}

// TagName returns the tag for version, e.g. "v1.2.3".
func (c *Config) TagName(version string) string {
	return c.TagPrefix + version
}

// CanPublishCargo reports whether crates.io credentials are present.
func (c *Config) CanPublishCargo() bool {
	return c.CargoToken != ""
}

// CanPublishDocker reports whether a container image is configured.
// Registry credentials are optional (the daemon may already be logged in).
func (c *Config) CanPublishDocker() bool {
	return c.DockerImage != ""
}

// CanSummarize reports whether release highlights were requested and an
// API key is available.
func (c *Config) CanSummarize() bool {
	return c.Summarize && c.OpenAIAPIKey != ""
}

func setIfNotEmpty(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
