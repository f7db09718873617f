package config

import "fmt"

// Preflight lists the problems that will limit what a release run can do.
// It never fails: the run continues and skips the steps whose
// prerequisites are missing. remoteErr is the error from looking up the
// push remote, if any.
func Preflight(c *Config, remoteErr error) []string {
	var warnings []string

	if c.GitHubUsername == "" {
		warnings = append(warnings, "The GH_USERNAME environment variable is not configured")
	}
	if c.GitHubToken == "" {
		warnings = append(warnings, "The GH_TOKEN environment variable is not configured")
	}
	if c.CargoToken == "" {
		warnings = append(warnings,
			"The CARGO_TOKEN environment variable is not configured. Cannot create release on crates.io")
	}
	if c.DockerImage != "" && (c.DockerUsername == "") != (c.DockerPassword == "") {
		warnings = append(warnings,
			"Only one of DOCKER_USERNAME and DOCKER_PASSWORD is set; the image push will use the daemon's stored credentials")
	}
	if c.Summarize && c.OpenAIAPIKey == "" {
		warnings = append(warnings,
			"--summarize was requested but OPENAI_API_KEY is not configured; release highlights are skipped")
	}

	if remoteErr != nil {
		warnings = append(warnings,
			fmt.Sprintf("Could not determine the %s remote url: %v", c.Remote, remoteErr),
			"semrel can't push changes or create a release on GitHub")
	}

	return warnings
}
