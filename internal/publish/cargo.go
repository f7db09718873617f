package publish

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shinji-kodama/semrel/internal/model"
)

// CommandRunner runs an external program in dir and returns its combined
// output. ExecRunner is the production implementation.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) (string, error)

// ExecRunner runs the program with os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) (string, error) {
	// #nosec G204 -- program and arguments are fixed by the publisher
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// Cargo drives the cargo CLI for a crate rooted at Dir.
type Cargo struct {
	Dir string
	Run CommandRunner
}

// NewCargo returns a Cargo publisher for the crate in dir.
func NewCargo(dir string) *Cargo {
	return &Cargo{Dir: dir, Run: ExecRunner}
}

// UpdateLockfile runs `cargo fetch` so Cargo.lock records the new version
// before it is committed.
func (c *Cargo) UpdateLockfile(ctx context.Context) error {
	return c.run(ctx, "fetch")
}

// Package verifies the crate builds from its packaged sources.
func (c *Cargo) Package(ctx context.Context) error {
	return c.run(ctx, "package", "--allow-dirty")
}

// Publish uploads the crate to crates.io with token.
func (c *Cargo) Publish(ctx context.Context, token string) error {
	if token == "" {
		return model.NewCLIError(model.ExitConfigError, "CARGO_TOKEN is required to publish to crates.io")
	}
	err := c.run(ctx, "publish", "--allow-dirty", "--token", token)
	if err != nil {
		// The token must not leak into logs through the error text.
		return redact(err, token)
	}
	return nil
}

func (c *Cargo) run(ctx context.Context, args ...string) error {
	out, err := c.Run(ctx, c.Dir, "cargo", args...)
	if err != nil {
		msg := fmt.Sprintf("cargo %s failed", args[0])
		if trimmed := strings.TrimSpace(out); trimmed != "" {
			msg = fmt.Sprintf("%s: %s", msg, trimmed)
		}
		return model.WrapCLIError(model.ExitPublishError, msg, err)
	}
	return nil
}

// redact replaces secret in the error text while keeping the exit code.
func redact(err error, secret string) error {
	code := model.ExitPublishError
	if cliErr, ok := err.(*model.CLIError); ok {
		code = cliErr.Code
	}
	return model.NewCLIError(code, strings.ReplaceAll(err.Error(), secret, "***"))
}
