package model

import "fmt"

// ExitCode defines standard CLI exit codes. Each failing collaborator has its
// own code so scripts and CI systems can tell which boundary failed.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully. "No release
	// needed" also exits with this code.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates invalid flags, a malformed configuration
	// file, or missing credentials that are required for the requested mode.
	ExitConfigError ExitCode = 2

	// ExitGitError indicates the repository could not be opened or a git
	// operation (log, commit, tag, push) failed.
	ExitGitError ExitCode = 3

	// ExitSignatureError indicates no committer name/email could be
	// resolved. This is raised before any write happens.
	ExitSignatureError ExitCode = 4

	// ExitFilesystemError indicates a manifest or changelog file could not
	// be read or written.
	ExitFilesystemError ExitCode = 5

	// ExitNetworkError indicates a hosting or registry API call failed.
	ExitNetworkError ExitCode = 6

	// ExitPublishError indicates a package registry publish step failed.
	ExitPublishError ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
