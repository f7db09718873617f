// Package model defines the domain types and value objects for semrel.
//
// This package contains the data structures shared by the release decision
// engine and its collaborators: raw commit records read from git, the
// ChangeKind severity enumeration, classified commits, and the ReleasePlan
// produced for a single invocation. All values are transient; nothing in
// this package is persisted.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
