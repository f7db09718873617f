package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// logOut receives progress, warning and error lines. Results (plans,
// changelogs, JSON documents) go to the command's stdout instead, so that
// `semrel plan --json | jq` always sees clean output.
//
// It is rebound to the command's stderr before each run so tests can
// capture it with cmd.SetErr.
var logOut io.Writer = os.Stderr

// Severity prefixes. lipgloss drops the colors automatically when the
// output is not a terminal (CI logs, pipes, tests).
var (
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E5C07B"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
)

// Info prints a progress line. Progress lines are shown with or without
// --verbose.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(logOut, format+"\n", args...)
}

// Warn prints a warning. Warnings never stop a run.
func Warn(format string, args ...interface{}) {
	fmt.Fprintf(logOut, "%s: %s\n", warnStyle.Render("WARN"), fmt.Sprintf(format, args...))
}

// ErrorLog prints a non-fatal error, for steps that are allowed to fail
// without aborting the release.
func ErrorLog(format string, args ...interface{}) {
	fmt.Fprintf(logOut, "%s: %s\n", errorStyle.Render("ERROR"), fmt.Sprintf(format, args...))
}

// VerboseLog prints a message only when verbose mode is enabled.
func VerboseLog(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(logOut, "[verbose] "+format+"\n", args...)
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Commands use it to choose between printJSON and their text renderers.
func IsJSONOutput() bool {
	return jsonOutput
}

// printError outputs a fatal error in the format selected by --json.
// Both forms go to logOut: stdout is reserved for successful output.
func printError(message string, underlying error) {
	if jsonOutput {
		// {"error": {"message": ..., "detail": ...}}, detail only when an
		// underlying cause exists.
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(logOut, string(data))
		return
	}

	// Text format: "ERROR: <message>[: <cause>]".
	if underlying != nil {
		fmt.Fprintf(logOut, "%s: %s: %v\n", errorStyle.Render("ERROR"), message, underlying)
	} else {
		fmt.Fprintf(logOut, "%s: %s\n", errorStyle.Render("ERROR"), message)
	}
}

// printJSON writes v as indented JSON followed by a newline, the shape
// every --json document uses.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
