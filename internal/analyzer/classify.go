// Package analyzer classifies commit messages against the conventional
// commit convention and reduces a commit stream to a single dominant
// ChangeKind.
//
// Everything in this package is a pure function of message text. Nothing
// here reads the repository, the environment or the network, so the same
// input always yields the same output.
package analyzer

import (
	"regexp"
	"strings"

	"github.com/shinji-kodama/semrel/internal/model"
)

// headerRegex matches a conventional commit header:
//
//	type(scope)!: subject
//
// Group 1 is the type token, group 2 the optional scope (without
// parentheses), group 3 the optional "!" marker and group 4 the subject.
// The type token is letters only; matching on it is case-insensitive.
var headerRegex = regexp.MustCompile(`^([A-Za-z]+)(?:\(([^()]*)\))?(!)?:[ \t]*(.*)$`)

// breakingFooterPrefixes are the body line prefixes that mark a commit as a
// breaking change. "BREAKING-CHANGE:" is the hyphenated synonym allowed by
// conventional commits 1.0.0.
var breakingFooterPrefixes = []string{"BREAKING CHANGE:", "BREAKING-CHANGE:"}

// typeKinds maps the type tokens that affect versioning to their kind.
// Every other type token (chore, docs, style, refactor, perf, test, build,
// ci, revert, or an unknown word) is unannotated.
var typeKinds = map[string]model.ChangeKind{
	"feat": model.KindFeature,
	"fix":  model.KindFix,
}

// Result is the outcome of classifying one commit message.
type Result struct {
	// Kind is the severity of the commit.
	Kind model.ChangeKind

	// Type is the lowercased type token, empty when the header did not match.
	Type string

	// Scope is the parenthesized scope, verbatim. Empty when absent.
	Scope string

	// Subject is the cleaned display text.
	Subject string
}

// Classify maps a commit message to its ChangeKind, scope and subject.
//
// Classification never fails. A message whose first line does not match
// the header grammar is unannotated, has no scope, and uses its trimmed
// first line as the subject.
func Classify(message string) Result {
	header, body, _ := strings.Cut(normalizeNewlines(message), "\n")
	header = strings.TrimSpace(header)

	m := headerRegex.FindStringSubmatch(header)
	if m == nil {
		return Result{Kind: model.KindUnannotated, Subject: header}
	}

	typ := strings.ToLower(m[1])
	res := Result{
		Kind:    typeKinds[typ],
		Type:    typ,
		Scope:   m[2],
		Subject: strings.TrimSpace(m[4]),
	}

	if m[3] == "!" || hasBreakingFooter(body) {
		res.Kind = model.KindBreaking
	}
	return res
}

// ClassifyCommit classifies a commit record and returns the annotated commit.
func ClassifyCommit(c model.CommitRecord) model.ClassifiedCommit {
	res := Classify(c.Message)
	return model.ClassifiedCommit{
		CommitRecord: c,
		Kind:         res.Kind,
		Scope:        res.Scope,
		Subject:      res.Subject,
	}
}

// hasBreakingFooter reports whether any body line starts with a breaking
// change footer token. The token is case-sensitive, as in the convention.
func hasBreakingFooter(body string) bool {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimLeft(line, " \t")
		for _, prefix := range breakingFooterPrefixes {
			if strings.HasPrefix(line, prefix) {
				return true
			}
		}
	}
	return false
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
