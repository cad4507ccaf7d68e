package dfg

import (
	"fmt"
	"regexp"
	"strings"
)

// Classifier decides whether a statement defines a variable.
// Only one variable is reported per statement.
type Classifier interface {
	AssignedVariable(stmt string) (string, bool)
}

// ClassifierKind names a Classifier implementation in configuration.
type ClassifierKind string

const (
	ClassifierRegex      ClassifierKind = "regex"
	ClassifierTreeSitter ClassifierKind = "treesitter"
)

// ParseClassifierKind converts a config or flag value into a ClassifierKind.
// The empty string selects ClassifierRegex.
func ParseClassifierKind(s string) (ClassifierKind, error) {
	switch ClassifierKind(strings.ToLower(strings.TrimSpace(s))) {
	case "", ClassifierRegex:
		return ClassifierRegex, nil
	case ClassifierTreeSitter, "tree-sitter":
		return ClassifierTreeSitter, nil
	default:
		return "", fmt.Errorf("unknown classifier %q: must be %q or %q", s, ClassifierRegex, ClassifierTreeSitter)
	}
}

// NewClassifier returns a fresh classifier of the given kind.
func NewClassifier(kind ClassifierKind) Classifier {
	if kind == ClassifierTreeSitter {
		return NewTreeSitterClassifier()
	}
	return RegexClassifier{}
}

// RegexClassifier recognises definitions textually.
//
// A statement containing one of the type keywords int, float, double, char or
// void anywhere in its text (so "points" and "printf" count) is treated as a
// declaration and nothing else: it defines a variable only when it holds '='
// and matches "<type> <name> =". Every other statement is tried against the
// assignment forms in order: "x = ...", "x++", "x--", "++x", "--x",
// "x += ...", "x -= ...", "x *= ...", "x /= ...". A statement whose first '='
// belongs to an '==' is a comparison and defines nothing.
type RegexClassifier struct{}

var (
	typeKeywords       = []string{"int", "float", "double", "char", "void"}
	declarationPattern = regexp.MustCompile(`(int|float|double|char)\s+(\w+)\s*=`)

	assignmentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\w+)\s*=\s*[^=]`),
		regexp.MustCompile(`(\w+)\s*\+\+`),
		regexp.MustCompile(`(\w+)\s*--`),
		regexp.MustCompile(`\+\+\s*(\w+)`),
		regexp.MustCompile(`--\s*(\w+)`),
		regexp.MustCompile(`(\w+)\s*\+=`),
		regexp.MustCompile(`(\w+)\s*-=`),
		regexp.MustCompile(`(\w+)\s*\*=`),
		regexp.MustCompile(`(\w+)\s*/=`),
	}
)

// AssignedVariable implements Classifier.
func (RegexClassifier) AssignedVariable(stmt string) (string, bool) {
	if hasTypeKeyword(stmt) {
		if !strings.Contains(stmt, "=") {
			return "", false
		}
		if m := declarationPattern.FindStringSubmatch(stmt); m != nil {
			return m[2], true
		}
		return "", false
	}
	if isComparison(stmt) {
		return "", false
	}
	for _, p := range assignmentPatterns {
		if m := p.FindStringSubmatch(stmt); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// hasTypeKeyword is case sensitive and matches inside identifiers.
func hasTypeKeyword(stmt string) bool {
	for _, kw := range typeKeywords {
		if strings.Contains(stmt, kw) {
			return true
		}
	}
	return false
}

// isComparison reports whether the first '=' in stmt starts an "==".
func isComparison(stmt string) bool {
	eq := strings.Index(stmt, "==")
	return eq >= 0 && strings.Index(stmt, "=") >= eq
}
