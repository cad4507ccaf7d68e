package cfg

import (
	"regexp"
	"strings"
)

// Trait is a bit set describing the control-flow features of one statement.
type Trait uint16

const (
	TraitIf Trait = 1 << iota
	TraitElse
	TraitWhile
	TraitFor
	TraitDo
	TraitSwitch
	TraitCase
	TraitDefault
	TraitReturn
	TraitBreak
	TraitContinue
	TraitOpenBrace
	TraitCloseBrace
)

// TraitControl is the set of keywords that make a statement a leader.
const TraitControl = TraitIf | TraitElse | TraitWhile | TraitFor | TraitDo | TraitSwitch | TraitCase

// Has reports whether any bit of other is set.
func (t Trait) Has(other Trait) bool {
	return t&other != 0
}

// StatementClassifier answers the textual questions the builder and linkers
// ask about a statement.
type StatementClassifier interface {
	Traits(stmt string) Trait
}

// KeywordClassifier looks for C keywords anywhere in the lowercased
// statement, so "double" carries TraitDo and "format" carries TraitFor.
// Braces are matched literally. It is the default for the heuristic linker.
type KeywordClassifier struct{}

var keywordOrder = []string{
	"if", "else", "while", "for", "do", "switch", "case", "default",
	"return", "break", "continue",
}

var keywordTraits = map[string]Trait{
	"if":       TraitIf,
	"else":     TraitElse,
	"while":    TraitWhile,
	"for":      TraitFor,
	"do":       TraitDo,
	"switch":   TraitSwitch,
	"case":     TraitCase,
	"default":  TraitDefault,
	"return":   TraitReturn,
	"break":    TraitBreak,
	"continue": TraitContinue,
}

// Traits implements StatementClassifier.
func (KeywordClassifier) Traits(stmt string) Trait {
	lower := strings.ToLower(stmt)
	var t Trait
	for _, kw := range keywordOrder {
		if strings.Contains(lower, kw) {
			t |= keywordTraits[kw]
		}
	}
	return t | braceTraits(stmt)
}

// TokenClassifier matches C keywords as whole words, ignoring case. It is
// the default for the structured linker, whose brace tracking would be
// thrown off by identifiers such as "double" or "format".
type TokenClassifier struct{}

var tokenPattern = regexp.MustCompile(`(?i)\b(if|else|while|for|do|switch|case|default|return|break|continue)\b`)

// Traits implements StatementClassifier.
func (TokenClassifier) Traits(stmt string) Trait {
	var t Trait
	for _, kw := range tokenPattern.FindAllString(stmt, -1) {
		t |= keywordTraits[strings.ToLower(kw)]
	}
	return t | braceTraits(stmt)
}

// DefaultClassifier returns the classifier a linker mode uses when none is
// configured.
func DefaultClassifier(mode LinkMode) StatementClassifier {
	if mode == LinkStructured {
		return TokenClassifier{}
	}
	return KeywordClassifier{}
}

func braceTraits(stmt string) Trait {
	var t Trait
	if strings.Contains(stmt, "{") {
		t |= TraitOpenBrace
	}
	if strings.Contains(stmt, "}") {
		t |= TraitCloseBrace
	}
	return t
}
