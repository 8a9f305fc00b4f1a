// Package oracle is the boundary to the external decision oracle: a model
// that answers a system + user prompt with free text.
package oracle

import (
	"context"
	"strings"
	"unicode"
)

// Oracle answers a prompt. Failures are returned as *apperr.OracleError.
type Oracle interface {
	Ask(ctx context.Context, system, user string) (string, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, system, user string) (string, error)

// Ask calls f.
func (f Func) Ask(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// Verdict is the decoded answer to a yes/no question.
type Verdict int

const (
	Unknown Verdict = iota
	Positive
	Negative
)

func (v Verdict) String() string {
	switch v {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "unknown"
	}
}

var (
	affirmatives = map[string]bool{"true": true, "yes": true}
	denials      = map[string]bool{"false": true, "no": true}
)

// DecodeVerdict maps a free-text answer onto a Verdict. An answer that
// both affirms and denies, or does neither, is Unknown.
func DecodeVerdict(text string) Verdict {
	var yes, no bool
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if affirmatives[w] {
			yes = true
		}
		if denials[w] {
			no = true
		}
	}
	switch {
	case yes && !no:
		return Positive
	case no && !yes:
		return Negative
	default:
		return Unknown
	}
}
