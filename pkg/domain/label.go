package domain

import (
	"fmt"
	"unicode/utf8"
)

// Label is the tag of a transition: either an ordinary move consuming one
// symbol, or an epsilon move consuming nothing.
//
// The two cases live in disjoint spaces, so no input symbol can ever be
// mistaken for an epsilon move. The zero value is Consume(0), not Epsilon.
type Label struct {
	symbol  rune
	epsilon bool
}

// Epsilon labels a move that consumes no input.
var Epsilon = Label{epsilon: true}

// Consume labels a move that consumes exactly the given symbol.
func Consume(symbol rune) Label {
	return Label{symbol: symbol}
}

// IsEpsilon reports whether the label is the epsilon case.
func (l Label) IsEpsilon() bool {
	return l.epsilon
}

// Symbol returns the consumed symbol. ok is false for Epsilon.
func (l Label) Symbol() (symbol rune, ok bool) {
	if l.epsilon {
		return 0, false
	}
	return l.symbol, true
}

func (l Label) String() string {
	if l.epsilon {
		return "ε"
	}
	return fmt.Sprintf("%q", l.symbol)
}

// MarshalText encodes Epsilon as the empty string and Consume(r) as the
// one-rune string r. This is the key format used by definition documents.
func (l Label) MarshalText() ([]byte, error) {
	if l.epsilon {
		return []byte{}, nil
	}
	return []byte(string(l.symbol)), nil
}

// UnmarshalText is the inverse of MarshalText.
func (l *Label) UnmarshalText(text []byte) error {
	parsed, err := ParseLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLabel decodes a document key: "" is Epsilon, a single rune is an
// ordinary symbol, anything else is an error.
func ParseLabel(key string) (Label, error) {
	if key == "" {
		return Epsilon, nil
	}
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError && size <= 1 {
		return Label{}, fmt.Errorf("label %q is not valid UTF-8", key)
	}
	if size != len(key) {
		return Label{}, fmt.Errorf("label %q must be a single symbol", key)
	}
	return Consume(r), nil
}
