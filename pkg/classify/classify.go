// Package classify decides whether an account row actually describes a
// healthcare facility. The decision is pure: callers feed it names, it never
// touches the store.
package classify

import (
	"strings"
	"unicode"

	"github.com/coregx/ahocorasick"
)

// Decision tags the outcome of classifying one account name.
type Decision int

const (
	// Keep means the name looks like an ordinary person or household account.
	Keep Decision = iota
	// Relocate means the name matches the facility keyword set and the row
	// belongs in the facilities table.
	Relocate
)

// String implements fmt.Stringer for log output.
func (d Decision) String() string {
	if d == Relocate {
		return "relocate"
	}
	return "keep"
}

// facilityKeywords is the fixed heuristic set. Both "center" and "centre"
// spellings are matched.
var facilityKeywords = []string{
	"hospital",
	"care",
	"medical",
	"clinic",
	"center",
	"centre",
}

// Classifier matches facility keywords inside free-text names.
// A single Aho-Corasick automaton scans the canonicalized name in O(n).
type Classifier struct {
	ac *ahocorasick.Automaton
}

// New compiles the keyword automaton.
func New() (*Classifier, error) {
	ac, err := ahocorasick.NewBuilder().
		AddStrings(facilityKeywords).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	return &Classifier{ac: ac}, nil
}

// Classify returns Relocate when any facility keyword occurs as a substring
// of the canonicalized name, Keep otherwise.
func (c *Classifier) Classify(name string) Decision {
	key := canonicalize(name)
	if key == "" {
		return Keep
	}
	if len(c.ac.FindAllOverlapping([]byte(key))) > 0 {
		return Relocate
	}
	return Keep
}

// canonicalize folds the name to lowercase and collapses every run of
// non-letter, non-digit characters into a single space. The keywords are
// plain lowercase words, so this is all the normalization matching needs.
func canonicalize(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	lastWasSpace := true
	for _, ch := range s {
		c := unicode.ToLower(ch)
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			out.WriteRune(c)
			lastWasSpace = false
		} else if !lastWasSpace {
			out.WriteRune(' ')
			lastWasSpace = true
		}
	}

	return strings.TrimRight(out.String(), " ")
}
