// Package extraction implements medication entity extraction from
// prescription text: text normalization, a rule-based pattern extractor with
// a known-drug lexicon, and a coordinator that prefers the model path and
// falls back to patterns.
package extraction

import (
	"regexp"
	"strings"
)

// TextNormalizer cleans raw prescription text before any extraction runs.
type TextNormalizer interface {
	// Normalize collapses whitespace, trims, and expands standalone
	// clinical abbreviations.  Always succeeds; empty input yields "".
	Normalize(text string) string
}

type textNormalizer struct {
	whitespace    *regexp.Regexp
	abbreviations []abbreviation
}

var _ TextNormalizer = (*textNormalizer)(nil)

type abbreviation struct {
	re       *regexp.Regexp
	expanded string
}

// clinicalAbbreviations maps standalone dosing and route abbreviations to
// their expanded phrase.  Matching is case-insensitive and word-bounded so
// "bid" inside "forbidding" is never rewritten.
var clinicalAbbreviations = []struct {
	abbrev   string
	expanded string
}{
	{"od", "once daily"},
	{"bd", "twice daily"},
	{"bid", "twice daily"},
	{"tid", "three times daily"},
	{"qid", "four times daily"},
	{"qds", "four times daily"},
	{"prn", "as needed"},
	{"po", "by mouth"},
	{"iv", "intravenous"},
	{"im", "intramuscular"},
	{"sc", "subcutaneous"},
}

// NewTextNormalizer compiles the abbreviation table once; the returned
// normalizer is safe for concurrent use.
func NewTextNormalizer() TextNormalizer {
	n := &textNormalizer{
		whitespace: regexp.MustCompile(`\s+`),
	}
	for _, a := range clinicalAbbreviations {
		n.abbreviations = append(n.abbreviations, abbreviation{
			re:       regexp.MustCompile(`(?i)\b` + a.abbrev + `\b`),
			expanded: a.expanded,
		})
	}
	return n
}

func (n *textNormalizer) Normalize(text string) string {
	text = strings.TrimSpace(n.whitespace.ReplaceAllString(text, " "))
	if text == "" {
		return ""
	}
	for _, a := range n.abbreviations {
		text = a.re.ReplaceAllString(text, a.expanded)
	}
	return text
}
