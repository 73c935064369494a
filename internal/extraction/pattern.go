package extraction

import (
	"regexp"
	"strings"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// PatternExtractor is the rule-based fallback extractor.  It has no external
// dependency and is always available.
type PatternExtractor interface {
	// Extract applies the ordered surface patterns to normalized text and
	// returns the accepted medications, deduplicated by drug name.  Never
	// fails; the worst case is an empty list.
	Extract(text string) []rx.ExtractedMedication
}

// Confidence scoring for the pattern path.  The base applies to any accepted
// pattern match; each captured component adds its increment, capped below the
// model path's ceiling.
const (
	patternBaseConfidence     = 0.6
	strengthConfidenceBonus   = 0.2
	frequencyConfidenceBonus  = 0.1
	durationConfidenceBonus   = 0.1
	patternConfidenceCap      = 0.95
	lexiconFallbackConfidence = 0.5
)

// canonicalFrequencies maps single-word frequency tokens the patterns capture
// to the phrase emitted downstream.  Multi-word phrases produced by the
// normalizer pass through unchanged.
var canonicalFrequencies = map[string]string{
	"od":     "once daily",
	"bd":     "twice daily",
	"bid":    "twice daily",
	"tid":    "three times daily",
	"qid":    "four times daily",
	"qds":    "four times daily",
	"prn":    "as needed",
	"daily":  "once daily",
	"twice":  "twice daily",
	"thrice": "three times daily",
}

// routePhrases maps expanded route phrases back to the route emitted on the
// record.  Only standalone phrases count; the default route is "oral".
var routePhrases = []struct {
	phrase string
	route  string
}{
	{"by mouth", "oral"},
	{"intravenous", "intravenous"},
	{"intramuscular", "intramuscular"},
	{"subcutaneous", "subcutaneous"},
	{"topical", "topical"},
	{"inhalation", "inhalation"},
}

const defaultRoute = "oral"

type patternExtractor struct {
	patterns    []*regexp.Regexp
	routeRegexp map[string]*regexp.Regexp
	logger      logging.Logger
}

var _ PatternExtractor = (*patternExtractor)(nil)

// Surface-pattern building blocks.  The drug token is a capitalized phrase;
// strength, frequency, and duration tolerate either case.  The frequency
// alternacy lists the canonical multi-word phrases first so the single-word
// branch cannot split them.
const (
	drugToken     = `([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`
	strengthToken = `((?i:\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|units?)))`
	freqToken     = `((?i:(?:once|twice|three\s+times|four\s+times)\s+daily|as\s+needed|[a-z]+))`
	durationToken = `((?i:\d+\s*(?:days?|weeks?|months?|hours?)))`
)

// NewPatternExtractor compiles the ordered pattern list, most specific first.
func NewPatternExtractor(logger logging.Logger) PatternExtractor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	raw := []string{
		// drug + strength + frequency + duration
		`\b` + drugToken + `\s+` + strengthToken + `\s+` + freqToken + `\s+(?i:for\s+)?` + durationToken,
		// drug + strength + frequency
		`\b` + drugToken + `\s+` + strengthToken + `\s+` + freqToken,
		// drug + strength
		`\b` + drugToken + `\s+` + strengthToken,
		// drug + frequency + duration
		`\b` + drugToken + `\s+` + freqToken + `\s+(?i:for\s+)?` + durationToken,
		// drug + frequency
		`\b` + drugToken + `\s+` + freqToken,
		// bare capitalized phrase
		`\b` + drugToken + `\b`,
	}

	p := &patternExtractor{
		routeRegexp: make(map[string]*regexp.Regexp, len(routePhrases)),
		logger:      logger.Named("extraction.pattern"),
	}
	for _, r := range raw {
		p.patterns = append(p.patterns, regexp.MustCompile(r))
	}
	for _, rp := range routePhrases {
		p.routeRegexp[rp.route] = regexp.MustCompile(`(?i)\b` + strings.ReplaceAll(rp.phrase, " ", `\s+`) + `\b`)
	}
	return p
}

func (p *patternExtractor) Extract(text string) []rx.ExtractedMedication {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	route := p.detectRoute(text)
	var meds []rx.ExtractedMedication
	seen := make(map[string]bool)

	for _, pattern := range p.patterns {
		for _, groups := range pattern.FindAllStringSubmatch(text, -1) {
			candidate := p.buildCandidate(pattern, groups, route)
			if candidate == nil {
				continue
			}
			key := strings.ToLower(candidate.DrugName)
			if seen[key] {
				// Earlier patterns are more specific; keep the first hit.
				continue
			}
			seen[key] = true
			meds = append(meds, *candidate)
		}
	}

	if len(meds) == 0 {
		meds = p.lexiconFallback(text)
	}

	p.logger.Debug("pattern extraction complete", logging.Int("medications", len(meds)))
	return meds
}

// buildCandidate validates a raw regex match and assembles the medication
// record, or returns nil when the drug token fails the plausibility test.
func (p *patternExtractor) buildCandidate(pattern *regexp.Regexp, groups []string, route string) *rx.ExtractedMedication {
	if len(groups) < 2 || groups[1] == "" {
		return nil
	}
	drugName := strings.TrimSpace(groups[1])
	if !isPlausibleDrugName(drugName) {
		return nil
	}

	var strength, frequency, duration string
	names := pattern.NumSubexp()
	fields := groups[2:]
	switch names {
	case 4: // drug + strength + frequency + duration
		strength, frequency, duration = fields[0], fields[1], fields[2]
	case 3:
		if looksLikeStrength(fields[0]) {
			strength, frequency = fields[0], fields[1]
		} else {
			frequency, duration = fields[0], fields[1]
		}
	case 2:
		if looksLikeStrength(fields[0]) {
			strength = fields[0]
		} else {
			frequency = fields[0]
		}
	}

	if frequency != "" {
		if canonical, ok := canonicalFrequencies[strings.ToLower(frequency)]; ok {
			frequency = canonical
		} else {
			frequency = strings.ToLower(strings.Join(strings.Fields(frequency), " "))
		}
	}

	confidence := patternBaseConfidence
	if strength != "" {
		confidence += strengthConfidenceBonus
	}
	if frequency != "" {
		confidence += frequencyConfidenceBonus
	}
	if duration != "" {
		confidence += durationConfidenceBonus
	}
	if confidence > patternConfidenceCap {
		confidence = patternConfidenceCap
	}

	return &rx.ExtractedMedication{
		DrugName:   titleCase(drugName),
		Strength:   strings.ToLower(strings.TrimSpace(strength)),
		Frequency:  strings.TrimSpace(frequency),
		Duration:   strings.ToLower(strings.TrimSpace(duration)),
		Route:      route,
		Confidence: confidence,
	}
}

// lexiconFallback scans for known drug names as direct substrings when no
// pattern match was accepted.
func (p *patternExtractor) lexiconFallback(text string) []rx.ExtractedMedication {
	lower := strings.ToLower(text)
	var meds []rx.ExtractedMedication
	for _, name := range knownMedications {
		if strings.Contains(lower, name) {
			meds = append(meds, rx.ExtractedMedication{
				DrugName:   titleCase(name),
				Route:      defaultRoute,
				Confidence: lexiconFallbackConfidence,
			})
		}
	}
	return meds
}

// detectRoute looks for a standalone expanded route phrase in the text.
// One route applies to the whole prescription line; the default is oral.
func (p *patternExtractor) detectRoute(text string) string {
	for _, rp := range routePhrases {
		if p.routeRegexp[rp.route].MatchString(text) {
			return rp.route
		}
	}
	return defaultRoute
}

var strengthCheck = regexp.MustCompile(`(?i)^\d+(?:\.\d+)?\s*(?:mg|mcg|g|ml|units?)$`)

func looksLikeStrength(s string) bool {
	return strengthCheck.MatchString(strings.TrimSpace(s))
}
