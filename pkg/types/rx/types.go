// Package rx defines the shared data types of the prescription analysis
// pipeline.  These are plain DTOs: no I/O, no business rules beyond field
// normalization and validation.
package rx

import (
	"strings"

	"github.com/turtacn/RxMed-Intelligence/pkg/errors"
)

// ---------------------------------------------------------------------------
// Severity
// ---------------------------------------------------------------------------

// Severity classifies safety alerts and drug interactions.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// validSeverities is the accepted severity set, case-normalized.
var validSeverities = map[Severity]bool{
	SeverityLow:      true,
	SeverityMedium:   true,
	SeverityHigh:     true,
	SeverityCritical: true,
}

// NormalizeSeverity lower-cases s and validates it against the known set.
func NormalizeSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !validSeverities[sev] {
		return "", errors.Newf(errors.ErrCodeValidation,
			"severity must be one of [low, medium, high, critical], got %q", s)
	}
	return sev, nil
}

// ---------------------------------------------------------------------------
// Core pipeline entities
// ---------------------------------------------------------------------------

// ExtractedMedication is one medication mention detected in prescription text.
// Instances are created once per detected mention and are immutable afterwards;
// nothing in the pipeline persists them beyond the request.
type ExtractedMedication struct {
	// DrugName is the normalized, title-cased medication name.  Required.
	DrugName string `json:"drug_name"`

	// Strength is the free-text dose strength, e.g. "500mg".  Optional.
	Strength string `json:"strength,omitempty"`

	// Frequency is the dosing frequency normalized to a canonical phrase
	// such as "twice daily".  Optional.
	Frequency string `json:"frequency,omitempty"`

	// Duration is the free-text treatment duration, e.g. "7 days".  Optional.
	Duration string `json:"duration,omitempty"`

	// Route is the administration route; defaults to "oral" when unstated.
	Route string `json:"route"`

	// Confidence is the extraction confidence in [0, 1].  The score scale
	// depends on the method that produced the record: model-based scores sit
	// above pattern scores, which sit above lexicon-only scores.
	Confidence float64 `json:"confidence"`
}

// Validate checks required fields and value ranges.
func (m *ExtractedMedication) Validate() error {
	if strings.TrimSpace(m.DrugName) == "" {
		return errors.Validation("extracted_medication", "drug_name is required")
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return errors.Validation("extracted_medication", "confidence must be in [0, 1]")
	}
	return nil
}

// RxNormMapping links an extracted drug name to a canonical RxNorm concept.
// One extracted medication may yield zero or more mappings.
type RxNormMapping struct {
	// RxCUI is the RxNorm Concept Unique Identifier.
	RxCUI string `json:"rxcui"`

	// Name is the standardized display name for the concept.
	Name string `json:"name"`

	// Synonym is an alternative name, when the terminology service returns one.
	Synonym string `json:"synonym,omitempty"`

	// Confidence is the mapping certainty, independent of extraction confidence.
	Confidence float64 `json:"confidence"`

	// SourceDrug is the extracted drug name this mapping belongs to.  The
	// terminology service keys nothing back to the extraction, so the
	// association must be carried explicitly.
	SourceDrug string `json:"source_drug,omitempty"`
}

// SafetyAlert is a derived, never-mutated dosing alert.
type SafetyAlert struct {
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
	Reference      string   `json:"reference,omitempty"`

	// DrugName attributes the alert to the medication that triggered it.
	DrugName string `json:"drug_name,omitempty"`
}

// DrugInteraction describes one pairwise interaction found by the terminology
// service.  Drug names (not identifiers) are carried for display.
type DrugInteraction struct {
	Drug1          string   `json:"drug1"`
	Drug2          string   `json:"drug2"`
	Severity       Severity `json:"severity"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	Source         string   `json:"source,omitempty"`
}

// AlternativeMedication is a substitute suggestion triggered by a declared
// patient allergy.
type AlternativeMedication struct {
	DrugName string `json:"drug_name"`

	// Reason names both the original medication and the triggering allergy.
	Reason string `json:"reason"`

	// Strength and Route are inherited from the source medication when set.
	Strength string `json:"strength,omitempty"`
	Route    string `json:"route,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// ---------------------------------------------------------------------------
// Patient
// ---------------------------------------------------------------------------

// Patient carries the attributes the safety rules evaluate against.
type Patient struct {
	Age               int      `json:"age"`
	WeightKg          float64  `json:"weight_kg"`
	Allergies         []string `json:"allergies,omitempty"`
	MedicalConditions []string `json:"medical_conditions,omitempty"`
}

// Normalize trims, lower-cases, and drops empty entries from the allergy and
// condition lists.  Returns the receiver for chaining.
func (p *Patient) Normalize() *Patient {
	p.Allergies = cleanList(p.Allergies)
	p.MedicalConditions = cleanList(p.MedicalConditions)
	return p
}

// Validate checks the physiological ranges the original rule set assumes.
func (p *Patient) Validate() error {
	if p.Age < 0 || p.Age > 150 {
		return errors.Validation("patient", "age must be in [0, 150]")
	}
	if p.WeightKg < 0.5 || p.WeightKg > 500 {
		return errors.Validation("patient", "weight_kg must be in [0.5, 500]")
	}
	return nil
}

func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ---------------------------------------------------------------------------
// Analysis request / result
// ---------------------------------------------------------------------------

// AnalysisRequest is the input contract of the pipeline entry point.
type AnalysisRequest struct {
	Text                string  `json:"text"`
	Patient             Patient `json:"patient"`
	IncludeAlternatives bool    `json:"include_alternatives"`
}

// AnalysisResult is the externally observable output contract of the pipeline.
// HTTP handlers must preserve it verbatim.
type AnalysisResult struct {
	RequestID            string                  `json:"request_id"`
	Medications          []ExtractedMedication   `json:"extracted_medications"`
	Mappings             []RxNormMapping         `json:"rxnorm_mappings"`
	Alerts               []SafetyAlert           `json:"safety_alerts"`
	Interactions         []DrugInteraction       `json:"drug_interactions"`
	Alternatives         []AlternativeMedication `json:"suggested_alternatives"`
	AnalysisConfidence   float64                 `json:"analysis_confidence"`
	ProcessingTimeMillis int64                   `json:"processing_time_ms"`
}

// AggregateConfidence is the arithmetic mean of the medications' individual
// confidence scores, 0.0 when the slice is empty.
func AggregateConfidence(meds []ExtractedMedication) float64 {
	if len(meds) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, m := range meds {
		sum += m.Confidence
	}
	return sum / float64(len(meds))
}
