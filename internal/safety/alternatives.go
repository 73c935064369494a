package safety

import (
	"fmt"
	"strings"

	"github.com/turtacn/RxMed-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RxMed-Intelligence/pkg/types/rx"
)

// allergyAlternatives maps an allergen class to medications considered safe
// substitutes for patients with that allergy.
var allergyAlternatives = map[string][]string{
	"penicillin": {"azithromycin", "clindamycin", "doxycycline"},
	"sulfa":      {"amoxicillin", "cephalexin", "doxycycline"},
	"aspirin":    {"acetaminophen", "ibuprofen", "naproxen"},
	"codeine":    {"tramadol", "hydrocodone", "oxycodone"},
}

const alternativeNotes = "Consult healthcare provider for appropriate dosing"

// AlternativeAdvisor suggests substitute medications driven by the patient's
// recorded allergies.
type AlternativeAdvisor interface {
	// Suggest returns alternatives for one medication: every declared
	// allergy with a cross-reaction table entry contributes its full
	// substitute list.  Allergies without an entry are skipped silently.
	Suggest(med rx.ExtractedMedication, patient rx.Patient) []rx.AlternativeMedication
}

type alternativeAdvisor struct {
	logger logging.Logger
}

var _ AlternativeAdvisor = (*alternativeAdvisor)(nil)

// NewAlternativeAdvisor builds the allergy-table advisor.
func NewAlternativeAdvisor(logger logging.Logger) AlternativeAdvisor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &alternativeAdvisor{logger: logger.Named("safety.alternatives")}
}

func (a *alternativeAdvisor) Suggest(med rx.ExtractedMedication, patient rx.Patient) []rx.AlternativeMedication {
	var suggestions []rx.AlternativeMedication
	for _, allergy := range patient.Allergies {
		allergyLower := strings.ToLower(strings.TrimSpace(allergy))
		if allergyLower == "" {
			continue
		}
		substitutes, ok := allergyAlternatives[allergyLower]
		if !ok {
			a.logger.Debug("no alternatives table entry for allergy",
				logging.String("allergy", allergyLower))
			continue
		}
		for _, substitute := range substitutes {
			suggestions = append(suggestions, rx.AlternativeMedication{
				DrugName: substitute,
				Reason:   fmt.Sprintf("Alternative to %s due to %s allergy", med.DrugName, allergyLower),
				Strength: med.Strength,
				Route:    med.Route,
				Notes:    alternativeNotes,
			})
		}
	}
	return suggestions
}
