package extraction

import "strings"

// knownMedications is the lexicon of common drug names used both for the
// plausibility test and for the direct-substring fallback scan.
var knownMedications = []string{
	"aspirin", "ibuprofen", "acetaminophen", "paracetamol", "amoxicillin",
	"penicillin", "warfarin", "insulin", "metformin", "lisinopril",
	"atorvastatin", "omeprazole", "pantoprazole", "metoprolol",
	"amlodipine", "hydrochlorothiazide", "furosemide", "spironolactone",
	"digoxin", "phenytoin", "carbamazepine", "valproate", "lithium",
	"morphine", "codeine", "tramadol", "oxycodone", "hydrocodone",
	"diazepam", "alprazolam", "lorazepam", "clonazepam", "zolpidem",
	"sertraline", "fluoxetine", "escitalopram", "venlafaxine", "bupropion",
	"quetiapine", "risperidone", "olanzapine", "aripiprazole",
}

// Pharmacological name morphology used by the plausibility test.
var (
	medicationSuffixes = []string{"ine", "ol", "ide", "ate", "am", "il", "in", "an"}
	medicationPrefixes = []string{"met", "lis", "ome", "panto", "hydro", "spiro"}

	// Clinical words that pattern matching regularly captures but that are
	// never drug names.  Rejected even when a suffix or prefix matches.
	nonMedicationWords = []string{"tablet", "capsule", "injection", "cream", "ointment", "dose", "take"}
)

// isPlausibleDrugName reports whether a candidate token is likely a
// medication name.  The stopword rejection wins over any suffix or prefix
// match.
func isPlausibleDrugName(candidate string) bool {
	lower := strings.ToLower(candidate)

	for _, w := range nonMedicationWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	for _, med := range knownMedications {
		if strings.Contains(lower, med) {
			return true
		}
	}
	for _, suffix := range medicationSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	for _, prefix := range medicationPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// titleCase upper-cases the first letter of each space-separated word.
// Drug names are plain ASCII so no locale handling is needed.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
