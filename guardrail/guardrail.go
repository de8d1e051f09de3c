// Package guardrail classifies incoming messages before any model call.
// Matching is a case-insensitive, unanchored substring check against a fixed
// trigger table. That means a trigger embedded in a longer unrelated word
// still matches; the false-positive bias is deliberate for a medical context
// and is tuned by editing the table, not the control flow.
package guardrail

import "strings"

type Category int

const (
	// CategoryNone means the message may proceed to retrieval and generation.
	CategoryNone Category = iota
	// CategoryEmergency short-circuits with the hotline message.
	CategoryEmergency
	// CategoryMedicalAdvice short-circuits with the refusal message.
	CategoryMedicalAdvice
)

func (c Category) String() string {
	switch c {
	case CategoryEmergency:
		return "emergency"
	case CategoryMedicalAdvice:
		return "medical_advice"
	default:
		return "none"
	}
}

// triggers maps each blocking category to its lowercase substrings. Order in
// the categories slice matters: emergency wins over medical advice.
var triggers = map[Category][]string{
	CategoryEmergency: {
		"brustschmerzen",
		"atemnot",
		"lähmung",
		"starke blutung",
		"bewusstlos",
		"suizid",
		"vergiftung",
		"schlaganfall",
		"herzinfarkt",
	},
	CategoryMedicalAdvice: {
		"diagnose",
		"medikament",
		"dosierung",
		"antibiotikum",
		"behandlung",
	},
}

var categories = []Category{CategoryEmergency, CategoryMedicalAdvice}

const (
	// EmergencyMessage is returned verbatim on an emergency match, followed
	// by the logistics offer. It must never depend on model output.
	EmergencyMessage = "Bei akuter Gefahr rufen Sie bitte sofort **112** an. Außerhalb der Sprechzeiten erreichen Sie den ärztlichen Bereitschaftsdienst unter **116 117**."

	// MedicalAdviceMessage is the fixed refusal for diagnostic or treatment
	// questions.
	MedicalAdviceMessage = "Das darf ich hier nicht beurteilen. Gern unterstütze ich bei der Terminvereinbarung in der Praxis."

	emergencyFollowUp     = "Wie kann ich organisatorisch helfen (Termin, Öffnungszeiten, Kontakt)?"
	medicalAdviceFollowUp = "Möchten Sie eine Terminanfrage stellen?"
)

// Classify returns the first matching category. The emergency list is checked
// first; a message containing both an emergency and a medical-advice trigger
// is an emergency.
func Classify(message string) Category {
	lowered := strings.ToLower(message)
	for _, category := range categories {
		for _, trigger := range triggers[category] {
			if strings.Contains(lowered, trigger) {
				return category
			}
		}
	}
	return CategoryNone
}

// Reply returns the fixed response text for a blocking category, or "" for
// CategoryNone.
func Reply(category Category) string {
	switch category {
	case CategoryEmergency:
		return EmergencyMessage + "\n\n" + emergencyFollowUp
	case CategoryMedicalAdvice:
		return MedicalAdviceMessage + " " + medicalAdviceFollowUp
	default:
		return ""
	}
}
