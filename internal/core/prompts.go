package core

// prompts.go holds the two prompt templates.  The JSON skeletons are part of
// the contract with the model: the field names must match the pkg types.

import (
	"fmt"
	"strings"

	"medical-analyzer/pkg"
)

const (
	// ExtractionPrompt precedes the raw conversation text.  It lists the full
	// schema so the model has no doubt about field names.
	ExtractionPrompt = `You are a medical conversation analyzer. Extract ALL medical information from this conversation.

CRITICAL: Extract even if the text is as short as "fever for 2 days" or "cold for 2 days".

Return ONLY valid JSON (no markdown, no other text):
{
    "symptoms": [
        {
            "description": "symptom description",
            "duration": "duration if mentioned",
            "severity": "severity if mentioned"
        }
    ],
    "diseases_and_conditions": [
        {
            "name": "disease/condition name",
            "severity": "mild/moderate/severe/not specified",
            "mentioned_by": "doctor/patient/both"
        }
    ],
    "medications": [
        {
            "name": "medication name",
            "dosage": "dosage if mentioned",
            "frequency": "frequency if mentioned",
            "type": "current/prescribed/discontinued"
        }
    ],
    "treatment_points": [
        {
            "category": "medication/diagnosis/history/vitals/instructions/lifestyle/other",
            "point": "detailed description",
            "priority": "high/medium/low"
        }
    ],
    "allergies": [],
    "medical_history": [],
    "follow_up": {
        "required": false,
        "timeframe": "timeframe if mentioned",
        "instructions": "follow-up instructions"
    },
    "red_flags": [],
    "summary": "Brief clinical summary"
}

Conversation:
`

	// VerificationPrompt is filled with the patient profile and the proposed
	// medicines, in this order: name, age, symptoms, conditions, medical
	// history, allergies, medicines.
	VerificationPrompt = `You are a SENIOR MEDICAL DOCTOR reviewing a prescription for safety and appropriateness.

PATIENT INFORMATION:
Name: %s
Age: %s
Symptoms: %s
Diagnosed Conditions: %s
Medical History: %s
Known Allergies: %s

PROPOSED PRESCRIPTION:
%s

PERFORM COMPREHENSIVE REVIEW:
1. Age-appropriateness of each medicine and dosage
2. Contraindications with patient's conditions
3. Allergy cross-reactions
4. Drug-drug interactions
5. Dosage safety for patient's age
6. Any red flags or safety concerns

Return ONLY valid JSON (no markdown, no other text):
{
    "overall_safety": "safe/caution/unsafe",
    "can_prescribe": true/false,
    "verification_summary": "Brief professional summary",
    "medicine_reviews": [
        {
            "medicine_name": "medicine name",
            "status": "approved/caution/rejected",
            "reason": "detailed professional reasoning",
            "age_appropriate": true/false,
            "contraindications": [],
            "alternatives_if_rejected": []
        }
    ],
    "drug_interactions": [
        {
            "medicines": ["med1", "med2"],
            "interaction_type": "mild/moderate/severe",
            "description": "interaction details",
            "recommendation": "clinical recommendation"
        }
    ],
    "dosage_concerns": [
        {
            "medicine": "medicine name",
            "concern": "specific concern",
            "recommended_adjustment": "adjustment needed"
        }
    ],
    "red_flags": [],
    "recommendations": [],
    "senior_doctor_notes": "Additional clinical guidance"
}
`
)

// BuildExtractionPrompt appends the conversation to the extraction template.
func BuildExtractionPrompt(conversation string) string {
	return ExtractionPrompt + conversation
}

// BuildVerificationPrompt fills the review template.  Caller values are
// inserted verbatim; an absent value leaves its line empty.
func BuildVerificationPrompt(req pkg.PrescriptionRequest) string {
	p := req.Patient
	return fmt.Sprintf(VerificationPrompt,
		p.Name,
		p.Age,
		strings.Join(p.Symptoms, ", "),
		strings.Join(p.Conditions, ", "),
		strings.Join(p.MedicalHistory, ", "),
		strings.Join(p.Allergies, ", "),
		formatMedicines(req.Medicines),
	)
}

// formatMedicines renders one medicine per line, e.g.
// "1. Amoxicillin | dosage: 500mg | frequency: 3x daily".
func formatMedicines(meds []pkg.ProposedMedicine) string {
	var b strings.Builder
	for i, m := range meds {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, m.Name)
		for _, f := range []struct{ label, value string }{
			{"dosage", m.Dosage},
			{"frequency", m.Frequency},
			{"duration", m.Duration},
			{"instructions", m.Instructions},
		} {
			if f.value != "" {
				fmt.Fprintf(&b, " | %s: %s", f.label, f.value)
			}
		}
	}
	return b.String()
}
