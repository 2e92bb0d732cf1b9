package pkg

// Safety is the overall verdict of a prescription review.
type Safety string

const (
	SafetySafe    Safety = "safe"
	SafetyCaution Safety = "caution"
	SafetyUnsafe  Safety = "unsafe"
	SafetyRisky   Safety = "risky"
)

// ReviewStatus is the verdict for a single proposed medicine.
type ReviewStatus string

const (
	StatusApproved ReviewStatus = "approved"
	StatusCaution  ReviewStatus = "caution"
	StatusRejected ReviewStatus = "rejected"
)

// ClinicalExtraction is the structured summary derived from a doctor/patient
// conversation.  Values are one-shot: nothing is persisted.  After decoding,
// every list is non-nil so that encoders emit [] rather than null.
type ClinicalExtraction struct {
	Symptoms              []Symptom        `json:"symptoms" yaml:"symptoms"`
	DiseasesAndConditions []Condition      `json:"diseases_and_conditions" yaml:"diseases_and_conditions"`
	Medications           []Medication     `json:"medications" yaml:"medications"`
	TreatmentPoints       []TreatmentPoint `json:"treatment_points" yaml:"treatment_points"`
	Allergies             []string         `json:"allergies" yaml:"allergies"`
	MedicalHistory        []string         `json:"medical_history" yaml:"medical_history"`
	FollowUp              FollowUp         `json:"follow_up" yaml:"follow_up"`
	RedFlags              []string         `json:"red_flags" yaml:"red_flags"`
	Summary               string           `json:"summary" yaml:"summary"`
}

// Symptom is a reported symptom.  Models frequently emit bare strings
// instead of objects; see flex.go.
type Symptom struct {
	Description string `json:"description" yaml:"description"`
	Duration    string `json:"duration" yaml:"duration"`
	Severity    string `json:"severity" yaml:"severity"`

	plain bool
}

// Condition is a disease or condition mentioned in the conversation.
type Condition struct {
	Name        string `json:"name" yaml:"name"`
	Severity    string `json:"severity" yaml:"severity"`
	MentionedBy string `json:"mentioned_by" yaml:"mentioned_by"`

	plain bool
}

// Medication is a drug mentioned in the conversation.  Type is one of
// current, prescribed or discontinued.
type Medication struct {
	Name      string `json:"name" yaml:"name"`
	Dosage    string `json:"dosage" yaml:"dosage"`
	Frequency string `json:"frequency" yaml:"frequency"`
	Type      string `json:"type" yaml:"type"`

	plain bool
}

// TreatmentPoint is a clinically relevant note with a priority of high,
// medium or low.
type TreatmentPoint struct {
	Category string `json:"category" yaml:"category"`
	Point    string `json:"point" yaml:"point"`
	Priority string `json:"priority" yaml:"priority"`

	plain bool
}

// FollowUp describes whether and when the patient should be seen again.
type FollowUp struct {
	Required     bool   `json:"required" yaml:"required"`
	Timeframe    string `json:"timeframe" yaml:"timeframe"`
	Instructions string `json:"instructions" yaml:"instructions"`
}

// PrescriptionReview is the safety assessment of a proposed prescription.
type PrescriptionReview struct {
	OverallSafety       Safety            `json:"overall_safety" yaml:"overall_safety"`
	CanPrescribe        bool              `json:"can_prescribe" yaml:"can_prescribe"`
	VerificationSummary string            `json:"verification_summary" yaml:"verification_summary"`
	MedicineReviews     []MedicineReview  `json:"medicine_reviews" yaml:"medicine_reviews"`
	DrugInteractions    []DrugInteraction `json:"drug_interactions" yaml:"drug_interactions"`
	DosageConcerns      []DosageConcern   `json:"dosage_concerns" yaml:"dosage_concerns"`
	RedFlags            []string          `json:"red_flags" yaml:"red_flags"`
	Recommendations     []string          `json:"recommendations" yaml:"recommendations"`
	SeniorDoctorNotes   string            `json:"senior_doctor_notes" yaml:"senior_doctor_notes"`
}

// MedicineReview is the verdict for one proposed medicine.
type MedicineReview struct {
	MedicineName           string       `json:"medicine_name" yaml:"medicine_name"`
	Status                 ReviewStatus `json:"status" yaml:"status"`
	Reason                 string       `json:"reason" yaml:"reason"`
	AgeAppropriate         bool         `json:"age_appropriate" yaml:"age_appropriate"`
	Contraindications      []string     `json:"contraindications" yaml:"contraindications"`
	AlternativesIfRejected []string     `json:"alternatives_if_rejected" yaml:"alternatives_if_rejected"`
}

// DrugInteraction describes an interaction between two or more medicines.
type DrugInteraction struct {
	Medicines       []string `json:"medicines" yaml:"medicines"`
	InteractionType string   `json:"interaction_type" yaml:"interaction_type"`
	Description     string   `json:"description" yaml:"description"`
	Recommendation  string   `json:"recommendation" yaml:"recommendation"`
}

// DosageConcern flags a dose that needs adjusting for this patient.
type DosageConcern struct {
	Medicine              string `json:"medicine" yaml:"medicine"`
	Concern               string `json:"concern" yaml:"concern"`
	RecommendedAdjustment string `json:"recommended_adjustment" yaml:"recommended_adjustment"`

	plain bool
}

// PatientContext is the caller-supplied patient profile.  Values are copied
// verbatim into the review prompt.
type PatientContext struct {
	Name           string   `json:"name" yaml:"name"`
	Age            string   `json:"age" yaml:"age"`
	Symptoms       []string `json:"symptoms" yaml:"symptoms"`
	Conditions     []string `json:"conditions" yaml:"conditions"`
	MedicalHistory []string `json:"medical_history" yaml:"medical_history"`
	Allergies      []string `json:"allergies" yaml:"allergies"`
}

// ProposedMedicine is one line of a prescription under review.  Only Name is
// expected; the remaining fields are passed through when present.
type ProposedMedicine struct {
	Name         string `json:"name" yaml:"name"`
	Dosage       string `json:"dosage,omitempty" yaml:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Duration     string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Instructions string `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// PrescriptionRequest bundles a prescription with the patient it is for.
type PrescriptionRequest struct {
	Medicines []ProposedMedicine `json:"medicines" yaml:"medicines"`
	Patient   PatientContext     `json:"patient" yaml:"patient"`
}

// ExtractRequest is the body of POST /api/v1/extract.
type ExtractRequest struct {
	Conversation string `json:"conversation"`
}

// ErrorResponse is returned by the HTTP API for rejected requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
