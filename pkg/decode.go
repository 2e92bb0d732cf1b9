package pkg

import (
	"encoding/json"
	"fmt"
)

// ParseError reports a model response that is not a JSON object.  Raw holds
// the text that failed to decode.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// parseObject is the only place a response can fail: the text must be valid
// JSON and its top level an object.  Field contents are never a reason to
// reject it.
func parseObject(text string) (fields, error) {
	var f fields
	if err := json.Unmarshal([]byte(text), &f); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}
	if f == nil {
		return nil, &ParseError{Raw: text, Err: errNotObject}
	}
	return f, nil
}

// DecodeClinicalExtraction decodes a model response.  It performs no schema
// validation: absent or mistyped fields take their empty value.  On failure
// it returns a *ParseError and an empty extraction.
func DecodeClinicalExtraction(text string) (ClinicalExtraction, error) {
	f, err := parseObject(text)
	if err != nil {
		return EmptyClinicalExtraction(), err
	}
	return extractionFrom(f), nil
}

// DecodePrescriptionReview decodes a model response into a review.  On
// failure it returns a *ParseError and an empty review.
func DecodePrescriptionReview(text string) (PrescriptionReview, error) {
	f, err := parseObject(text)
	if err != nil {
		return EmptyPrescriptionReview(), err
	}
	return reviewFrom(f), nil
}

// extractionFrom accepts both the detailed and the compact schema.  Alias
// keys are merged into the canonical fields.
func extractionFrom(f fields) ClinicalExtraction {
	e := ClinicalExtraction{
		Symptoms: listOf(f.items("symptoms"), symptomFrom),
		DiseasesAndConditions: append(
			listOf(f.items("diseases_and_conditions"), conditionFrom),
			listOf(f.items("diseases"), conditionFrom)...),
		Medications: listOf(f.items("medications"), medicationFrom),
		TreatmentPoints: append(append(
			listOf(f.items("treatment_points"), treatmentPointFrom),
			listOf(f.items("key_treatment_points"), treatmentPointFrom)...),
			listOf(f.items("important_treatment_points"), treatmentPointFrom)...),
		Allergies:      f.texts("allergies"),
		MedicalHistory: f.texts("medical_history"),
		FollowUp:       followUpFrom(f.raw("follow_up")),
		RedFlags:       f.texts("red_flags"),
		Summary:        f.text("summary"),
	}
	e.normalize()
	return e
}

// reviewFrom decodes a review.  A can_prescribe that cannot be read as a
// bool is false.
func reviewFrom(f fields) PrescriptionReview {
	r := PrescriptionReview{
		OverallSafety:       Safety(f.text("overall_safety")),
		CanPrescribe:        f.flag("can_prescribe"),
		VerificationSummary: f.text("verification_summary"),
		MedicineReviews:     listOf(f.items("medicine_reviews"), medicineReviewFrom),
		DrugInteractions:    listOf(f.items("drug_interactions"), drugInteractionFrom),
		DosageConcerns:      listOf(f.items("dosage_concerns"), dosageConcernFrom),
		RedFlags:            f.texts("red_flags"),
		Recommendations:     f.texts("recommendations"),
		SeniorDoctorNotes:   f.text("senior_doctor_notes"),
	}
	r.normalize()
	return r
}

// EmptyClinicalExtraction returns an extraction with every list empty.
func EmptyClinicalExtraction() ClinicalExtraction {
	var e ClinicalExtraction
	e.normalize()
	return e
}

// EmptyPrescriptionReview returns a review with every list empty.  The
// verdict fields are left at their zero values for the caller to set.
func EmptyPrescriptionReview() PrescriptionReview {
	var r PrescriptionReview
	r.normalize()
	return r
}

func (e *ClinicalExtraction) normalize() {
	e.Symptoms = orEmpty(e.Symptoms)
	e.DiseasesAndConditions = orEmpty(e.DiseasesAndConditions)
	e.Medications = orEmpty(e.Medications)
	e.TreatmentPoints = orEmpty(e.TreatmentPoints)
	e.Allergies = orEmpty(e.Allergies)
	e.MedicalHistory = orEmpty(e.MedicalHistory)
	e.RedFlags = orEmpty(e.RedFlags)
}

func (r *PrescriptionReview) normalize() {
	r.MedicineReviews = orEmpty(r.MedicineReviews)
	for i := range r.MedicineReviews {
		r.MedicineReviews[i].Contraindications = orEmpty(r.MedicineReviews[i].Contraindications)
		r.MedicineReviews[i].AlternativesIfRejected = orEmpty(r.MedicineReviews[i].AlternativesIfRejected)
	}
	r.DrugInteractions = orEmpty(r.DrugInteractions)
	for i := range r.DrugInteractions {
		r.DrugInteractions[i].Medicines = orEmpty(r.DrugInteractions[i].Medicines)
	}
	r.DosageConcerns = orEmpty(r.DosageConcerns)
	r.RedFlags = orEmpty(r.RedFlags)
	r.Recommendations = orEmpty(r.Recommendations)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
