package pkg

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Model output and caller input are only loosely typed.  Records are decoded
// field by field: a field of the wrong JSON kind is coerced where the intent
// is clear ("false" for a bool, a bare string for a list) and otherwise takes
// its zero value, so one drifted field never discards the rest of the record.
//
// List elements accept either a bare string or an object and remember which
// one they came from, so a bare string is encoded back as a bare string.

var errNotObject = errors.New("expected a JSON object")

// fields is a decoded JSON object with its values left raw.
type fields map[string]json.RawMessage

// objectFields decodes data as a JSON object.  ok is false for any other
// kind of value, including null.
func objectFields(data []byte) (fields, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, false
	}
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, false
	}
	return f, true
}

// raw returns the value of the first key that is present and not null.
func (f fields) raw(keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := f[k]; ok && !isNull(v) {
			return v
		}
	}
	return nil
}

func (f fields) text(keys ...string) string { return textOf(f.raw(keys...)) }

func (f fields) flag(keys ...string) bool { return flagOf(f.raw(keys...)) }

func (f fields) texts(keys ...string) []string { return textsOf(f.raw(keys...)) }

func (f fields) items(keys ...string) []json.RawMessage { return itemsOf(f.raw(keys...)) }

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// textOf renders any JSON value as text: strings are unquoted, numbers and
// bools keep their literal form, objects and arrays stay compact JSON.
func textOf(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	default:
		return string(raw)
	}
}

// flagOf reads a bool.  Strings such as "true" or "yes" count as true;
// anything unrecognised is false.
func flagOf(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return false
	}
	switch raw[0] {
	case 't':
		return string(raw) == "true"
	case 'f':
		return false
	case '"':
		switch strings.ToLower(strings.TrimSpace(textOf(raw))) {
		case "true", "yes", "y", "1":
			return true
		}
		return false
	default:
		n, err := strconv.ParseFloat(string(raw), 64)
		return err == nil && n != 0
	}
}

// itemsOf returns the elements of an array.  A single non-array value is a
// one-element list.  Null elements are dropped.
func itemsOf(raw json.RawMessage) []json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return nil
	}
	if raw[0] != '[' {
		return []json.RawMessage{raw}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	out := make([]json.RawMessage, 0, len(elems))
	for _, e := range elems {
		if !isNull(e) {
			out = append(out, e)
		}
	}
	return out
}

func textsOf(raw json.RawMessage) []string {
	items := itemsOf(raw)
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s := textOf(it); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func listOf[T any](items []json.RawMessage, from func(json.RawMessage) T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		out = append(out, from(it))
	}
	return out
}

func symptomFrom(raw json.RawMessage) Symptom {
	f, ok := objectFields(raw)
	if !ok {
		return Symptom{Description: textOf(raw), plain: true}
	}
	return Symptom{
		Description: f.text("description", "symptom", "name"),
		Duration:    f.text("duration"),
		Severity:    f.text("severity"),
	}
}

func conditionFrom(raw json.RawMessage) Condition {
	f, ok := objectFields(raw)
	if !ok {
		return Condition{Name: textOf(raw), plain: true}
	}
	return Condition{
		Name:        f.text("name", "condition", "disease"),
		Severity:    f.text("severity"),
		MentionedBy: f.text("mentioned_by"),
	}
}

func medicationFrom(raw json.RawMessage) Medication {
	f, ok := objectFields(raw)
	if !ok {
		return Medication{Name: textOf(raw), plain: true}
	}
	return Medication{
		Name:      f.text("name", "medication"),
		Dosage:    f.text("dosage"),
		Frequency: f.text("frequency"),
		Type:      f.text("type"),
	}
}

func treatmentPointFrom(raw json.RawMessage) TreatmentPoint {
	f, ok := objectFields(raw)
	if !ok {
		return TreatmentPoint{Point: textOf(raw), plain: true}
	}
	return TreatmentPoint{
		Category: f.text("category"),
		Point:    f.text("point", "description"),
		Priority: f.text("priority"),
	}
}

func followUpFrom(raw json.RawMessage) FollowUp {
	f, ok := objectFields(raw)
	if !ok {
		if s := bytes.TrimSpace(raw); len(s) > 0 && (s[0] == 't' || s[0] == 'f') {
			return FollowUp{Required: flagOf(raw)}
		}
		return FollowUp{Instructions: textOf(raw)}
	}
	return FollowUp{
		Required:     f.flag("required"),
		Timeframe:    f.text("timeframe"),
		Instructions: f.text("instructions"),
	}
}

func medicineReviewFrom(raw json.RawMessage) MedicineReview {
	f, ok := objectFields(raw)
	if !ok {
		return MedicineReview{MedicineName: textOf(raw)}
	}
	return MedicineReview{
		MedicineName:           f.text("medicine_name", "name", "medicine"),
		Status:                 ReviewStatus(f.text("status")),
		Reason:                 f.text("reason"),
		AgeAppropriate:         f.flag("age_appropriate"),
		Contraindications:      f.texts("contraindications"),
		AlternativesIfRejected: f.texts("alternatives_if_rejected", "alternatives"),
	}
}

func drugInteractionFrom(raw json.RawMessage) DrugInteraction {
	f, ok := objectFields(raw)
	if !ok {
		return DrugInteraction{Description: textOf(raw)}
	}
	return DrugInteraction{
		Medicines:       f.texts("medicines"),
		InteractionType: f.text("interaction_type", "severity"),
		Description:     f.text("description"),
		Recommendation:  f.text("recommendation"),
	}
}

func dosageConcernFrom(raw json.RawMessage) DosageConcern {
	f, ok := objectFields(raw)
	if !ok {
		return DosageConcern{Concern: textOf(raw), plain: true}
	}
	return DosageConcern{
		Medicine:              f.text("medicine", "medicine_name"),
		Concern:               f.text("concern"),
		RecommendedAdjustment: f.text("recommended_adjustment"),
	}
}

func proposedMedicineFrom(raw json.RawMessage) ProposedMedicine {
	f, ok := objectFields(raw)
	if !ok {
		return ProposedMedicine{Name: textOf(raw)}
	}
	return ProposedMedicine{
		Name:         f.text("name", "medicine", "medicine_name"),
		Dosage:       f.text("dosage", "dose"),
		Frequency:    f.text("frequency"),
		Duration:     f.text("duration"),
		Instructions: f.text("instructions"),
	}
}

func patientFrom(raw json.RawMessage) PatientContext {
	f, ok := objectFields(raw)
	if !ok {
		return PatientContext{Name: textOf(raw)}
	}
	return PatientContext{
		Name:           f.text("name"),
		Age:            f.text("age"),
		Symptoms:       f.texts("symptoms"),
		Conditions:     f.texts("conditions"),
		MedicalHistory: f.texts("medical_history"),
		Allergies:      f.texts("allergies"),
	}
}

// UnmarshalJSON accepts medicines as a list or a single entry, each entry a
// bare name or an object, and any scalar where the patient profile expects
// text or a list of text.
func (r *PrescriptionRequest) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	f, ok := objectFields(data)
	if !ok {
		return errNotObject
	}
	*r = PrescriptionRequest{
		Medicines: listOf(f.items("medicines", "prescribed_medicines"), proposedMedicineFrom),
		Patient:   patientFrom(f.raw("patient")),
	}
	return nil
}

func (e *ClinicalExtraction) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	f, ok := objectFields(data)
	if !ok {
		return errNotObject
	}
	*e = extractionFrom(f)
	return nil
}

func (r *PrescriptionReview) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	f, ok := objectFields(data)
	if !ok {
		return errNotObject
	}
	*r = reviewFrom(f)
	return nil
}

func (s Symptom) MarshalJSON() ([]byte, error) {
	if s.plain {
		return json.Marshal(s.Description)
	}
	type symptom Symptom
	return json.Marshal(symptom(s))
}

func (s Symptom) MarshalYAML() (any, error) {
	if s.plain {
		return s.Description, nil
	}
	type symptom Symptom
	return symptom(s), nil
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if c.plain {
		return json.Marshal(c.Name)
	}
	type condition Condition
	return json.Marshal(condition(c))
}

func (c Condition) MarshalYAML() (any, error) {
	if c.plain {
		return c.Name, nil
	}
	type condition Condition
	return condition(c), nil
}

func (m Medication) MarshalJSON() ([]byte, error) {
	if m.plain {
		return json.Marshal(m.Name)
	}
	type medication Medication
	return json.Marshal(medication(m))
}

func (m Medication) MarshalYAML() (any, error) {
	if m.plain {
		return m.Name, nil
	}
	type medication Medication
	return medication(m), nil
}

func (p TreatmentPoint) MarshalJSON() ([]byte, error) {
	if p.plain {
		return json.Marshal(p.Point)
	}
	type treatmentPoint TreatmentPoint
	return json.Marshal(treatmentPoint(p))
}

func (p TreatmentPoint) MarshalYAML() (any, error) {
	if p.plain {
		return p.Point, nil
	}
	type treatmentPoint TreatmentPoint
	return treatmentPoint(p), nil
}

func (d DosageConcern) MarshalJSON() ([]byte, error) {
	if d.plain {
		return json.Marshal(d.Concern)
	}
	type dosageConcern DosageConcern
	return json.Marshal(dosageConcern(d))
}

func (d DosageConcern) MarshalYAML() (any, error) {
	if d.plain {
		return d.Concern, nil
	}
	type dosageConcern DosageConcern
	return dosageConcern(d), nil
}
