package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medical-analyzer/internal/llm"
	"medical-analyzer/pkg"
)

// PrescriptionVerifier asks the model for a senior-doctor safety review of a
// proposed prescription.
type PrescriptionVerifier struct {
	LLM    llm.Client
	Logger zerolog.Logger
}

// NewPrescriptionVerifier constructs a verifier backed by client.
func NewPrescriptionVerifier(client llm.Client, logger zerolog.Logger) *PrescriptionVerifier {
	return &PrescriptionVerifier{
		LLM:    client,
		Logger: logger.With().Str("component", "prescription_verifier").Logger(),
	}
}

// Verify reviews req and never fails.  The two fallbacks are deliberately
// different: an unreadable answer is permissive (parseFallbackReview), an
// unreachable reviewer is restrictive (serviceFallbackReview).  Returned
// reviews are not cross-checked against req.
func (v *PrescriptionVerifier) Verify(ctx context.Context, req pkg.PrescriptionRequest) pkg.PrescriptionReview {
	start := time.Now()
	resp, err := v.LLM.Generate(ctx, BuildVerificationPrompt(req))
	if err != nil {
		v.Logger.Error().Err(err).
			Str("outcome", outcomeServiceFailed).
			Int("medicines", len(req.Medicines)).
			Dur("latency", time.Since(start)).
			Msg("verification call failed")
		return serviceFallbackReview(err)
	}

	text := strings.TrimSpace(resp)
	review, err := pkg.DecodePrescriptionReview(text)
	if err != nil {
		v.Logger.Warn().Err(err).
			Str("outcome", outcomeParseFailed).
			Int("medicines", len(req.Medicines)).
			Dur("latency", time.Since(start)).
			Msg("verification response is not JSON")
		return parseFallbackReview(text)
	}

	v.Logger.Info().
		Str("outcome", outcomeParsed).
		Int("medicines", len(req.Medicines)).
		Str("overall_safety", string(review.OverallSafety)).
		Bool("can_prescribe", review.CanPrescribe).
		Dur("latency", time.Since(start)).
		Msg("verification complete")
	return review
}

// parseFallbackReview does not block the prescription: the model answered,
// only its format was wrong, and the text is kept for the doctor to read.
func parseFallbackReview(raw string) pkg.PrescriptionReview {
	r := pkg.EmptyPrescriptionReview()
	r.CanPrescribe = true
	r.OverallSafety = pkg.SafetyCaution
	r.VerificationSummary = raw
	return r
}

// serviceFallbackReview blocks the prescription: no review took place.
func serviceFallbackReview(err error) pkg.PrescriptionReview {
	r := pkg.EmptyPrescriptionReview()
	r.CanPrescribe = false
	r.OverallSafety = pkg.SafetyRisky
	r.VerificationSummary = err.Error()
	r.RedFlags = []string{err.Error()}
	return r
}
