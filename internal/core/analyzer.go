package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"medical-analyzer/internal/llm"
	"medical-analyzer/pkg"
)

// Outcome names the three ways a call can end.  They only appear in logs.
const (
	outcomeParsed        = "parsed"
	outcomeParseFailed   = "parse_failed"
	outcomeServiceFailed = "service_failed"
)

// ConversationAnalyzer turns a free-text consultation into a
// pkg.ClinicalExtraction.  Construct it once and share it: it keeps no
// per-call state.
type ConversationAnalyzer struct {
	LLM    llm.Client
	Logger zerolog.Logger
}

// NewConversationAnalyzer constructs an analyzer backed by client.
func NewConversationAnalyzer(client llm.Client, logger zerolog.Logger) *ConversationAnalyzer {
	return &ConversationAnalyzer{
		LLM:    client,
		Logger: logger.With().Str("component", "conversation_analyzer").Logger(),
	}
}

// Extract asks the model for a structured extraction of conversation.  It
// never fails: a response that is not JSON yields an empty extraction whose
// Summary carries the raw text, and a failed call yields an empty extraction
// with an empty Summary.
func (a *ConversationAnalyzer) Extract(ctx context.Context, conversation string) pkg.ClinicalExtraction {
	start := time.Now()
	resp, err := a.LLM.Generate(ctx, BuildExtractionPrompt(conversation))
	if err != nil {
		a.Logger.Error().Err(err).
			Str("outcome", outcomeServiceFailed).
			Dur("latency", time.Since(start)).
			Msg("extraction call failed")
		return pkg.EmptyClinicalExtraction()
	}

	text := strings.TrimSpace(resp)
	extraction, err := pkg.DecodeClinicalExtraction(text)
	if err != nil {
		a.Logger.Warn().Err(err).
			Str("outcome", outcomeParseFailed).
			Dur("latency", time.Since(start)).
			Msg("extraction response is not JSON")
		fallback := pkg.EmptyClinicalExtraction()
		fallback.Summary = text
		return fallback
	}

	a.Logger.Info().
		Str("outcome", outcomeParsed).
		Dur("latency", time.Since(start)).
		Int("symptoms", len(extraction.Symptoms)).
		Int("red_flags", len(extraction.RedFlags)).
		Msg("extraction complete")
	return extraction
}
