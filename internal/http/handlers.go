package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"medical-analyzer/pkg"
)

// maxBodyBytes caps request bodies; conversations are prose, not uploads.
const maxBodyBytes = 1 << 20

// Extractor is satisfied by *core.ConversationAnalyzer.
type Extractor interface {
	Extract(ctx context.Context, conversation string) pkg.ClinicalExtraction
}

// Verifier is satisfied by *core.PrescriptionVerifier.
type Verifier interface {
	Verify(ctx context.Context, req pkg.PrescriptionRequest) pkg.PrescriptionReview
}

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to http.Server.
type Server struct {
	Analyzer Extractor
	Verifier Verifier
	Logger   zerolog.Logger

	router chi.Router
}

// NewServer constructs a Server and registers its routes.
func NewServer(analyzer Extractor, verifier Verifier, logger zerolog.Logger) *Server {
	s := &Server{
		Analyzer: analyzer,
		Verifier: verifier,
		Logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/extract", s.handleExtract) // POST /api/v1/extract
		r.Post("/verify", s.handleVerify)   // POST /api/v1/verify
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtract runs the conversation analyzer.  The analyzer never fails, so
// the only non-200 answers are for malformed requests.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req pkg.ExtractRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Conversation) == "" {
		writeError(w, http.StatusBadRequest, "conversation is required")
		return
	}
	writeJSON(w, http.StatusOK, s.Analyzer.Extract(r.Context(), req.Conversation))
}

// handleVerify runs the prescription verifier.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req pkg.PrescriptionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Medicines) == 0 {
		writeError(w, http.StatusBadRequest, "at least one medicine is required")
		return
	}
	for i, m := range req.Medicines {
		if strings.TrimSpace(m.Name) == "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("medicines[%d].name is required", i))
			return
		}
	}
	writeJSON(w, http.StatusOK, s.Verifier.Verify(r.Context(), req))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, pkg.ErrorResponse{Error: msg})
}
