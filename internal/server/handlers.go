package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/scintive/werkstudentjobs-sub002/internal/engine"
	"github.com/scintive/werkstudentjobs-sub002/internal/links"
	"github.com/scintive/werkstudentjobs-sub002/internal/recovery"
	"github.com/scintive/werkstudentjobs-sub002/internal/server/middleware"
	"github.com/scintive/werkstudentjobs-sub002/internal/types"
)

// Request limits
const (
	maxBodyBytes    = 1 << 20
	maxVerifyURLs   = 50
	maxVerifyURLLen = 2048
)

// AnalyzeRequest represents the request body for /analyze
type AnalyzeRequest struct {
	Job     *types.Job              `json:"job"`
	Profile *types.CandidateProfile `json:"profile"`
}

// VerifyRequest represents the request body for /links/verify
type VerifyRequest struct {
	URLs []string `json:"urls"`
}

// VerifyResponse represents the response for /links/verify
type VerifyResponse struct {
	Results map[string]links.Verification `json:"results"`
}

// RecoverResponse represents the response for /recover
type RecoverResponse struct {
	Tier     recovery.Tier         `json:"tier"`
	Analysis *types.ParsedAnalysis `json:"analysis"`
	Failures []string              `json:"failures,omitempty"`
}

// decodeJSON reads a size-limited JSON body
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

func (req *AnalyzeRequest) validate() error {
	if req.Job == nil {
		return &ErrValidation{Field: "job", Message: "is required"}
	}
	if req.Profile == nil {
		return &ErrValidation{Field: "profile", Message: "is required"}
	}
	return nil
}

// handleAnalyze returns the strategy for one job and one profile
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	strategy, err := s.analyzer.AnalyzeWithProgress(r.Context(), req.Job, req.Profile, nil)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Msg("analysis rejected")
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, strategy)
}

// handleAnalyzeStream runs an analysis and streams progress via SSE
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	requestID := middleware.GetRequestID(r.Context())
	onProgress := func(event engine.ProgressEvent) {
		name := "step"
		switch event.Step {
		case engine.StepComplete:
			name = "complete"
		case engine.StepDegraded:
			name = "degraded"
		}
		if err := sse.WriteEvent(name, event); err != nil {
			s.logger.Debug().Err(err).Str("request_id", requestID).Msg("error writing SSE event")
		}
	}

	// Blocks until complete; the complete event carries the strategy
	if _, err := s.analyzer.AnalyzeWithProgress(r.Context(), req.Job, req.Profile, onProgress); err != nil {
		sse.WriteError(err.Error())
	}
}

func (req *VerifyRequest) validate() error {
	if len(req.URLs) == 0 {
		return &ErrValidation{Field: "urls", Message: "at least one URL is required"}
	}
	if len(req.URLs) > maxVerifyURLs {
		return &ErrValidation{Field: "urls", Message: fmt.Sprintf("at most %d URLs per request", maxVerifyURLs)}
	}
	for _, raw := range req.URLs {
		if len(raw) > maxVerifyURLLen {
			return &ErrValidation{Field: "urls", Message: "URL too long"}
		}
		u, err := url.Parse(strings.TrimSpace(raw))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return &ErrValidation{Field: "urls", Message: fmt.Sprintf("not an absolute http(s) URL: %q", raw)}
		}
	}
	return nil
}

// handleVerifyLinks checks a batch of URLs for reachability
func (s *Server) handleVerifyLinks(w http.ResponseWriter, r *http.Request) {
	if s.verifier == nil {
		err := &ErrUnavailable{Service: "link verification"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	var req VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	results, err := s.verifier.VerifyLinks(r.Context(), req.URLs)
	if err != nil {
		uerr := &ErrUnavailable{Service: "link verification", Cause: err}
		s.logger.Warn().Err(err).Msg("link verification failed")
		s.errorResponse(w, HTTPStatus(uerr), uerr.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, VerifyResponse{Results: results})
}

// handleRecover runs the parse cascade over a raw model completion sent as the body
func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	res := recovery.Recover(string(raw))
	failures := make([]string, len(res.Failures))
	for i, f := range res.Failures {
		failures[i] = f.Error()
	}

	s.jsonResponse(w, http.StatusOK, RecoverResponse{
		Tier:     res.Tier,
		Analysis: res.Analysis,
		Failures: failures,
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
