package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/murmurhq/murmur/internal/admission"
	errs "github.com/murmurhq/murmur/internal/errors"
	"github.com/murmurhq/murmur/internal/guard"
)

type reportRequest struct {
	PostID     string `json:"postId"`
	ReporterID string `json:"reporterId"`
	Reason     string `json:"reason,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var sub admission.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.pipeline.SubmitPost(r.Context(), sub)
	if err != nil {
		s.writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var sub admission.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := s.pipeline.SubmitComment(r.Context(), sub)
	if err != nil {
		s.writeRejection(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PostID == "" || req.ReporterID == "" {
		writeError(w, http.StatusBadRequest, "postId and reporterId are required")
		return
	}
	outcome, err := s.pipeline.Report(r.Context(), req.PostID, req.ReporterID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrAlreadyReported):
			writeError(w, http.StatusConflict, "already reported")
		case errors.Is(err, errs.ErrNotFound):
			writeError(w, http.StatusNotFound, "post not found")
		default:
			s.logger.WithError(err).Error("report failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleBanCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	fingerprint := r.URL.Query().Get("fingerprint")
	if fingerprint == "" {
		writeError(w, http.StatusBadRequest, "fingerprint is required")
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.CheckBan(r.Context(), fingerprint))
}

// writeRejection translates pipeline errors into HTTP responses. Policy
// rejections keep their full payload so the client can explain itself.
func (s *Server) writeRejection(w http.ResponseWriter, err error) {
	var (
		banned     *admission.BanRejection
		cooled     *admission.CooldownRejection
		guarded    *admission.GuardRejection
		restricted *admission.RestrictionRejection
	)
	switch {
	case errors.As(err, &banned):
		writeJSON(w, http.StatusForbidden, banned.Status)
	case errors.As(err, &cooled):
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":            "in cooldown",
			"remainingMinutes": cooled.RemainingMinutes,
		})
	case errors.As(err, &guarded):
		status := http.StatusForbidden
		if guarded.Verdict.Action == guard.ActionThrottle {
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, guarded.Verdict)
	case errors.As(err, &restricted):
		writeJSON(w, http.StatusForbidden, restricted.Status)
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		s.logger.WithError(err).Error("submission failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
