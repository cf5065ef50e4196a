package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foldlab/foldd/internal/model"
	"github.com/foldlab/foldd/internal/service"
	"github.com/foldlab/foldd/internal/store"
)

const maxBodySize = 1 << 20 // 1 MB

// submitJobResponse is the JSON body returned by POST /v1/jobs.
type submitJobResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	var in model.JobInput
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	jobID, err := s.svc.Submit(r.Context(), &in)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			s.writeError(w, http.StatusBadRequest, verr.Reason)
			return
		}
		s.logger.Error("submit job", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, "failed to schedule job")
		return
	}

	s.writeJSON(w, http.StatusAccepted, submitJobResponse{
		JobID:  jobID,
		Status: model.StatusQueued,
	})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.svc.GetStatus(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if errors.Is(err, store.ErrUnreadable) {
		s.logger.Error("status unreadable", "job_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "status unreadable")
		return
	}
	if err != nil {
		s.logger.Error("get job status", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get job status")
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := s.svc.GetArtifact(r.Context(), id)
	if errors.Is(err, service.ErrArtifactNotAvailable) {
		s.writeError(w, http.StatusNotFound, "artifact not available")
		return
	}
	if err != nil {
		s.logger.Error("get artifact", "job_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to get artifact")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".pdb"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write artifact response", "job_id", id, "error", err)
	}
}

// writeJSON writes a JSON response with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
