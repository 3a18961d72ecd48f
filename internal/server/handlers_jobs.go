package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/fieldsync/internal/types"
	"go.uber.org/zap"
)

// JobListResponse is the body of GET /api/jobs.
type JobListResponse struct {
	Jobs   []types.Job `json:"jobs"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// handleListJobs returns a page of jobs, optionally filtered by status.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := types.JobStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		verr := &ErrValidation{Field: "status", Message: "must be one of scheduled, in_progress, completed, cancelled"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	limit, err := intParam(q.Get("limit"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := intParam(q.Get("offset"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid offset")
		return
	}
	limit, offset = types.NormalizePage(limit, offset)

	jobs, total, err := s.store.ListJobs(r.Context(), status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list jobs", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []types.Job{}
	}

	s.jsonResponse(w, http.StatusOK, JobListResponse{
		Jobs:   jobs,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// handleGetJob returns a single job by id.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to get job", zap.String("job_id", id), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get job")
		return
	}
	if job == nil {
		nf := &ErrNotFound{Resource: "job", ID: id}
		s.errorResponse(w, HTTPStatus(nf), "Job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// intParam parses an optional integer query parameter; empty means zero.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
