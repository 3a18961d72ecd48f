package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jonathan/fieldsync/internal/types"
	"go.uber.org/zap"
)

// maxDiagnoseBody caps the request body; complaints are at most 2000 characters.
const maxDiagnoseBody = 64 << 10

// handleDiagnose runs a diagnosis for a complaint and optional error code.
func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req types.DiagnoseRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxDiagnoseBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		verr := validationFailure(err)
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	result, err := s.diagnoser.Diagnose(r.Context(), req.Complaint, req.ErrorCode)
	if err != nil {
		s.logger.Error("diagnosis failed",
			zap.String("error_code", req.ErrorCode),
			zap.Error(err),
		)
		s.errorResponse(w, HTTPStatus(err), "Diagnosis failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}
