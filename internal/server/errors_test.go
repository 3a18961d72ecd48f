package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/fieldsync/internal/diagnosis"
	"github.com/jonathan/fieldsync/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "complaint", Message: "is required"}
	assert.Equal(t, "validation error: complaint - is required", err.Error())

	err = &ErrValidation{Message: "bad body"}
	assert.Equal(t, "validation error: bad body", err.Error())
}

func TestErrNotFound(t *testing.T) {
	err := &ErrNotFound{Resource: "job", ID: "42"}
	assert.Equal(t, "job not found: 42", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ErrValidation{Field: "f", Message: "m"}, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("decode: %w", &ErrValidation{Message: "m"}), http.StatusBadRequest},
		{"not found", &ErrNotFound{Resource: "job", ID: "1"}, http.StatusNotFound},
		{"data source", &diagnosis.DataSourceError{Source: "issue catalog", Cause: errors.New("down")}, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationFailure(t *testing.T) {
	req := types.DiagnoseRequest{Complaint: ""}
	err := req.Validate()
	require.Error(t, err)

	verr := validationFailure(err)
	assert.Equal(t, "complaint", verr.Field)
	assert.Equal(t, "is required", verr.Message)

	verr = validationFailure(errors.New("plain"))
	assert.Equal(t, "", verr.Field)
	assert.Equal(t, "plain", verr.Message)
}
