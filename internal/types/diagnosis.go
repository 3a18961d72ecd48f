// Package types provides type definitions for structured data used throughout the fieldsync system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Severity is the impact level of an error code or issue.
type Severity string

// Severity values
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// DIYDifficulty ranks how feasible self-repair is.
type DIYDifficulty string

// DIYDifficulty values, easiest first
const (
	DifficultyEasy             DIYDifficulty = "easy"
	DifficultyModerate         DIYDifficulty = "moderate"
	DifficultyHard             DIYDifficulty = "hard"
	DifficultyProfessionalOnly DIYDifficulty = "professional_only"
)

// Recommendation is the advice returned with every diagnosis.
type Recommendation string

// Recommendation values
const (
	RecommendTryDIY             Recommendation = "try_diy"
	RecommendScheduleTechnician Recommendation = "schedule_technician"
)

// Defaults applied to issue records with missing fields.
const (
	DefaultCategory             = "Other"
	DefaultSeverity             = SeverityMedium
	DefaultDIYDifficulty        = DifficultyModerate
	DefaultEstimatedTimeMinutes = 30
)

// ErrorCode is a known device error code record.
type ErrorCode struct {
	Code           string   `json:"error_code"`
	Meaning        string   `json:"meaning"`
	Severity       Severity `json:"severity"`
	PossibleCauses *string  `json:"possible_causes,omitempty"`
	GeneralAction  *string  `json:"general_action,omitempty"`
}

// Issue is a catalog entry describing a known failure.
type Issue struct {
	ID                   int           `json:"id"`
	IssueName            string        `json:"issue_name"`
	Category             string        `json:"category,omitempty"`
	Keywords             string        `json:"keywords"` // Pipe-separated phrases
	RelatedErrorCodes    *string       `json:"related_error_codes,omitempty"`
	Severity             Severity      `json:"severity,omitempty"`
	DIYDifficulty        DIYDifficulty `json:"diy_difficulty,omitempty"`
	EstimatedTimeMinutes *int          `json:"estimated_time_minutes,omitempty"`
	PartsNeeded          *string       `json:"parts_needed,omitempty"`
	ToolsRequired        *string       `json:"tools_required,omitempty"`
	Symptoms             *string       `json:"symptoms,omitempty"`
	PossibleCauses       *string       `json:"possible_causes,omitempty"`
}

// ApplyDefaults fills empty category, severity and difficulty, and a missing time estimate.
// An explicit zero estimate is kept.
func (i *Issue) ApplyDefaults() {
	if i.Category == "" {
		i.Category = DefaultCategory
	}
	if i.Severity == "" {
		i.Severity = DefaultSeverity
	}
	if i.DIYDifficulty == "" {
		i.DIYDifficulty = DefaultDIYDifficulty
	}
	if i.EstimatedTimeMinutes == nil {
		minutes := DefaultEstimatedTimeMinutes
		i.EstimatedTimeMinutes = &minutes
	}
}

// EstimatedTime returns the repair time estimate in minutes, or the default when unset.
func (i *Issue) EstimatedTime() int {
	if i.EstimatedTimeMinutes == nil {
		return DefaultEstimatedTimeMinutes
	}
	return *i.EstimatedTimeMinutes
}

// RelatesTo reports whether code appears in the issue's related error codes.
// Matching is case-insensitive substring containment, so "F2" relates to "F21,F22".
func (i *Issue) RelatesTo(code string) bool {
	if code == "" || i.RelatedErrorCodes == nil || *i.RelatedErrorCodes == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(*i.RelatedErrorCodes), strings.ToUpper(code))
}

// ErrorCodeMatch is the error code section of a diagnosis.
type ErrorCodeMatch struct {
	Code           string   `json:"code"`
	Meaning        string   `json:"meaning"`
	Severity       Severity `json:"severity"`
	PossibleCauses *string  `json:"possible_causes"`
	GeneralAction  *string  `json:"general_action"`
}

// NewErrorCodeMatch copies an error code record into a match.
func NewErrorCodeMatch(ec *ErrorCode) *ErrorCodeMatch {
	if ec == nil {
		return nil
	}
	return &ErrorCodeMatch{
		Code:           ec.Code,
		Meaning:        ec.Meaning,
		Severity:       ec.Severity,
		PossibleCauses: ec.PossibleCauses,
		GeneralAction:  ec.GeneralAction,
	}
}

// SuggestedIssue is a ranked catalog issue with its confidence.
type SuggestedIssue struct {
	IssueID        int           `json:"issue_id"`
	IssueName      string        `json:"issue_name"`
	Category       string        `json:"category"`
	Confidence     float64       `json:"confidence"`
	Severity       Severity      `json:"severity"`
	DIYDifficulty  DIYDifficulty `json:"diy_difficulty"`
	EstimatedTime  int           `json:"estimated_time"` // Minutes
	PartsNeeded    *string       `json:"parts_needed"`
	ToolsRequired  *string       `json:"tools_required"`
	Symptoms       *string       `json:"symptoms"`
	PossibleCauses *string       `json:"possible_causes"`
}

// DiagnosisResult is the outcome of one diagnosis.
type DiagnosisResult struct {
	ErrorCodeMatch  *ErrorCodeMatch  `json:"error_code_match"`
	SuggestedIssues []SuggestedIssue `json:"suggested_issues"`
	Recommendation  Recommendation   `json:"recommendation"`
}

// DiagnoseRequest is the body of a diagnosis request.
type DiagnoseRequest struct {
	Complaint string `json:"complaint" validate:"required,max=2000,notblank"`
	ErrorCode string `json:"error_code,omitempty" validate:"omitempty,max=20"`
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate validates the DiagnoseRequest using the validator.
func (r *DiagnoseRequest) Validate() error {
	return requestValidator.Struct(r)
}

// Normalize trims surrounding whitespace from both fields.
func (r *DiagnoseRequest) Normalize() {
	r.Complaint = strings.TrimSpace(r.Complaint)
	r.ErrorCode = strings.TrimSpace(r.ErrorCode)
}
