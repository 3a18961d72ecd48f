package diagnosis

import (
	"context"
	"strings"
	"time"

	"github.com/jonathan/fieldsync/internal/types"
	"go.uber.org/zap"
)

// ErrorCodeLookup finds an error code record by its uppercase code.
// It returns nil, nil when the code is unknown.
type ErrorCodeLookup interface {
	LookupErrorCode(ctx context.Context, code string) (*types.ErrorCode, error)
}

// IssueCatalog returns the full issue catalog in a stable order.
type IssueCatalog interface {
	ListIssues(ctx context.Context) ([]types.Issue, error)
}

// LookupFunc adapts a function to ErrorCodeLookup.
type LookupFunc func(ctx context.Context, code string) (*types.ErrorCode, error)

// LookupErrorCode calls f.
func (f LookupFunc) LookupErrorCode(ctx context.Context, code string) (*types.ErrorCode, error) {
	return f(ctx, code)
}

// CatalogFunc adapts a function to IssueCatalog.
type CatalogFunc func(ctx context.Context) ([]types.Issue, error)

// ListIssues calls f.
func (f CatalogFunc) ListIssues(ctx context.Context) ([]types.Issue, error) {
	return f(ctx)
}

// Recorder receives diagnosis outcomes, typically for metrics.
type Recorder interface {
	ObserveDiagnosis(recommendation types.Recommendation, suggestions int, elapsed time.Duration)
	ErrorCodeLookupFailed()
	CatalogFetchFailed()
}

type nopRecorder struct{}

func (nopRecorder) ObserveDiagnosis(types.Recommendation, int, time.Duration) {}
func (nopRecorder) ErrorCodeLookupFailed()                                    {}
func (nopRecorder) CatalogFetchFailed()                                       {}

// Diagnoser runs diagnoses against injected data sources.
// It holds no mutable state and is safe for concurrent use when its sources are.
type Diagnoser struct {
	codes    ErrorCodeLookup
	catalog  IssueCatalog
	logger   *zap.Logger
	recorder Recorder
}

// Option configures a Diagnoser.
type Option func(*Diagnoser)

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Diagnoser) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithRecorder sets the outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Diagnoser) {
		if r != nil {
			d.recorder = r
		}
	}
}

// NewDiagnoser creates a Diagnoser reading error codes from codes and issues from catalog.
func NewDiagnoser(codes ErrorCodeLookup, catalog IssueCatalog, opts ...Option) *Diagnoser {
	d := &Diagnoser{
		codes:    codes,
		catalog:  catalog,
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Diagnose matches complaint (and the optional errorCode) against the issue catalog.
//
// A failed error code lookup is logged and treated as no match. A failed catalog
// fetch aborts the diagnosis with a *DataSourceError.
func (d *Diagnoser) Diagnose(ctx context.Context, complaint, errorCode string) (*types.DiagnosisResult, error) {
	start := time.Now()

	var match *types.ErrorCodeMatch
	if errorCode != "" {
		match = d.resolveErrorCode(ctx, errorCode)
	}

	issues, err := d.catalog.ListIssues(ctx)
	if err != nil {
		d.recorder.CatalogFetchFailed()
		return nil, &DataSourceError{Source: "issue catalog", Cause: err}
	}

	result := Rank(complaint, errorCode, match, issues)

	elapsed := time.Since(start)
	d.recorder.ObserveDiagnosis(result.Recommendation, len(result.SuggestedIssues), elapsed)
	d.logger.Debug("diagnosis complete",
		zap.String("error_code", errorCode),
		zap.Bool("error_code_matched", match != nil),
		zap.Int("catalog_size", len(issues)),
		zap.Int("suggestions", len(result.SuggestedIssues)),
		zap.String("recommendation", string(result.Recommendation)),
		zap.Duration("elapsed", elapsed),
	)

	return result, nil
}

// resolveErrorCode looks up the uppercase code, swallowing lookup failures.
func (d *Diagnoser) resolveErrorCode(ctx context.Context, errorCode string) *types.ErrorCodeMatch {
	code := strings.ToUpper(errorCode)

	record, err := d.codes.LookupErrorCode(ctx, code)
	if err != nil {
		d.recorder.ErrorCodeLookupFailed()
		d.logger.Warn("error code lookup failed, continuing without it",
			zap.String("error_code", code),
			zap.Error(err),
		)
		return nil
	}
	return types.NewErrorCodeMatch(record)
}
