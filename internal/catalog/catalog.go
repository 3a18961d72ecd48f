// Package catalog loads a diagnosis catalog from a JSON file and serves it from memory.
//
// A Catalog satisfies the same read interfaces as the PostgreSQL store, so the
// diagnose command and the API can run without a database.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jonathan/fieldsync/internal/schemas"
	"github.com/jonathan/fieldsync/internal/types"
)

// File is the on-disk catalog document.
type File struct {
	ErrorCodes []types.ErrorCode `json:"error_codes"`
	Issues     []types.Issue     `json:"issues"`
	Jobs       []types.Job       `json:"jobs,omitempty"`
}

// LoadError reports a catalog file that could not be read, validated or decoded.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load catalog %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Catalog is an immutable in-memory error code table, issue catalog and job list.
type Catalog struct {
	codes  map[string]types.ErrorCode
	issues []types.Issue
	jobs   []types.Job
}

// LoadFile reads, validates and decodes a catalog file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	f, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Path: path, Cause: err}
	}
	return f, nil
}

// Parse validates a catalog document against the embedded schema and decodes it.
// Issue defaults are applied and error codes are uppercased.
func Parse(data []byte) (*File, error) {
	if err := schemas.ValidateCatalog(data); err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	seen := make(map[int]bool, len(f.Issues))
	for i := range f.Issues {
		if seen[f.Issues[i].ID] {
			return nil, fmt.Errorf("duplicate issue id %d", f.Issues[i].ID)
		}
		seen[f.Issues[i].ID] = true
		f.Issues[i].ApplyDefaults()
	}
	for i := range f.ErrorCodes {
		f.ErrorCodes[i].Code = strings.ToUpper(strings.TrimSpace(f.ErrorCodes[i].Code))
	}
	for i := range f.Jobs {
		if f.Jobs[i].Status == "" {
			f.Jobs[i].Status = types.JobScheduled
		}
	}
	return &f, nil
}

// New builds a Catalog from a decoded file. Issues are ordered by id and jobs by
// scheduled time so iteration matches the database store.
func New(f *File) *Catalog {
	c := &Catalog{
		codes:  make(map[string]types.ErrorCode, len(f.ErrorCodes)),
		issues: append([]types.Issue(nil), f.Issues...),
		jobs:   append([]types.Job(nil), f.Jobs...),
	}
	for _, ec := range f.ErrorCodes {
		c.codes[strings.ToUpper(ec.Code)] = ec
	}
	sort.SliceStable(c.issues, func(i, j int) bool { return c.issues[i].ID < c.issues[j].ID })
	sort.SliceStable(c.jobs, func(i, j int) bool {
		if c.jobs[i].ScheduledAt.Equal(c.jobs[j].ScheduledAt) {
			return c.jobs[i].ID < c.jobs[j].ID
		}
		return c.jobs[i].ScheduledAt.Before(c.jobs[j].ScheduledAt)
	})
	return c
}

// Open loads a catalog file into memory.
func Open(path string) (*Catalog, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return New(f), nil
}

// LookupErrorCode finds an error code case-insensitively. Returns nil, nil when unknown.
func (c *Catalog) LookupErrorCode(_ context.Context, code string) (*types.ErrorCode, error) {
	ec, ok := c.codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, nil
	}
	return &ec, nil
}

// ListIssues returns a copy of the issue catalog ordered by id.
func (c *Catalog) ListIssues(_ context.Context) ([]types.Issue, error) {
	return append([]types.Issue(nil), c.issues...), nil
}

// Len returns the number of error codes and issues.
func (c *Catalog) Len() (codes, issues int) {
	return len(c.codes), len(c.issues)
}

// ListJobs returns a page of jobs matching status (empty for any) and the total match count.
func (c *Catalog) ListJobs(_ context.Context, status types.JobStatus, limit, offset int) ([]types.Job, int, error) {
	limit, offset = types.NormalizePage(limit, offset)
	matched := make([]types.Job, 0, len(c.jobs))
	for _, j := range c.jobs {
		if status == "" || j.Status == status {
			matched = append(matched, j)
		}
	}
	total := len(matched)
	if offset >= total {
		return []types.Job{}, total, nil
	}
	end := total
	if offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

// GetJob returns a job by id. Returns nil, nil when absent.
func (c *Catalog) GetJob(_ context.Context, id string) (*types.Job, error) {
	for _, j := range c.jobs {
		if j.ID == id {
			job := j
			return &job, nil
		}
	}
	return nil, nil
}

// Ping always succeeds; the catalog lives in memory.
func (c *Catalog) Ping(context.Context) error {
	return nil
}
