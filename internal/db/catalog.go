package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jonathan/fieldsync/internal/types"
)

// -----------------------------------------------------------------------------
// Error Code Methods
// -----------------------------------------------------------------------------

// NormalizeCode returns the canonical uppercase form of an error code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// LookupErrorCode finds an error code case-insensitively.
// Returns nil, nil when the code is unknown.
func (db *DB) LookupErrorCode(ctx context.Context, code string) (*types.ErrorCode, error) {
	var ec types.ErrorCode
	err := db.pool.QueryRow(ctx,
		`SELECT error_code, meaning, severity, possible_causes, general_action
		 FROM error_codes WHERE upper(error_code) = $1
		 LIMIT 1`,
		NormalizeCode(code),
	).Scan(&ec.Code, &ec.Meaning, &ec.Severity, &ec.PossibleCauses, &ec.GeneralAction)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get error code %s: %w", code, err)
	}
	return &ec, nil
}

// UpsertErrorCode inserts or replaces an error code record.
func (db *DB) UpsertErrorCode(ctx context.Context, ec *types.ErrorCode) error {
	return upsertErrorCode(ctx, db.pool, ec)
}

// -----------------------------------------------------------------------------
// Issue Catalog Methods
// -----------------------------------------------------------------------------

const issueColumns = `id, issue_name, COALESCE(category, 'Other'), keywords, related_error_codes,
	COALESCE(severity, 'medium'), COALESCE(diy_difficulty, 'moderate'),
	COALESCE(estimated_time_minutes, 30), parts_needed, tools_required, symptoms, possible_causes`

// ListIssues returns the full issue catalog ordered by id.
func (db *DB) ListIssues(ctx context.Context) ([]types.Issue, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+issueColumns+` FROM common_issues ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	issues := make([]types.Issue, 0)
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, nil
}

// GetIssue retrieves one issue by id. Returns nil, nil when absent.
func (db *DB) GetIssue(ctx context.Context, id int) (*types.Issue, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+issueColumns+` FROM common_issues WHERE id = $1`,
		id,
	)
	issue, err := scanIssue(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get issue %d: %w", id, err)
	}
	return issue, nil
}

// UpsertIssue inserts or replaces an issue record.
func (db *DB) UpsertIssue(ctx context.Context, issue *types.Issue) error {
	return upsertIssue(ctx, db.pool, issue)
}

// ImportCatalog upserts error codes, issues and jobs in a single transaction.
func (db *DB) ImportCatalog(ctx context.Context, codes []types.ErrorCode, issues []types.Issue, jobs []types.Job) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range codes {
		if err := upsertErrorCode(ctx, tx, &codes[i]); err != nil {
			return err
		}
	}
	for i := range issues {
		if err := upsertIssue(ctx, tx, &issues[i]); err != nil {
			return err
		}
	}
	for i := range jobs {
		if err := upsertJob(ctx, tx, &jobs[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(row scanner) (*types.Issue, error) {
	var i types.Issue
	err := row.Scan(
		&i.ID, &i.IssueName, &i.Category, &i.Keywords, &i.RelatedErrorCodes,
		&i.Severity, &i.DIYDifficulty, &i.EstimatedTimeMinutes,
		&i.PartsNeeded, &i.ToolsRequired, &i.Symptoms, &i.PossibleCauses,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func upsertErrorCode(ctx context.Context, ex execer, ec *types.ErrorCode) error {
	_, err := ex.Exec(ctx,
		`INSERT INTO error_codes (error_code, meaning, severity, possible_causes, general_action)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (error_code) DO UPDATE SET
		   meaning = $2, severity = $3, possible_causes = $4, general_action = $5`,
		NormalizeCode(ec.Code), ec.Meaning, string(ec.Severity), ec.PossibleCauses, ec.GeneralAction,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert error code %s: %w", ec.Code, err)
	}
	return nil
}

func upsertIssue(ctx context.Context, ex execer, issue *types.Issue) error {
	i := *issue
	i.ApplyDefaults()

	_, err := ex.Exec(ctx,
		`INSERT INTO common_issues (id, issue_name, category, keywords, related_error_codes,
		   severity, diy_difficulty, estimated_time_minutes, parts_needed, tools_required,
		   symptoms, possible_causes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
		   issue_name = $2, category = $3, keywords = $4, related_error_codes = $5,
		   severity = $6, diy_difficulty = $7, estimated_time_minutes = $8,
		   parts_needed = $9, tools_required = $10, symptoms = $11, possible_causes = $12`,
		i.ID, i.IssueName, i.Category, i.Keywords, i.RelatedErrorCodes,
		string(i.Severity), string(i.DIYDifficulty), i.EstimatedTimeMinutes,
		i.PartsNeeded, i.ToolsRequired, i.Symptoms, i.PossibleCauses,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert issue %d: %w", i.ID, err)
	}
	return nil
}
