package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

// companyKey identifies a company within one UpsertMany call.
func companyKey(j domain.IngestJob) string {
	if d := strings.ToLower(strings.TrimSpace(j.Domain)); d != "" {
		return "d:" + d
	}
	return "n:" + companyName(j)
}

// sqliteCompanyID resolves the company row for j, creating or refreshing it.
// With a domain the row is upserted on domain and only non-empty incoming
// name and source overwrite stored values. Without one the oldest row with
// the same name is reused.
func sqliteCompanyID(ctx context.Context, tx *sql.Tx, memo map[string]int64, j domain.IngestJob, now string) (int64, error) {
	key := companyKey(j)
	if id, ok := memo[key]; ok {
		return id, nil
	}

	incoming := strings.TrimSpace(j.Company)
	src := string(j.Source)
	var id int64

	if dom := strings.ToLower(strings.TrimSpace(j.Domain)); dom != "" {
		err := tx.QueryRowContext(ctx, `
INSERT INTO companies(name, domain, source, created_at, updated_at)
VALUES(?, ?, COALESCE(NULLIF(?, ''), 'unknown'), ?, ?)
ON CONFLICT(domain) DO UPDATE SET
  name = CASE WHEN ? != '' THEN ? ELSE companies.name END,
  source = CASE WHEN ? != '' THEN ? ELSE companies.source END,
  updated_at = excluded.updated_at
RETURNING id;`,
			companyName(j), dom, src, now, now,
			incoming, incoming,
			src, src,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("upsert company %q: %w", dom, err)
		}
		memo[key] = id
		return id, nil
	}

	name := companyName(j)
	err := tx.QueryRowContext(ctx, `SELECT id FROM companies WHERE name = ? ORDER BY id LIMIT 1;`, name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
INSERT INTO companies(name, domain, source, created_at, updated_at)
VALUES(?, NULL, COALESCE(NULLIF(?, ''), 'unknown'), ?, ?)
RETURNING id;`, name, src, now, now).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("create company %q: %w", name, err)
		}
	case err != nil:
		return 0, fmt.Errorf("find company %q: %w", name, err)
	case src != "":
		if _, err := tx.ExecContext(ctx, `UPDATE companies SET source = ?, updated_at = ? WHERE id = ?;`, src, now, id); err != nil {
			return 0, fmt.Errorf("refresh company %q: %w", name, err)
		}
	}
	memo[key] = id
	return id, nil
}
