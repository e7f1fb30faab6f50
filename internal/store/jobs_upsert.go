package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

const sqliteUpsertJob = `
INSERT INTO job_posts(company_id, title, url, location, seniority, posted_at, raw_text, processed, scraped_at)
VALUES(?, ?, ?, ?, ?, ?, ?, 0, ?)
ON CONFLICT(url) DO UPDATE SET
  company_id = excluded.company_id,
  title = excluded.title,
  location = excluded.location,
  seniority = excluded.seniority,
  posted_at = excluded.posted_at,
  raw_text = excluded.raw_text,
  scraped_at = excluded.scraped_at;`

// UpsertMany stores the batch in one transaction. Jobs are unique by URL and
// the last write wins; rows that existed before the statement count as
// updated. Jobs without a title or URL are skipped.
func (s *SQLite) UpsertMany(ctx context.Context, jobs []domain.IngestJob) (domain.UpsertResult, error) {
	var res domain.UpsertResult
	if len(jobs) == 0 {
		return res, nil
	}

	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(s.now())
	memo := make(map[string]int64)

	for _, j := range jobs {
		if !j.Valid() {
			continue
		}
		cid, err := sqliteCompanyID(ctx, tx, memo, j, now)
		if err != nil {
			return domain.UpsertResult{}, err
		}

		url := strings.TrimSpace(j.URL)
		var existing int64
		err = tx.QueryRowContext(ctx, `SELECT id FROM job_posts WHERE url = ?;`, url).Scan(&existing)
		exists := err == nil
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return domain.UpsertResult{}, fmt.Errorf("lookup job %q: %w", url, err)
		}

		var postedAt any
		if t, ok := ParsePostedAt(j.PostedAt); ok {
			postedAt = formatTime(t)
		}

		if _, err := tx.ExecContext(ctx, sqliteUpsertJob,
			cid,
			strings.TrimSpace(j.Title),
			url,
			nullIfEmpty(j.Location),
			nullIfEmpty(j.Seniority),
			postedAt,
			j.RawText,
			now,
		); err != nil {
			return domain.UpsertResult{}, fmt.Errorf("upsert job %q: %w", url, err)
		}

		if exists {
			res.Updated++
		} else {
			res.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.UpsertResult{}, fmt.Errorf("commit: %w", err)
	}
	res.Total = res.Inserted + res.Updated
	return res, nil
}
