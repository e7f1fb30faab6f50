package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteJob(r rowScanner) (domain.JobPost, error) {
	var (
		j                                   domain.JobPost
		c                                   domain.Company
		location, seniority, postedAt, cDom sql.NullString
		processed                           int
		scrapedAt, cCreatedAt, cUpdatedAt   string
	)
	if err := r.Scan(
		&j.ID, &j.CompanyID, &j.Title, &j.URL, &location, &seniority, &postedAt, &j.RawText, &processed, &scrapedAt,
		&c.ID, &c.Name, &cDom, &c.Source, &cCreatedAt, &cUpdatedAt,
	); err != nil {
		return j, err
	}
	j.Location = location.String
	j.Seniority = seniority.String
	if postedAt.Valid {
		if t := parseTime(postedAt.String); !t.IsZero() {
			j.PostedAt = &t
		}
	}
	j.Processed = processed != 0
	j.ScrapedAt = parseTime(scrapedAt)
	c.Domain = cDom.String
	c.CreatedAt = parseTime(cCreatedAt)
	c.UpdatedAt = parseTime(cUpdatedAt)
	j.Company = &c
	return j, nil
}

// FindJob returns one job with its company, or ErrNotFound.
func (s *SQLite) FindJob(ctx context.Context, id int64) (*domain.JobPost, error) {
	row := s.Pool.QueryRowContext(ctx, `SELECT `+listColumns+` `+listFrom+` WHERE j.id = ?;`, id)
	j, err := scanSQLiteJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job %d: %w", id, err)
	}
	return &j, nil
}

// ListJobs returns one page of jobs matching q.
func (s *SQLite) ListJobs(ctx context.Context, q JobQuery) (JobPage, error) {
	q = q.normalized()
	where, args, err := sqliteDialect.where(q)
	if err != nil {
		return JobPage{}, err
	}

	var total int
	if err := s.Pool.QueryRowContext(ctx, `SELECT COUNT(*) `+listFrom+` `+where+`;`, args...).Scan(&total); err != nil {
		return JobPage{}, fmt.Errorf("count jobs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s %s %s %s LIMIT ? OFFSET ?;`, listColumns, listFrom, where, orderBy(q.Sort))
	rows, err := s.Pool.QueryContext(ctx, query, append(args, q.Limit, q.offset())...)
	if err != nil {
		return JobPage{}, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := JobPage{Data: []domain.JobPost{}, Meta: newMeta(q, total)}
	for rows.Next() {
		j, err := scanSQLiteJob(rows)
		if err != nil {
			return JobPage{}, err
		}
		out.Data = append(out.Data, j)
	}
	if err := rows.Err(); err != nil {
		return JobPage{}, err
	}
	return out, nil
}
