package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/secrets"
)

// Postgres is the server backend, backed by a pgx pool.
type Postgres struct {
	Pool *pgxpool.Pool
	Now  func() time.Time
}

// OpenPostgres connects to dsn. When the DSN carries no password and
// keyringAccount is set, the password is read from the OS keychain.
func OpenPostgres(ctx context.Context, dsn, keyringAccount string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.ConnConfig.Password == "" && strings.TrimSpace(keyringAccount) != "" {
		pw, err := secrets.DatabasePassword(keyringAccount)
		if err != nil {
			return nil, err
		}
		cfg.ConnConfig.Password = pw
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Postgres) Ping(ctx context.Context) error { return p.Pool.Ping(ctx) }

func (p *Postgres) Close() error {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
	return nil
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  domain TEXT UNIQUE,
  source TEXT NOT NULL DEFAULT 'unknown',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name)`,
	`CREATE TABLE IF NOT EXISTS job_posts (
  id BIGSERIAL PRIMARY KEY,
  company_id BIGINT NOT NULL REFERENCES companies(id),
  title TEXT NOT NULL,
  url TEXT NOT NULL UNIQUE,
  location TEXT,
  seniority TEXT,
  posted_at TIMESTAMPTZ,
  raw_text TEXT NOT NULL DEFAULT '',
  processed BOOLEAN NOT NULL DEFAULT FALSE,
  scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_job_posts_company ON job_posts(company_id)`,
	`CREATE INDEX IF NOT EXISTS idx_job_posts_scraped_at ON job_posts(scraped_at)`,
	`CREATE INDEX IF NOT EXISTS idx_job_posts_posted_at ON job_posts(posted_at)`,
	`CREATE INDEX IF NOT EXISTS idx_job_posts_processed ON job_posts(processed) WHERE NOT processed`,
}

// Migrate creates the schema idempotently.
func (p *Postgres) Migrate(ctx context.Context) error {
	return pgx.BeginFunc(ctx, p.Pool, func(tx pgx.Tx) error {
		for _, stmt := range postgresSchema {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("schema: %w", err)
			}
		}
		return nil
	})
}

func postgresCompanyID(ctx context.Context, tx pgx.Tx, memo map[string]int64, j domain.IngestJob, now time.Time) (int64, error) {
	key := companyKey(j)
	if id, ok := memo[key]; ok {
		return id, nil
	}

	incoming := strings.TrimSpace(j.Company)
	src := string(j.Source)
	var id int64

	if dom := strings.ToLower(strings.TrimSpace(j.Domain)); dom != "" {
		err := tx.QueryRow(ctx, `
INSERT INTO companies(name, domain, source, created_at, updated_at)
VALUES($1, $2, COALESCE(NULLIF($3::text, ''), 'unknown'), $4, $4)
ON CONFLICT(domain) DO UPDATE SET
  name = CASE WHEN $5::text <> '' THEN $5::text ELSE companies.name END,
  source = CASE WHEN $3::text <> '' THEN $3::text ELSE companies.source END,
  updated_at = EXCLUDED.updated_at
RETURNING id`,
			companyName(j), dom, src, now, incoming,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("upsert company %q: %w", dom, err)
		}
		memo[key] = id
		return id, nil
	}

	name := companyName(j)
	err := tx.QueryRow(ctx, `SELECT id FROM companies WHERE name = $1 ORDER BY id LIMIT 1`, name).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, `
INSERT INTO companies(name, domain, source, created_at, updated_at)
VALUES($1, NULL, COALESCE(NULLIF($2::text, ''), 'unknown'), $3, $3)
RETURNING id`, name, src, now).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("create company %q: %w", name, err)
		}
	case err != nil:
		return 0, fmt.Errorf("find company %q: %w", name, err)
	case src != "":
		if _, err := tx.Exec(ctx, `UPDATE companies SET source = $1, updated_at = $2 WHERE id = $3`, src, now, id); err != nil {
			return 0, fmt.Errorf("refresh company %q: %w", name, err)
		}
	}
	memo[key] = id
	return id, nil
}

// xmax is zero only for rows this statement inserted.
const postgresUpsertJob = `
INSERT INTO job_posts(company_id, title, url, location, seniority, posted_at, raw_text, processed, scraped_at)
VALUES($1, $2, $3, $4, $5, $6, $7, FALSE, $8)
ON CONFLICT(url) DO UPDATE SET
  company_id = EXCLUDED.company_id,
  title = EXCLUDED.title,
  location = EXCLUDED.location,
  seniority = EXCLUDED.seniority,
  posted_at = EXCLUDED.posted_at,
  raw_text = EXCLUDED.raw_text,
  scraped_at = EXCLUDED.scraped_at
RETURNING (xmax = 0)`

// UpsertMany has the same semantics as SQLite.UpsertMany.
func (p *Postgres) UpsertMany(ctx context.Context, jobs []domain.IngestJob) (domain.UpsertResult, error) {
	var res domain.UpsertResult
	if len(jobs) == 0 {
		return res, nil
	}

	now := p.now()
	memo := make(map[string]int64)

	err := pgx.BeginFunc(ctx, p.Pool, func(tx pgx.Tx) error {
		for _, j := range jobs {
			if !j.Valid() {
				continue
			}
			cid, err := postgresCompanyID(ctx, tx, memo, j, now)
			if err != nil {
				return err
			}

			var postedAt *time.Time
			if t, ok := ParsePostedAt(j.PostedAt); ok {
				postedAt = &t
			}

			url := strings.TrimSpace(j.URL)
			var inserted bool
			if err := tx.QueryRow(ctx, postgresUpsertJob,
				cid,
				strings.TrimSpace(j.Title),
				url,
				nullIfEmpty(j.Location),
				nullIfEmpty(j.Seniority),
				postedAt,
				j.RawText,
				now,
			).Scan(&inserted); err != nil {
				return fmt.Errorf("upsert job %q: %w", url, err)
			}
			if inserted {
				res.Inserted++
			} else {
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return domain.UpsertResult{}, err
	}
	res.Total = res.Inserted + res.Updated
	return res, nil
}

func scanPostgresJob(r rowScanner) (domain.JobPost, error) {
	var (
		j                         domain.JobPost
		c                         domain.Company
		location, seniority, cDom *string
	)
	if err := r.Scan(
		&j.ID, &j.CompanyID, &j.Title, &j.URL, &location, &seniority, &j.PostedAt, &j.RawText, &j.Processed, &j.ScrapedAt,
		&c.ID, &c.Name, &cDom, &c.Source, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return j, err
	}
	if location != nil {
		j.Location = *location
	}
	if seniority != nil {
		j.Seniority = *seniority
	}
	if cDom != nil {
		c.Domain = *cDom
	}
	if j.PostedAt != nil {
		t := j.PostedAt.UTC()
		j.PostedAt = &t
	}
	j.ScrapedAt = j.ScrapedAt.UTC()
	j.Company = &c
	return j, nil
}

func (p *Postgres) FindJob(ctx context.Context, id int64) (*domain.JobPost, error) {
	row := p.Pool.QueryRow(ctx, `SELECT `+listColumns+` `+listFrom+` WHERE j.id = $1`, id)
	j, err := scanPostgresJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find job %d: %w", id, err)
	}
	return &j, nil
}

func (p *Postgres) ListJobs(ctx context.Context, q JobQuery) (JobPage, error) {
	q = q.normalized()
	where, args, err := postgresDialect.where(q)
	if err != nil {
		return JobPage{}, err
	}

	var total int
	if err := p.Pool.QueryRow(ctx, `SELECT COUNT(*) `+listFrom+` `+where, args...).Scan(&total); err != nil {
		return JobPage{}, fmt.Errorf("count jobs: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s %s %s %s LIMIT $%d OFFSET $%d`, listColumns, listFrom, where, orderBy(q.Sort), n+1, n+2)
	rows, err := p.Pool.Query(ctx, query, append(args, q.Limit, q.offset())...)
	if err != nil {
		return JobPage{}, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	out := JobPage{Data: []domain.JobPost{}, Meta: newMeta(q, total)}
	for rows.Next() {
		j, err := scanPostgresJob(rows)
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
