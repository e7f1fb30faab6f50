package store

import (
	"context"
	"fmt"
)

// sqliteMigrations[i] brings the schema to user_version i+1.
var sqliteMigrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS companies (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  domain TEXT UNIQUE,
  source TEXT NOT NULL DEFAULT 'unknown',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);`,
		`CREATE TABLE IF NOT EXISTS job_posts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company_id INTEGER NOT NULL REFERENCES companies(id),
  title TEXT NOT NULL,
  url TEXT NOT NULL UNIQUE,
  location TEXT,
  seniority TEXT,
  posted_at TEXT,
  raw_text TEXT NOT NULL DEFAULT '',
  processed INTEGER NOT NULL DEFAULT 0,
  scraped_at TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_job_posts_company ON job_posts(company_id);`,
		`CREATE INDEX IF NOT EXISTS idx_job_posts_scraped_at ON job_posts(scraped_at);`,
		`CREATE INDEX IF NOT EXISTS idx_job_posts_posted_at ON job_posts(posted_at);`,
	},
	{
		`CREATE INDEX IF NOT EXISTS idx_job_posts_processed ON job_posts(processed) WHERE processed = 0;`,
	},
}

// Migrate applies every migration newer than PRAGMA user_version in one
// transaction.
func (s *SQLite) Migrate(ctx context.Context) error {
	tx, err := s.Pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= len(sqliteMigrations) {
		return tx.Commit()
	}

	for i := v; i < len(sqliteMigrations); i++ {
		for _, stmt := range sqliteMigrations[i] {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("schema v%d: %w", i+1, err)
			}
		}
	}

	// PRAGMA does not take bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d;`, len(sqliteMigrations))); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion reports PRAGMA user_version.
func (s *SQLite) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.Pool.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v)
	return v, err
}
