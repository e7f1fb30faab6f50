package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

// LoadDotEnv loads the given .env files into the process environment.
// Missing files are ignored and existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// OverlayEnv applies JOBMATCHER_*, DATABASE_URL and REDIS_URL on top of cfg.
func OverlayEnv(cfg *Config) {
	if v := os.Getenv("JOBMATCHER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		} else {
			log.Printf("[config] ignoring JOBMATCHER_PORT=%q: %v", v, err)
		}
	}
	if v := os.Getenv("JOBMATCHER_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := os.Getenv("JOBMATCHER_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("JOBMATCHER_PROVIDERS"); v != "" {
		cfg.Providers.Enabled = strings.Split(v, ",")
	}
}

// CompaniesFile is the standalone companies list format.
type CompaniesFile struct {
	Companies []domain.CompanyInput `yaml:"companies"`
	Websites  []string              `yaml:"websites"`
}

// OverlayCompanies appends the companies listed in path. A missing file is
// not an error.
func OverlayCompanies(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	if !filepath.IsAbs(path) && cfg.App.DataDir != "" {
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(cfg.App.DataDir, path)
		}
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var cf CompaniesFile
	if err := yaml.Unmarshal(b, &cf); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Ingest.Companies = append(cfg.Ingest.Companies, cf.Companies...)
	for _, w := range cf.Websites {
		cfg.Ingest.Companies = append(cfg.Ingest.Companies, domain.CompanyInput{Website: w})
	}
	return nil
}

// SQLitePath resolves the configured database file against the data dir.
func (c Config) SQLitePath() string {
	p := c.Storage.SQLitePath
	if p == "" {
		p = "jobs.db"
	}
	if filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	return filepath.Join(c.App.DataDir, p)
}
