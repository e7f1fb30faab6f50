package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Storage   Storage   `yaml:"storage"`
	Providers Providers `yaml:"providers"`
	Cache     Cache     `yaml:"cache"`
	Ingest    Ingest    `yaml:"ingest"`
}

type Storage struct {
	Driver         string `yaml:"driver"`          // sqlite | postgres
	SQLitePath     string `yaml:"sqlite_path"`     // relative paths live under app.data_dir
	DatabaseURL    string `yaml:"database_url"`    // postgres only
	KeyringAccount string `yaml:"keyring_account"` // postgres password lookup when the DSN has none
}

type Providers struct {
	// Enabled picks providers; they always run in the order personio,
	// greenhouse, lever regardless of the order listed here.
	Enabled []string `yaml:"enabled"`

	DetectTimeoutMS   int     `yaml:"detect_timeout_ms"`
	FetchTimeoutMS    int     `yaml:"fetch_timeout_ms"`
	DetailConcurrency int     `yaml:"detail_concurrency"`
	RatePerSecond     float64 `yaml:"rate_per_second"` // per host; 0 disables
	Burst             int     `yaml:"burst"`

	GreenhouseAPIBase string `yaml:"greenhouse_api_base,omitempty"`
	LeverAPIBase      string `yaml:"lever_api_base,omitempty"`
	PersonioFeedURL   string `yaml:"personio_feed_url,omitempty"`
}

func (p Providers) DetectTimeout() time.Duration {
	return time.Duration(p.DetectTimeoutMS) * time.Millisecond
}

func (p Providers) FetchTimeout() time.Duration {
	return time.Duration(p.FetchTimeoutMS) * time.Millisecond
}

// IsEnabled reports whether name is listed in Enabled.
func (p Providers) IsEnabled(name string) bool {
	for _, e := range p.Enabled {
		if e == name {
			return true
		}
	}
	return false
}

type Cache struct {
	RedisURL   string `yaml:"redis_url"` // empty disables the match cache
	TTLMinutes int    `yaml:"ttl_minutes"`
}

func (c Cache) TTL() time.Duration { return time.Duration(c.TTLMinutes) * time.Minute }

type Ingest struct {
	IntervalMinutes int                   `yaml:"interval_minutes"` // 0 disables scheduled runs
	CompaniesFile   string                `yaml:"companies_file,omitempty"`
	Companies       []domain.CompanyInput `yaml:"companies"`
}

func (i Ingest) Interval() time.Duration { return time.Duration(i.IntervalMinutes) * time.Minute }

// Default is the configuration written on first start.
func Default() Config {
	var cfg Config
	cfg.App.Port = 38471
	cfg.App.DataDir = "./data"
	cfg.Storage = Storage{Driver: DriverSQLite, SQLitePath: "jobs.db"}
	cfg.Providers = Providers{
		Enabled:           []string{string(domain.SourcePersonio), string(domain.SourceGreenhouse), string(domain.SourceLever)},
		DetectTimeoutMS:   5000,
		FetchTimeoutMS:    8000,
		DetailConcurrency: 6,
		RatePerSecond:     5,
		Burst:             5,
	}
	cfg.Cache = Cache{TTLMinutes: 24 * 60}
	cfg.Ingest = Ingest{IntervalMinutes: 0}
	return cfg
}

// Load reads path over the defaults, so a partial file is enough.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
