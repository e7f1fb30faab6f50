package config

import (
	"fmt"
	"strings"

	"github.com/leonfoeck/job-matcher/internal/domain"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

var knownProviders = map[string]bool{
	string(domain.SourcePersonio):   true,
	string(domain.SourceGreenhouse): true,
	string(domain.SourceLever):      true,
}

// NormalizeAndValidate returns a normalized copy of cfg plus what is wrong
// with it. Zero timeouts and limits are filled from Default.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation
	def := Default()

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}

	// app
	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}
	if strings.TrimSpace(out.App.DataDir) == "" {
		res.addErr("app.data_dir is required")
	}

	// storage
	out.Storage.Driver = strings.ToLower(strings.TrimSpace(out.Storage.Driver))
	if out.Storage.Driver == "" {
		out.Storage.Driver = DriverSQLite
	}
	switch out.Storage.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(out.Storage.DatabaseURL) == "" {
			res.addErr("storage.database_url is required when storage.driver=postgres")
		}
	default:
		res.addErr("storage.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, out.Storage.Driver)
	}

	// providers
	out.Providers.Enabled = trimList(out.Providers.Enabled)
	for _, p := range out.Providers.Enabled {
		if !knownProviders[p] {
			res.addErr("providers.enabled: unknown provider %q", p)
		}
	}
	if len(out.Providers.Enabled) == 0 {
		res.addWarn("providers.enabled is empty; ingestion will detect nothing.")
	}
	if out.Providers.DetectTimeoutMS <= 0 {
		out.Providers.DetectTimeoutMS = def.Providers.DetectTimeoutMS
	}
	if out.Providers.FetchTimeoutMS <= 0 {
		out.Providers.FetchTimeoutMS = def.Providers.FetchTimeoutMS
	}
	if out.Providers.DetailConcurrency <= 0 {
		out.Providers.DetailConcurrency = def.Providers.DetailConcurrency
	} else if out.Providers.DetailConcurrency > 32 {
		res.addWarn("providers.detail_concurrency is high (%d) and may trip provider rate limits.", out.Providers.DetailConcurrency)
	}
	if out.Providers.RatePerSecond < 0 {
		res.addErr("providers.rate_per_second must be >= 0")
	}
	if out.Providers.Burst < 0 {
		res.addErr("providers.burst must be >= 0")
	}

	// cache
	if out.Cache.RedisURL != "" && out.Cache.TTLMinutes <= 0 {
		res.addErr("cache.ttl_minutes must be > 0 when cache.redis_url is set")
	}

	// ingest
	if out.Ingest.IntervalMinutes < 0 {
		res.addErr("ingest.interval_minutes must be >= 0")
	} else if out.Ingest.IntervalMinutes > 0 && out.Ingest.IntervalMinutes < 5 {
		res.addWarn("ingest.interval_minutes is very low (%d) and may cause rate limits.", out.Ingest.IntervalMinutes)
	}
	seen := map[string]bool{}
	companies := out.Ingest.Companies[:0:0]
	for i, c := range out.Ingest.Companies {
		c.Name = strings.TrimSpace(c.Name)
		c.Website = strings.TrimSpace(c.Website)
		if c.Website == "" {
			res.addWarn("ingest.companies[%d] has no website and will be skipped.", i)
			continue
		}
		key := strings.ToLower(c.Website)
		if seen[key] {
			continue
		}
		seen[key] = true
		companies = append(companies, c)
	}
	out.Ingest.Companies = companies
	if out.Ingest.IntervalMinutes > 0 && len(out.Ingest.Companies) == 0 && out.Ingest.CompaniesFile == "" {
		res.addWarn("scheduled ingestion is on but no companies are configured.")
	}

	return out, res
}
