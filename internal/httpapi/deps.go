package httpapi

import (
	"sync/atomic"

	"github.com/leonfoeck/job-matcher/internal/config"
	"github.com/leonfoeck/job-matcher/internal/events"
	"github.com/leonfoeck/job-matcher/internal/scrape"
	"github.com/leonfoeck/job-matcher/internal/store"
)

type Deps struct {
	Store store.JobStore

	Hub *events.Hub

	// Run bookkeeping shared with the scheduler
	Tracker   *scrape.Tracker
	RunIngest scrape.RunFunc

	// Config persistence
	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
