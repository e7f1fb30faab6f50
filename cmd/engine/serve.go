package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonfoeck/job-matcher/internal/config"
	"github.com/leonfoeck/job-matcher/internal/events"
	"github.com/leonfoeck/job-matcher/internal/httpapi"
	"github.com/leonfoeck/job-matcher/internal/scheduler"
	"github.com/leonfoeck/job-matcher/internal/scrape"
	"github.com/leonfoeck/job-matcher/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and re-ingest on the configured interval",
	RunE:  runServeCmd,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default 127.0.0.1:<app.port>)")
	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		return err
	}

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)
	loadCfg := func() (config.Config, error) {
		next, err := config.Load(cfgPath)
		if err != nil {
			return config.Config{}, err
		}
		config.OverlayEnv(&next)
		if err := config.OverlayCompanies(&next, next.Ingest.CompaniesFile); err != nil {
			return config.Config{}, err
		}
		normalized, _ := config.NormalizeAndValidate(next)
		return normalized, nil
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	hub := events.NewHub()
	ing, cleanup := newIngester(ctx, cfg, st, hub)
	defer cleanup()

	tracker := &scrape.Tracker{}
	run := lockedRun(ing, lockPath(cfg))

	go scheduler.Every(ctx, cfg.Ingest.Interval(), "ingest", func(ctx context.Context) error {
		companies := cfgVal.Load().(config.Config).Ingest.Companies
		if len(companies) == 0 {
			return nil
		}
		_, err := tracker.Run(ctx, run, companies)
		if errors.Is(err, scrape.ErrAlreadyRunning) {
			return scheduler.ErrRunLocked
		}
		return err
	})

	mux := httpapi.NewMux(httpapi.Deps{
		Store:       st,
		Hub:         hub,
		Tracker:     tracker,
		RunIngest:   run,
		CfgVal:      &cfgVal,
		UserCfgPath: cfgPath,
		LoadCfg:     loadCfg,
	})

	addr := serveAddr
	if addr == "" {
		addr = fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           httpapi.NewHandler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	token := os.Getenv("JOBMATCHER_SHUTDOWN_TOKEN")
	if token == "" {
		if token, err = randomToken(16); err != nil {
			return err
		}
		log.Printf("[serve] shutdown token=%s", token)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Printf("[serve] listening on http://%s (driver=%s config=%s)", ln.Addr(), cfg.Storage.Driver, cfgPath)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
