package main

import (
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leonfoeck/job-matcher/internal/config"
	"github.com/leonfoeck/job-matcher/internal/domain"
	"github.com/leonfoeck/job-matcher/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [website...]",
	Short: "Run one ingestion over the given websites",
	Long: `Detects the job board behind every website, fetches its postings and
upserts them. Without arguments the companies from the config (and its
companies file) are used. The result log is printed as JSON.`,
	RunE: runIngestCmd,
}

var (
	ingestFile   string
	ingestDryRun bool
)

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "YAML file with companies:/websites: lists")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "Detect and fetch but do not write to storage")
	rootCmd.AddCommand(ingestCmd)
}

func runIngestCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	companies, err := ingestInputs(cfg, args, ingestFile)
	if err != nil {
		return err
	}
	if len(companies) == 0 {
		return errors.New("no companies: pass websites, --file, or set ingest.companies in the config")
	}

	var st store.JobStore
	if !ingestDryRun {
		st, err = store.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	ing, cleanup := newIngester(ctx, cfg, st, nil)
	defer cleanup()

	res, runErr := lockedRun(ing, lockPath(cfg))(ctx, companies)
	if res.RunID != "" {
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("ingest: %w", runErr)
	}
	return nil
}

// ingestInputs picks the companies for one run: arguments and --file win
// over the configured list.
func ingestInputs(cfg config.Config, args []string, file string) ([]domain.CompanyInput, error) {
	var out []domain.CompanyInput
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, domain.CompanyInput{Website: a})
		}
	}
	if file != "" {
		var fc config.Config
		fc.App.DataDir = cfg.App.DataDir
		if err := config.OverlayCompanies(&fc, file); err != nil {
			return nil, err
		}
		if len(fc.Ingest.Companies) == 0 {
			return nil, fmt.Errorf("%s lists no companies", file)
		}
		out = append(out, fc.Ingest.Companies...)
	}
	if len(out) == 0 {
		out = cfg.Ingest.Companies
	}
	return out, nil
}
