package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leonfoeck/job-matcher/internal/scrape/util"
	"github.com/leonfoeck/job-matcher/internal/store"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect stored job posts",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored job posts",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one job post with its plain-text description",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsShow,
}

var (
	jobsQuery store.JobQuery
	jobsJSON  bool
)

func init() {
	f := jobsListCmd.Flags()
	f.StringVar(&jobsQuery.Title, "title", "", "Title contains")
	f.StringVar(&jobsQuery.Company, "company", "", "Company name contains")
	f.StringVar(&jobsQuery.Source, "source", "", "greenhouse, lever or personio")
	f.StringVar(&jobsQuery.DateFrom, "from", "", "Posted on or after (YYYY-MM-DD)")
	f.StringVar(&jobsQuery.DateTo, "to", "", "Posted on or before (YYYY-MM-DD)")
	f.BoolVar(&jobsQuery.OnlyStudent, "student", false, "Only working-student and intern roles")
	f.StringVar(&jobsQuery.Sort, "sort", "", "field:dir, e.g. postedAt:desc")
	f.IntVar(&jobsQuery.Page, "page", 1, "Page number")
	f.IntVar(&jobsQuery.Limit, "limit", store.DefaultPageSize, "Page size")
	f.BoolVar(&jobsJSON, "json", false, "Print the page as JSON")

	jobsCmd.AddCommand(jobsListCmd, jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	page, err := st.ListJobs(cmd.Context(), jobsQuery)
	if err != nil {
		return err
	}
	if jobsJSON {
		return printJSON(cmd.OutOrStdout(), page)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMPANY\tTITLE\tLOCATION\tPOSTED")
	for _, j := range page.Data {
		company, posted := "", ""
		if j.Company != nil {
			company = j.Company.Name
		}
		if j.PostedAt != nil {
			posted = j.PostedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", j.ID, company, j.Title, j.Location, posted)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	m := page.Meta
	fmt.Fprintf(cmd.OutOrStdout(), "page %d/%d, %d total\n", m.Page, m.PageCount, m.Total)
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid id %q", args[0])
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	job, err := st.FindJob(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"job":             job,
		"descriptionText": util.HTMLToText(job.RawText),
	})
}
