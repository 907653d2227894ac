package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/msgraph"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
)

var (
	outlookSyncFrom    string
	outlookSyncTo      string
	outlookSyncDate    string
	outlookSyncDryRun  bool
	outlookSyncProject string
	outlookSyncTZ      string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import Outlook calendar events as entries",
	Long: `Import Outlook calendar events of today (or the given range) as finished
entries. Cancelled, all-day, private and free events are skipped; events
imported before are updated in place.`,
	Args: cobra.NoArgs,
	RunE: runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	outlookSyncCmd.Flags().StringVar(&outlookSyncProject, "project", "", "Project for imported events (default from config)")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default from config)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncRange resolves the date flags into [from, to).
func syncRange(now time.Time, date, fromFlag, toFlag string) (time.Time, time.Time, error) {
	parse := func(name, v string) (time.Time, error) {
		d, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --%s value %q: %w", name, v, err)
		}
		return d, nil
	}

	switch {
	case date != "":
		d, err := parse("date", date)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return d, timecalc.NextDay(d), nil

	case fromFlag != "" || toFlag != "":
		if fromFlag == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		from, err := parse("from", fromFlag)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to := timecalc.NextDay(now)
		if toFlag != "" {
			t, err := parse("to", toFlag)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			to = timecalc.NextDay(t)
		}
		if !from.Before(to) {
			return time.Time{}, time.Time{}, fmt.Errorf("--from must not be after --to")
		}
		return from, to, nil

	default:
		return timecalc.StartOfDay(now), timecalc.NextDay(now), nil
	}
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	from, to, err := syncRange(app.svc.Now(), outlookSyncDate, outlookSyncFrom, outlookSyncTo)
	if err != nil {
		return err
	}

	cfg := app.cfg.Outlook
	opts := msgraph.SyncOptions{
		DryRun:   outlookSyncDryRun,
		Project:  cfg.DefaultProject,
		Timezone: cfg.Timezone,
	}
	if outlookSyncProject != "" {
		opts.Project = outlookSyncProject
	}
	if outlookSyncTZ != "" {
		opts.Timezone = outlookSyncTZ
	}

	dryTag := ""
	if opts.DryRun {
		dryTag = " [dry-run]"
	}
	fmt.Printf("Syncing Outlook events (%s → %s)%s...\n",
		from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02"), dryTag)
	fmt.Println()

	ctx := cmd.Context()
	auth := msgraph.Auth{
		TenantID:  cfg.TenantID,
		ClientID:  cfg.ClientID,
		TokenPath: msgraph.TokenPath(app.dataDir),
		Out:       os.Stdout,
		Logger:    app.logger,
	}
	hc, err := auth.HTTPClient(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	events, err := msgraph.NewClient(hc, "").GetCalendarView(ctx, from, to, opts.Timezone)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	syncer := &msgraph.Syncer{Repo: app.repo, Tracker: app.svc, Out: os.Stdout, Logger: app.logger}
	result, err := syncer.Sync(ctx, events, opts)
	if err != nil {
		fail(err)
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d imported\n", result.Imported)
	fmt.Printf("  %d skipped\n", result.Skipped)
	fmt.Printf("  %d updated\n", result.Updated)
	if result.Errors > 0 {
		fmt.Printf("  %d errors\n", result.Errors)
		os.Exit(2)
	}
	return nil
}
