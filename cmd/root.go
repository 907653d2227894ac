package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/activity"
	"github.com/Tiliavir/trackmytime/internal/config"
	"github.com/Tiliavir/trackmytime/internal/storage"
	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var verbose bool

// app holds what every command needs once the root pre-run has completed.
var app struct {
	cfg     config.Config
	dataDir string
	repo    storage.Repository
	svc     *tracker.Service
	logger  *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:   "tmt",
	Short: "Track My Time – project time tracking from the terminal",
	Long: `tmt records time entries against projects and tags, lists and filters
them, and charts the tracked time per day. Data lives in ~/.tmt/ as
human-readable JSON files or a SQLite database.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.repo != nil {
			_ = app.repo.Close()
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(outlookCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(app.logger)

	cfg, home, err := config.Load()
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.dataDir = cfg.DataDir(home)
	app.logger.Debug("configuration loaded", "data_dir", app.dataDir, "backend", cfg.Storage.Backend)

	repo, err := storage.Open(cfg.Storage.Backend, app.dataDir)
	if err != nil {
		fail(err)
	}
	app.repo = repo

	var notifier activity.Notifier = activity.Nop{}
	if cfg.Activity.Indicator {
		notifier = activity.NewFileIndicator(app.dataDir, app.logger)
	}
	app.svc = tracker.New(repo,
		tracker.WithNotifier(notifier),
		tracker.WithLogger(app.logger),
	)
	return nil
}

// fail reports a storage failure and exits with status 2.
func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}

// snapshot reads all data or exits on storage failure.
func snapshot(cmd *cobra.Command) tracker.Snapshot {
	snap, err := app.svc.Snapshot(cmd.Context())
	if err != nil {
		fail(err)
	}
	return snap
}

// splitList splits a comma-separated flag value, dropping empty parts.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolveProject maps a project name or id to its id.
func resolveProject(snap tracker.Snapshot, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	p, ok := snap.Project(ref)
	if !ok {
		return "", fmt.Errorf("%q: %w", ref, tracker.ErrUnknownProject)
	}
	return p.ID, nil
}

// resolveTag maps a tag name or id to its id.
func resolveTag(snap tracker.Snapshot, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	t, ok := snap.Tag(ref)
	if !ok {
		return "", fmt.Errorf("%q: %w", ref, tracker.ErrUnknownTag)
	}
	return t.ID, nil
}

// resolveEntry finds an entry by id or unique id prefix.
func resolveEntry(snap tracker.Snapshot, ref string) (string, error) {
	e, ok := snap.Entry(ref)
	if !ok {
		return "", fmt.Errorf("no entry matches %q", ref)
	}
	return e.ID, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
