package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/aggregate"
	"github.com/Tiliavir/trackmytime/internal/filter"
	"github.com/Tiliavir/trackmytime/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [list | chart <project>]",
	Short: "Redraw the list or a chart whenever the data changes",
	Long: `watch renders the entry list (default) or a project chart and renders it
again every time the data directory changes, e.g. when another terminal
starts or stops a timer. Press Ctrl-C to quit.`,
	Args: func(cmd *cobra.Command, args []string) error {
		switch {
		case len(args) == 0, len(args) == 1 && args[0] == "list":
			return nil
		case len(args) == 2 && args[0] == "chart":
			return nil
		}
		return fmt.Errorf("usage: tmt watch [list | chart <project>]")
	},
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&chartWindow, "window", "", "Chart window: week, month, 3months or all")
	watchCmd.Flags().StringVar(&listProject, "project", "", "List: only entries of this project")
	watchCmd.Flags().StringVar(&listTag, "tag", "", "List: only entries carrying this tag")
	watchCmd.Flags().BoolVar(&listOldest, "oldest", false, "List: oldest entries first")
	watchCmd.Flags().BoolVar(&listNewest, "newest", false, "List: newest entries first")
	watchCmd.MarkFlagsMutuallyExclusive("oldest", "newest")
}

func runWatch(cmd *cobra.Command, args []string) error {
	render := renderListView
	if len(args) == 2 {
		project := args[1]
		render = func(cmd *cobra.Command) error { return renderChartView(cmd, project) }
	}

	if err := os.MkdirAll(app.dataDir, 0o700); err != nil {
		fail(err)
	}
	w, err := watch.New(app.dataDir, watch.DefaultDelay, app.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redraw := func() {
		fmt.Print("\033[H\033[2J")
		fmt.Printf("tmt watch – %s (Ctrl-C to quit)\n\n", app.svc.Now().Format("2006-01-02 15:04:05"))
		if err := render(cmd); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	redraw()
	return w.Run(ctx, redraw)
}

func renderListView(cmd *cobra.Command) error {
	snap := snapshot(cmd)
	c, err := listCriteria(snap)
	if err != nil {
		return err
	}
	printList(os.Stdout, filter.Select(snap.Entries, c), snap, app.svc.Now())
	return nil
}

func renderChartView(cmd *cobra.Command, project string) error {
	win, err := selectedWindow(chartWindow)
	if err != nil {
		return err
	}
	snap := snapshot(cmd)
	p, ok := snap.Project(project)
	if !ok {
		return fmt.Errorf("unknown project %q", project)
	}
	entries := filter.Select(snap.Entries, filter.Criteria{ProjectID: p.ID})
	renderChart(os.Stdout, p.Name, win, aggregate.Aggregate(entries, win, app.svc.Now()))
	return nil
}
