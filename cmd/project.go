package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var (
	projectDetails  string
	projectName     string
	projectReassign string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := app.svc.CreateProject(cmd.Context(), args[0], projectDetails)
		if err != nil {
			return err
		}
		fmt.Printf("Created project %q\n", p.Name)
		return nil
	},
}

var projectEditCmd = &cobra.Command{
	Use:   "edit <project>",
	Short: "Rename a project or change its details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := snapshot(cmd)
		p, ok := snap.Project(args[0])
		if !ok {
			return fmt.Errorf("%q: %w", args[0], tracker.ErrUnknownProject)
		}
		name, details := p.Name, p.Details
		if cmd.Flags().Changed("name") {
			name = projectName
		}
		if cmd.Flags().Changed("details") {
			details = projectDetails
		}
		p, err := app.svc.EditProject(cmd.Context(), p.ID, name, details)
		if err != nil {
			return err
		}
		fmt.Printf("Updated project %q\n", p.Name)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project>",
	Short: "Delete a project and its entries, or move the entries elsewhere",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := snapshot(cmd)
		p, ok := snap.Project(args[0])
		if !ok {
			return fmt.Errorf("%q: %w", args[0], tracker.ErrUnknownProject)
		}
		var opts tracker.DeleteOptions
		if projectReassign != "" {
			target, ok := snap.Project(projectReassign)
			if !ok {
				return fmt.Errorf("%q: %w", projectReassign, tracker.ErrUnknownProject)
			}
			opts.ReassignTo = target.ID
		}
		n, err := app.svc.DeleteProject(cmd.Context(), p.ID, opts)
		if err != nil {
			return err
		}
		if opts.ReassignTo != "" {
			fmt.Printf("Deleted project %q, moved %d entries to %q\n", p.Name, n, snap.ProjectName(opts.ReassignTo))
		} else {
			fmt.Printf("Deleted project %q and %d entries\n", p.Name, n)
		}
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := snapshot(cmd)
		if len(snap.Projects) == 0 {
			fmt.Println("No projects yet. Create one with: tmt project add <name>")
			return nil
		}
		for _, p := range snap.Projects {
			if p.Details != "" {
				fmt.Printf("%s  %s – %s\n", shortID(p.ID), p.Name, p.Details)
			} else {
				fmt.Printf("%s  %s\n", shortID(p.ID), p.Name)
			}
		}
		return nil
	},
}

func init() {
	projectAddCmd.Flags().StringVar(&projectDetails, "details", "", "Project description")
	projectEditCmd.Flags().StringVar(&projectName, "name", "", "New name")
	projectEditCmd.Flags().StringVar(&projectDetails, "details", "", "New description")
	projectDeleteCmd.Flags().StringVar(&projectReassign, "reassign", "", "Move entries to this project instead of deleting them")

	projectCmd.AddCommand(projectAddCmd, projectEditCmd, projectDeleteCmd, projectListCmd)
}
