package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/tracker"
)

var (
	tagColor string
	tagName  string
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := app.svc.CreateTag(cmd.Context(), args[0], tagColor)
		if err != nil {
			return err
		}
		fmt.Printf("Created tag %s\n", tagLabel(t))
		return nil
	},
}

var tagEditCmd = &cobra.Command{
	Use:   "edit <tag>",
	Short: "Rename a tag or change its colour",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := snapshot(cmd)
		t, ok := snap.Tag(args[0])
		if !ok {
			return fmt.Errorf("%q: %w", args[0], tracker.ErrUnknownTag)
		}
		name := t.Name
		if cmd.Flags().Changed("name") {
			name = tagName
		}
		t, err := app.svc.EditTag(cmd.Context(), t.ID, name, tagColor)
		if err != nil {
			return err
		}
		fmt.Printf("Updated tag %s\n", tagLabel(t))
		return nil
	},
}

var tagDeleteCmd = &cobra.Command{
	Use:   "delete <tag>",
	Short: "Delete a tag and remove it from all entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := snapshot(cmd)
		t, ok := snap.Tag(args[0])
		if !ok {
			return fmt.Errorf("%q: %w", args[0], tracker.ErrUnknownTag)
		}
		n, err := app.svc.DeleteTag(cmd.Context(), t.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted tag %q (removed from %d entries)\n", t.Name, n)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := snapshot(cmd)
		if len(snap.Tags) == 0 {
			fmt.Println("No tags yet. Create one with: tmt tag add <name> --color '#FF3B30'")
			return nil
		}
		for _, t := range snap.Tags {
			fmt.Printf("%s  %s %s\n", shortID(t.ID), tagLabel(t), t.ColorHex)
		}
		return nil
	},
}

func init() {
	tagAddCmd.Flags().StringVar(&tagColor, "color", "", "Colour as #RRGGBB")
	tagEditCmd.Flags().StringVar(&tagName, "name", "", "New name")
	tagEditCmd.Flags().StringVar(&tagColor, "color", "", "New colour as #RRGGBB")

	tagCmd.AddCommand(tagAddCmd, tagEditCmd, tagDeleteCmd, tagListCmd)
}
