package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/export"
	"github.com/Tiliavir/trackmytime/internal/filter"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time entries to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatCSV, "Output format: csv, json, yaml, md")
	exportCmd.Flags().StringVar(&listProject, "project", "", "Only entries of this project")
	exportCmd.Flags().StringVar(&listTag, "tag", "", "Only entries carrying this tag")
	exportCmd.Flags().BoolVar(&listOldest, "oldest", false, "Oldest entries first")
	exportCmd.Flags().BoolVar(&listNewest, "newest", false, "Newest entries first")
	exportCmd.MarkFlagsMutuallyExclusive("oldest", "newest")
}

func runExport(cmd *cobra.Command, args []string) error {
	snap := snapshot(cmd)
	c, err := listCriteria(snap)
	if err != nil {
		return err
	}
	return export.Write(os.Stdout, exportFormat, filter.Select(snap.Entries, c), snap)
}
