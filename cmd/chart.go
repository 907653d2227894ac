package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/trackmytime/internal/aggregate"
	"github.com/Tiliavir/trackmytime/internal/model"
	"github.com/Tiliavir/trackmytime/internal/timecalc"
)

var chartWindow string

const barWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0A84FF"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

var chartCmd = &cobra.Command{
	Use:   "chart <project>",
	Short: "Chart tracked time per day for a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runChart,
}

func init() {
	chartCmd.Flags().StringVar(&chartWindow, "window", "", "week, month, 3months or all (default from config)")
}

// selectedWindow returns the --window flag or the configured default.
func selectedWindow(flag string) (aggregate.Window, error) {
	if flag == "" {
		flag = app.cfg.Chart.DefaultWindow
	}
	return aggregate.ParseWindow(flag)
}

// tagLabel renders a tag name in its colour.
func tagLabel(t model.Tag) string {
	style := lipgloss.NewStyle()
	if t.ColorHex != "" {
		style = style.Foreground(lipgloss.Color(t.ColorHex))
	}
	return style.Render("#" + t.Name)
}

func runChart(cmd *cobra.Command, args []string) error {
	return renderChartView(cmd, args[0])
}

// renderChart prints one bar per day, scaled to the busiest day.
func renderChart(out io.Writer, title string, w aggregate.Window, series []aggregate.DayTotal) {
	total := aggregate.Total(series)
	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%s – %s – %s", title, w, timecalc.FormatSeconds(total))))

	var peak float64
	for _, d := range series {
		if d.Seconds > peak {
			peak = d.Seconds
		}
	}

	for _, d := range series {
		n := 0
		if peak > 0 {
			n = int(d.Seconds / peak * barWidth)
			if n == 0 && d.Seconds > 0 {
				n = 1
			}
		}
		label := d.Day.Format("Mon 01-02")
		bar := barStyle.Render(strings.Repeat("█", n))
		var value string
		if d.Seconds > 0 {
			value = " " + timecalc.FormatSeconds(d.Seconds)
		} else {
			value = dimStyle.Render(" –")
		}
		fmt.Fprintf(out, "%s %s%s\n", label, bar, value)
	}
}
