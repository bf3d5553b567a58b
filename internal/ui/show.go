package ui

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/quorum/internal/heatmap"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/service"
	"github.com/javiermolinar/quorum/internal/tui/view"
)

const (
	showColW = 11
	showGap  = 1
)

func (a *App) showCmd() *cobra.Command {
	var (
		exclude []string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "show <event-id>",
		Short: "Print an event's availability heatmap",
		Long: `Print the aggregated availability of an event as a text heatmap.

Each cell holds the number of respondents free for that slot. Use --exclude
to see the overlap without some respondents. This is a read-only view; use
'quorum heatmap' to pick the meeting slots interactively.`,
		Example: `  quorum show V1StGXR8_Z5j
  quorum show V1StGXR8_Z5j --exclude=Bruno --exclude=Carla`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				DisableColor()
			}

			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			e, err := svc.GetEvent(ctx, args[0])
			if err != nil {
				return err
			}
			hm, err := svc.Heatmap(ctx, e.ID, exclude)
			if err != nil {
				return fmt.Errorf("building heatmap: %w", err)
			}
			meeting, err := svc.ScheduledMeeting(ctx, e.ID)
			if err != nil && !errors.Is(err, poll.ErrNotScheduled) {
				return err
			}

			printHeatmap(cmd.OutOrStdout(), e, hm, meeting, svc.Scale(), termWidth(), time.Now())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Respondent names to leave out of the counts")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

// printHeatmap writes the event summary and its grid. Columns that do not
// fit in width are printed as further blocks below.
func printHeatmap(w io.Writer, e *poll.Event, hm *service.HeatmapView, m *poll.ScheduledMeeting, scale heatmap.Scale, width int, now time.Time) {
	fmt.Fprintf(w, "%s  %s\n", formatHeader(e.Title), formatMuted(e.ID))
	if e.Description != "" {
		fmt.Fprintln(w, e.Description)
	}
	tc := e.TimeConfig
	fmt.Fprintln(w, formatMuted(fmt.Sprintf("%s, %s–%s, %s slots, %s",
		pluralize(len(e.Dates), "date"), tc.StartTime, tc.EndTime,
		view.FormatDuration(tc.SlotDurationMinutes), e.Timezone)))
	fmt.Fprintln(w)

	switch {
	case len(hm.Participants) == 0 && len(hm.Excluded) == 0:
		fmt.Fprintln(w, "No responses yet.")
	default:
		fmt.Fprintf(w, "%s: %s\n", pluralize(hm.Total, "respondent"), strings.Join(hm.Participants, ", "))
	}
	if len(hm.Excluded) > 0 {
		fmt.Fprintln(w, formatWarn("Excluded: "+strings.Join(hm.Excluded, ", ")))
	}
	fmt.Fprintln(w)

	labelW := 0
	for _, r := range hm.Rows {
		labelW = max(labelW, lipgloss.Width(r.Label))
	}
	perBlock := max((width-labelW)/(showColW+showGap), 1)
	headers := view.DateLabels(hm.Dates, now)

	for from := 0; from < len(hm.Dates); from += perBlock {
		to := min(from+perBlock, len(hm.Dates))
		if from > 0 {
			fmt.Fprintln(w)
		}

		var b strings.Builder
		b.WriteString(strings.Repeat(" ", labelW))
		for _, h := range headers[from:to] {
			b.WriteString(strings.Repeat(" ", showGap))
			b.WriteString(view.Center(h, showColW))
		}
		fmt.Fprintln(w, formatHeader(strings.TrimRight(b.String(), " ")))

		for _, r := range hm.Rows {
			b.Reset()
			b.WriteString(formatMuted(view.Fit(r.Label, labelW)))
			for _, c := range r.Cells[from:to] {
				b.WriteString(strings.Repeat(" ", showGap))
				b.WriteString(heatCell(c, hm.Total, scale))
			}
			fmt.Fprintln(w, b.String())
		}
	}

	fmt.Fprintln(w)
	if legend := heatLegend(hm, scale); legend != "" {
		fmt.Fprintln(w, legend)
	}
	if blocks := formatBlocks(hm.Best, e.Location()); len(blocks) > 0 {
		fmt.Fprintf(w, "Best (%d/%d): %s\n", bestCount(hm), hm.Total, formatSuccess(strings.Join(blocks, ", ")))
	}
	if m != nil {
		fmt.Fprintf(w, "Scheduled: %s  %s\n", formatHeader(m.Title), formatSuccess(strings.Join(formatBlocks(m.Slots, e.Location()), ", ")))
	}
}

// heatCell renders one cell: the count on the scale color when color is on,
// the bare count (or a dot for zero) otherwise.
func heatCell(c *service.HeatmapCell, total int, scale heatmap.Scale) string {
	if c == nil {
		return strings.Repeat(" ", showColW)
	}
	text := strconv.Itoa(c.Count)
	if color.NoColor {
		if c.Count == 0 {
			text = "·"
		}
		return view.Center(text, showColW)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(c.Color)).
		Foreground(lipgloss.Color(scale.Foreground(c.Count, total))).
		Render(view.Center(text, showColW))
}

func heatLegend(hm *service.HeatmapView, scale heatmap.Scale) string {
	if hm.Total == 0 || color.NoColor {
		return ""
	}
	parts := make([]string, 0, len(hm.Legend))
	for _, sw := range hm.Legend {
		parts = append(parts, lipgloss.NewStyle().
			Background(lipgloss.Color(sw.Color)).
			Foreground(lipgloss.Color(scale.Foreground(sw.Count, hm.Total))).
			Render(" "+strconv.Itoa(sw.Count)+" "))
	}
	return "Legend: " + strings.Join(parts, " ")
}

// bestCount returns the count shared by the best slots.
func bestCount(hm *service.HeatmapView) int {
	first := hm.Best[0].SlotStart
	for _, r := range hm.Rows {
		for _, c := range r.Cells {
			if c != nil && c.SlotStart.Equal(first) {
				return c.Count
			}
		}
	}
	return 0
}
