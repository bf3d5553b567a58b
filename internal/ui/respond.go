package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/quorum/internal/tui"
)

func (a *App) respondCmd() *cobra.Command {
	var (
		name  string
		slots []string
	)

	cmd := &cobra.Command{
		Use:   "respond <event-id>",
		Short: "Mark the slots you are available for",
		Long: `Open the availability grid of an event.

Drag across the grid, or move with the arrow keys and press space, to mark the
slots you are free. Press s to submit. Submitting again under the same name
replaces your earlier answer.

With --slot the answer is submitted directly without opening the grid. The
slots given replace the whole earlier answer.`,
		Example: `  quorum respond V1StGXR8_Z5j --name=Ana
  quorum respond V1StGXR8_Z5j --name=Ana --slot="2025-03-10 09:00-11:00" --slot="2025-03-11 14:30"`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			if len(slots) == 0 {
				return tui.Run(svc, args[0], a.tuiOptions(tui.WithName(name))...)
			}

			if name == "" {
				return fmt.Errorf("--name is required with --slot")
			}
			e, err := svc.GetEvent(ctx, args[0])
			if err != nil {
				return err
			}
			selected, err := parseSlots(e, slots)
			if err != nil {
				return err
			}
			p, err := svc.Respond(ctx, e.ID, name, selected)
			if err != nil {
				return fmt.Errorf("submitting availability: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s for %s\n", pluralize(selected.Len(), "slot"), p.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Your name; loads your earlier answer")
	cmd.Flags().StringArrayVar(&slots, "slot", nil, "Submit without the grid: \"YYYY-MM-DD HH:MM\" or \"YYYY-MM-DD HH:MM-HH:MM\"")
	return cmd
}

func (a *App) heatmapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "heatmap <event-id>",
		Short: "Explore availability and pick the meeting slots",
		Long: `Open the organizer heatmap of an event.

Hover or move over a cell to see who is free. Press 1-9 to hide a respondent
from the counts and x to show everyone again. Drag a rectangle, or press v and
move, to choose the meeting slots, then press p to schedule them.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			return tui.Run(svc, args[0], a.tuiOptions(tui.WithScreen(tui.ScreenHeatmap))...)
		},
	}
}

func (a *App) tuiOptions(opts ...tui.Option) []tui.Option {
	return append([]tui.Option{
		tui.WithTheme(a.config.UI.Theme),
		tui.WithTapToToggle(a.config.UI.TapToToggle),
	}, opts...)
}
