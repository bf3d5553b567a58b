package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/quorum/internal/export"
	"github.com/javiermolinar/quorum/internal/slot"
)

func (a *App) scheduleCmd() *cobra.Command {
	var (
		title       string
		description string
		slots       []string
		best        bool
	)

	cmd := &cobra.Command{
		Use:   "schedule <event-id>",
		Short: "Record the final meeting slots",
		Long: `Record the final meeting of an event. An event is scheduled once.

Give the slots with --slot, or use --best to take every slot with the highest
availability. The title defaults to the event title.`,
		Example: `  quorum schedule V1StGXR8_Z5j --slot="2025-03-10 09:00-10:00"
  quorum schedule V1StGXR8_Z5j --best --title="Kickoff"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if best == (len(slots) > 0) {
				return fmt.Errorf("give either --slot or --best")
			}

			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			e, result, err := svc.Aggregate(ctx, args[0])
			if err != nil {
				return err
			}

			var chosen []slot.Availability
			if best {
				for _, s := range result.Best(e.Slots()) {
					chosen = append(chosen, s.Availability())
				}
				if len(chosen) == 0 {
					return fmt.Errorf("no one has responded to %s yet", e.ID)
				}
			} else {
				keys, err := parseSlots(e, slots)
				if err != nil {
					return err
				}
				chosen = slot.KeysToAvailability(keys, e.Slots())
			}

			m, err := svc.Schedule(ctx, e.ID, title, description, chosen)
			if err != nil {
				return fmt.Errorf("scheduling: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s: %s\n",
				formatHeader(m.Title), formatSuccess(strings.Join(formatBlocks(m.Slots, e.Location()), ", ")))
			fmt.Fprintln(cmd.OutOrStdout(), formatMuted("Export it: quorum export "+e.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Meeting title (default: the event title)")
	cmd.Flags().StringVar(&description, "description", "", "Meeting description")
	cmd.Flags().StringArrayVar(&slots, "slot", nil, "Meeting slot: \"YYYY-MM-DD HH:MM\" or \"YYYY-MM-DD HH:MM-HH:MM\"")
	cmd.Flags().BoolVar(&best, "best", false, "Schedule every slot with the highest availability")
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <event-id>",
		Short: "Write the scheduled meeting as an iCalendar file",
		Long: `Write the scheduled meeting of an event as an .ics file.

Respondents free for the whole meeting are listed as attendees. The file is
named after the meeting title unless --output is given; use - for stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			e, m, attendees, err := svc.Export(ctx, args[0])
			if err != nil {
				return err
			}

			if output == "-" {
				return export.Encode(cmd.OutOrStdout(), e, m, attendees, time.Now())
			}
			if output == "" {
				output = export.Filename(m)
			}
			if err := writeICS(output, func(w io.Writer) error {
				return export.Encode(w, e, m, attendees, time.Now())
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", output, pluralize(len(attendees), "attendee"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout")
	return cmd
}

func writeICS(path string, encode func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	if err := encode(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
