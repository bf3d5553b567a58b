package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/quorum/internal/dateutil"
	"github.com/javiermolinar/quorum/internal/poll"
	"github.com/javiermolinar/quorum/internal/slot"
)

// eventForm holds the raw answers of the event wizard.
type eventForm struct {
	Title       string
	Description string
	Dates       string
	Start       string
	End         string
	SlotMinutes string
	Timezone    string
}

func (a *App) newCmd() *cobra.Command {
	var (
		form        eventForm
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "new [title]",
		Short: "Create a new event",
		Long: `Create an event with candidate dates and a daily time window.

Dates accept YYYY-MM-DD, relative names and inclusive ranges, separated by
commas. Without a title on a terminal, a form asks for every field.`,
		Example: `  quorum new "Team sync" --dates=2025-03-10..2025-03-14 --start=09:00 --end=12:00
  quorum new "1:1" --dates="tomorrow, next-friday" --slot=60 --timezone=Europe/Madrid
  quorum new -i`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				form.Title = args[0]
			}
			if interactive || (form.Title == "" && isInteractive()) {
				if err := newEventForm(&form, time.Now()).Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						return nil
					}
					return fmt.Errorf("reading event form: %w", err)
				}
			}

			in, err := form.input(time.Now())
			if err != nil {
				return err
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			e, err := svc.CreateEvent(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("creating event: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created event %s: %s\n", formatID(e.ID), e.Title)
			fmt.Fprintf(out, "  %s, %s–%s, %d min slots (%s)\n",
				strings.Join(e.DateStrings(), ", "),
				e.TimeConfig.StartTime, e.TimeConfig.EndTime,
				e.TimeConfig.SlotDurationMinutes, e.Timezone)
			fmt.Fprintf(out, "%s\n", formatMuted("Share it: quorum respond "+e.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Description, "description", "", "Event description")
	cmd.Flags().StringVar(&form.Dates, "dates", "", "Candidate dates, e.g. 2025-03-10,2025-03-12 or today..friday")
	cmd.Flags().StringVar(&form.Start, "start", a.config.Event.DayStart, "Daily start time (HH:MM)")
	cmd.Flags().StringVar(&form.End, "end", a.config.Event.DayEnd, "Daily end time (HH:MM)")
	cmd.Flags().StringVar(&form.SlotMinutes, "slot", strconv.Itoa(a.config.Event.SlotMinutes), "Slot length in minutes (15-120)")
	cmd.Flags().StringVar(&form.Timezone, "timezone", a.config.Event.Timezone, "IANA timezone of the time window")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Fill the event in with a form")

	return cmd
}

// input validates the raw answers into an event input.
func (f eventForm) input(now time.Time) (poll.EventInput, error) {
	dates, err := dateutil.ParseDateList(f.Dates, now)
	if err != nil {
		return poll.EventInput{}, fmt.Errorf("parsing dates: %w", err)
	}
	if len(dates) == 0 {
		return poll.EventInput{}, poll.ErrNoDates
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(f.SlotMinutes))
	if err != nil {
		return poll.EventInput{}, fmt.Errorf("slot length must be a number of minutes, got %q", f.SlotMinutes)
	}
	return poll.EventInput{
		Title:               f.Title,
		Description:         f.Description,
		Timezone:            f.Timezone,
		Dates:               dateutil.FormatDates(dates),
		StartTime:           strings.TrimSpace(f.Start),
		EndTime:             strings.TrimSpace(f.End),
		SlotDurationMinutes: minutes,
	}, nil
}

// newEventForm builds the event wizard. Every field validates as it is left.
func newEventForm(f *eventForm, now time.Time) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				CharLimit(poll.MaxTitleLen).
				Value(&f.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return poll.ErrEmptyTitle
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				CharLimit(poll.MaxDescriptionLen).
				Value(&f.Description),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Dates").
				Description("Comma-separated; ranges like 2025-03-10..2025-03-14 and names like tomorrow work").
				Value(&f.Dates).
				Validate(func(s string) error {
					dates, err := dateutil.ParseDateList(s, now)
					if err != nil {
						return err
					}
					if len(dates) == 0 {
						return poll.ErrNoDates
					}
					if len(dates) > poll.MaxDates {
						return poll.ErrTooManyDates
					}
					return nil
				}),
			huh.NewInput().
				Title("Start time").
				Value(&f.Start).
				Validate(validateClock),
			huh.NewInput().
				Title("End time").
				Value(&f.End).
				Validate(validateClock),
			huh.NewSelect[string]().
				Title("Slot length").
				Options(
					huh.NewOption("15 minutes", "15"),
					huh.NewOption("30 minutes", "30"),
					huh.NewOption("45 minutes", "45"),
					huh.NewOption("1 hour", "60"),
					huh.NewOption("2 hours", "120"),
				).
				Value(&f.SlotMinutes),
			huh.NewInput().
				Title("Timezone").
				Value(&f.Timezone).
				Validate(func(s string) error {
					if _, err := time.LoadLocation(strings.TrimSpace(s)); err != nil {
						return poll.ErrInvalidTimezone
					}
					return nil
				}),
		),
	)
}

func validateClock(s string) error {
	if !slot.ValidClock(strings.TrimSpace(s)) {
		return poll.ErrInvalidTimeFormat
	}
	return nil
}
