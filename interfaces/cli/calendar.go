package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

type calendarOptions struct {
	year       int
	latest     int
	jsonOutput bool
}

// newCalendarCmd creates the calendar command.
func (a *App) newCalendarCmd() *cobra.Command {
	opts := &calendarOptions{}

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print calendar records",
		Long: `Print calendar records in ID order: the whole table, one year, or the
most recent records.

Examples:
  drawcal calendar --latest 6
  drawcal calendar --year 2024 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printCalendar(cmd.Context(), opts)
		},
	}

	cmd.Flags().IntVar(&opts.year, "year", 0, "Only records of this year")
	cmd.Flags().IntVar(&opts.latest, "latest", 0, "Only the N most recent records")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	cmd.MarkFlagsMutuallyExclusive("year", "latest")

	return cmd
}

func (a *App) printCalendar(ctx context.Context, opts *calendarOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	var records []calendar.Record
	switch {
	case opts.year != 0:
		records, err = rt.engine.Year(ctx, opts.year)
	case opts.latest != 0:
		records, err = rt.engine.Latest(ctx, opts.latest)
	default:
		records, err = rt.engine.All(ctx)
	}
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return printJSON(a.stdout, records)
	}
	return printRecords(a.stdout, records)
}
