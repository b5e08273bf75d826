package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/drawcal/domain/calendar"
)

// newWeeksCmd creates the weeks command.
func (a *App) newWeeksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weeks <year> [week]",
		Short: "Show week arithmetic",
		Long: `Show the number of weeks in a year, or the weeks a search window around
the given week covers.

Examples:
  drawcal weeks 2025
  drawcal weeks 2025 1`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			weeks := calendar.NewWeekCalendar(cfg.Calendar.Weeks)

			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: year %q", calendar.ErrInvalidArgument, args[0])
			}
			if len(args) == 1 {
				_, _ = fmt.Fprintf(a.stdout, "%d has %d weeks\n", year, weeks.WeeksIn(year))
				return nil
			}

			week, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: week %q", calendar.ErrInvalidArgument, args[1])
			}
			if week < 1 || week > weeks.WeeksIn(year) {
				return fmt.Errorf("%w: %d has no week %d", calendar.ErrInvalidArgument, year, week)
			}

			base := calendar.WeekKey{Year: year, Week: week}
			_, _ = fmt.Fprintf(a.stdout, "Window around %s:\n", base)
			for _, k := range weeks.Neighborhood(base) {
				_, _ = fmt.Fprintf(a.stdout, "  %s\n", k)
			}
			return nil
		},
	}

	return cmd
}
