package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/drawcal/application"
	"github.com/felixgeelhaar/drawcal/domain/relation"
)

type searchOptions struct {
	day        string
	am, pm     bool
	number     string
	number2    string
	from, to   int
	jsonOutput bool

	// sessionsSet reports whether --am or --pm was given at all.
	sessionsSet bool
}

// newSearchCmd creates the search command.
func (a *App) newSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <relation>",
		Short: "Search the calendar for a relation",
		Long: `Search the calendar for records satisfying a relation and print the
four-week window around each match.

Run "drawcal relations" to list the relation names and their parameters.
Without --am or --pm both sessions are searched; --am=false --pm=false
selects no session and is rejected by session-scoped relations.

Examples:
  # Tuesdays whose AM code is 45
  drawcal search number --day Tuesday --number 45 --am

  # AM break 4 with PM break 5 during 2020-2022, as JSON
  drawcal search breakpair --number 4 --number2 5 --from 2020 --to 2022 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.sessionsSet = cmd.Flags().Changed("am") || cmd.Flags().Changed("pm")
			return a.search(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.day, "day", "", "Restrict to one weekday (Monday..Friday)")
	cmd.Flags().BoolVar(&opts.am, "am", false, "Search the AM session")
	cmd.Flags().BoolVar(&opts.pm, "pm", false, "Search the PM session")
	cmd.Flags().StringVar(&opts.number, "number", "", "First relation parameter")
	cmd.Flags().StringVar(&opts.number2, "number2", "", "Second relation parameter")
	cmd.Flags().IntVar(&opts.from, "from", 0, "First year to search")
	cmd.Flags().IntVar(&opts.to, "to", 0, "Last year to search")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")

	return cmd
}

func (a *App) search(ctx context.Context, name string, opts *searchOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	rt, err := buildRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	q := application.Query{
		Relation: name,
		Day:      opts.day,
		Sessions: relation.Sessions{AM: opts.am, PM: opts.pm},
		Number:   opts.number,
		Number2:  opts.number2,
	}
	q.Years.From, q.Years.To = opts.from, opts.to
	if !opts.sessionsSet {
		q.Sessions = relation.BothSessions()
	}

	set, err := rt.engine.Search(ctx, q)
	if err != nil {
		return fmt.Errorf("search %s: %w", name, err)
	}

	if opts.jsonOutput {
		return printJSON(a.stdout, set)
	}
	return printWindows(a.stdout, set)
}
