package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/drawcal/domain/relation"
)

// newRelationsCmd creates the relations command.
func (a *App) newRelationsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "relations",
		Short: "List the searchable relations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := relation.Default().Definitions()
			infos := make([]relation.Info, 0, len(defs))
			for _, d := range defs {
				infos = append(infos, d.Info())
			}
			if jsonOutput {
				return printJSON(a.stdout, infos)
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tKIND\tPARAMS\tSESSIONS\tDESCRIPTION")
			for _, info := range infos {
				params := make([]string, 0, len(info.Params))
				for _, p := range info.Params {
					params = append(params, p.Name)
				}
				sessions := "-"
				if info.SessionScoped {
					sessions = "am/pm"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					info.Name, info.Kind, orDash(strings.Join(params, ",")), sessions, info.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
