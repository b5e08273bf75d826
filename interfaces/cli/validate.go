package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/drawcal/domain/config"
)

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file without opening any store.

Examples:
  drawcal validate -c drawcal.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.configPath == "" {
				return errors.New("no configuration file given (use --config)")
			}

			cfg, err := a.loadConfig()
			if err != nil {
				var verrs config.ValidationErrors
				if errors.As(err, &verrs) {
					_, _ = fmt.Fprintf(a.stderr, "Configuration is invalid:\n")
					for _, e := range verrs {
						_, _ = fmt.Fprintf(a.stderr, "  - %s\n", e.Error())
					}
				}
				return err
			}

			_, _ = fmt.Fprintf(a.stdout, "Configuration is valid.\n")
			_, _ = fmt.Fprintf(a.stdout, "  Storage: %s\n", cfg.Storage.Driver)
			_, _ = fmt.Fprintf(a.stdout, "  Cache:   %s\n", cfg.Cache.Driver)
			_, _ = fmt.Fprintf(a.stdout, "  Listen:  %s\n", cfg.Server.Address)
			return nil
		},
	}
}
