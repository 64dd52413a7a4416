// Command seed provisions accounts out of band. The API has no sign-up
// route, so this is the only way users are created.
package main

import (
	"os"

	"github.com/dom/personal-services-api/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Provision data for the personal services API",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Options{Level: logLevel, Pretty: true, Writer: cmd.ErrOrStderr()})
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")

	cmd.AddCommand(newUserCmd())
	return cmd
}
