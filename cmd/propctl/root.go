package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"propiedades/internal/adapters/observability"
	"propiedades/internal/shared"
)

// globals shared by every subcommand
type rootOptions struct {
	gazetteer string
	verbose   bool
	cfg       shared.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "propctl",
		Short: "Inspect and run the listing extraction pipeline offline",
		Long: `propctl runs the same extraction pipeline as the ingestor, but reads a
crawler dump from disk and prints the results instead of storing them.

Examples:
  propctl process repositorio.json --only accepted
  propctl gate "Casa en venta" "3 recámaras, 2 baños, 180 m2"
  propctl price "2.5 millones" --op sale`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// stdout carries results; logs go to stderr
			log.Logger = observability.NewLoggerTo(cmd.ErrOrStderr(), "dev")
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			if opts.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
			opts.cfg = shared.Load()
			if opts.gazetteer != "" {
				opts.cfg.GazetteerPath = opts.gazetteer
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.gazetteer, "gazetteer", "", "gazetteer YAML file (default: embedded copy or GAZETTEER_PATH)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newProcessCmd(opts), newGateCmd(), newPriceCmd(opts))
	return root
}
