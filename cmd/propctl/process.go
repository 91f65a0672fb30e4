package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"propiedades/internal/adapters/feed"
	"propiedades/internal/app"
	"propiedades/internal/domain"
)

func newProcessCmd(root *rootOptions) *cobra.Command {
	var (
		only   string
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "process <dump.json>",
		Short: "Run every listing of a crawler dump through the pipeline",
		Long: `Reads a crawler dump (an id-keyed object, a list, or a paged envelope),
runs each listing through the pipeline in id order and prints one JSON
outcome per line. A summary is written to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !map[string]bool{"all": true, "accepted": true, "rejected": true, "gate": true}[only] {
				return fmt.Errorf("--only must be one of all, accepted, rejected, gate")
			}
			pipeline, err := app.NewPipeline(root.cfg)
			if err != nil {
				return err
			}
			listings, err := feed.NewFileSource(args[0]).Listings(cmd.Context())
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(listings))
			for id := range listings {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			var accepted, rejected, gated int
			for _, id := range ids {
				out := pipeline.Process(app.ToRawListing(id, listings[id]))
				kind := outcomeKind(out)
				switch kind {
				case "accepted":
					accepted++
				case "rejected":
					rejected++
				default:
					gated++
				}
				if only != "all" && only != kind {
					continue
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d listings: %d accepted, %d rejected, %d not listings\n",
				len(ids), accepted, rejected, gated)
			return nil
		},
	}
	cmd.Flags().StringVar(&only, "only", "all", "which outcomes to print (all, accepted, rejected, gate)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func outcomeKind(out domain.Outcome) string {
	switch {
	case out.Rejection != nil:
		return "gate"
	case out.Record.Valid():
		return "accepted"
	default:
		return "rejected"
	}
}
