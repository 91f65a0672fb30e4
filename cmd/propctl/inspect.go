package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"propiedades/internal/app"
	"propiedades/internal/domain"
	"propiedades/internal/extract"
)

func newGateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gate <title> [description]",
		Short: "Show the validity gate decision for a title and description",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := ""
			if len(args) == 2 {
				desc = args[1]
			}
			return printJSON(cmd, extract.EvaluateGate(args[0], desc))
		},
	}
}

func newPriceCmd(root *rootOptions) *cobra.Command {
	var op string
	cmd := &cobra.Command{
		Use:   "price <raw price text>",
		Short: "Normalize a raw price string",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			operation := domain.OperationType(strings.ToLower(op))
			switch operation {
			case domain.OperationSale, domain.OperationRent, domain.OperationUnknown:
			default:
				return fmt.Errorf("--op must be sale, rent or unknown")
			}
			p := extract.NormalizePrice(strings.Join(args, " "), operation, app.ExtractOptions(root.cfg))
			return printJSON(cmd, p)
		},
	}
	cmd.Flags().StringVar(&op, "op", "unknown", "operation used for range validation (sale, rent, unknown)")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
