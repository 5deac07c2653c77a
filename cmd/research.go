package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/eol-research/internal/model"
)

var researchManufacturer string

var researchCmd = &cobra.Command{
	Use:   "research <product-id>",
	Short: "Research lifecycle milestones for one product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := initEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		result, err := eng.Orchestrator.Research(ctx, model.ProductQuery{
			ProductID:    args[0],
			Manufacturer: researchManufacturer,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchManufacturer, "manufacturer", "", "manufacturer hint")
	rootCmd.AddCommand(researchCmd)
}
