package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eol-research/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "eol-research",
	Short: "Product lifecycle milestone research engine",
	Long:  "Discovers authoritative end-of-life milestone dates (end-of-sale, end of software maintenance, end of vulnerability support, last day of support) for hardware and software products by searching vendor sites and extracting dates from page text.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
