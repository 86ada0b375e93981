package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyergroup-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "buyergroup",
	Short: "Buyer group sizing and assembly pipeline",
	Long:  "Classifies companies into size tiers, computes optimal buyer-group size and role distribution, assembles groups from directory candidates, and exports to Notion, Salesforce, CSV, or XLSX.",
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
