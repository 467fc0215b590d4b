package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vendora-crm/research-service/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "research-service",
	Short: "CRM reseller-candidate research service",
	Long:  "Discovers and ranks prospective reseller companies for a CRM: website snapshots, external search seeds, generative candidate proposals and similarity ranking against existing customers.",
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
