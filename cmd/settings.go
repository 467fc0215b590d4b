package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/vendora-crm/research-service/internal/model"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or update the persisted research settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current research settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		settings, err := st.GetSettings(cmd.Context())
		if err != nil {
			return err
		}
		if settings == nil {
			settings = &model.ResearchSettings{
				VendorSites:       cfg.Research.VendorSites,
				BrandSites:        cfg.Research.BrandSites,
				ExtraInstructions: cfg.Research.ExtraInstructions,
				DefaultScope:      cfg.Research.DefaultScope,
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(settings)
	},
}

var settingsSetFlags struct {
	VendorSites       []string
	BrandSites        []string
	ExtraInstructions string
	DefaultScope      string
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the persisted research settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		saved, err := st.SaveSettings(cmd.Context(), model.ResearchSettings{
			VendorSites:       settingsSetFlags.VendorSites,
			BrandSites:        settingsSetFlags.BrandSites,
			ExtraInstructions: settingsSetFlags.ExtraInstructions,
			DefaultScope:      settingsSetFlags.DefaultScope,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(saved)
	},
}

func init() {
	f := settingsSetCmd.Flags()
	f.StringSliceVar(&settingsSetFlags.VendorSites, "vendor-site", nil, "vendor assortment site (repeatable)")
	f.StringSliceVar(&settingsSetFlags.BrandSites, "brand-site", nil, "brand site (repeatable)")
	f.StringVar(&settingsSetFlags.ExtraInstructions, "extra-instructions", "", "default extra prompt instructions")
	f.StringVar(&settingsSetFlags.DefaultScope, "default-scope", "region", "default scope: country or region")

	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
