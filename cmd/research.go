package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vendora-crm/research-service/internal/model"
)

var researchFlags struct {
	CustomerID   string
	CompanyName  string
	Country      string
	Region       string
	Industry     string
	Seller       string
	Websites     []string
	Scope        string
	MaxSimilar   int
	SegmentFocus string
	ExternalOnly bool
	ExternalMode string
	Output       string
}

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run one research request and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initService(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		req := model.ResearchRequest{
			CustomerID:   researchFlags.CustomerID,
			CompanyName:  researchFlags.CompanyName,
			Country:      researchFlags.Country,
			Region:       researchFlags.Region,
			Industry:     researchFlags.Industry,
			Seller:       researchFlags.Seller,
			Websites:     researchFlags.Websites,
			Scope:        researchFlags.Scope,
			MaxSimilar:   researchFlags.MaxSimilar,
			SegmentFocus: researchFlags.SegmentFocus,
			ExternalOnly: researchFlags.ExternalOnly,
			ExternalMode: researchFlags.ExternalMode,
		}

		resp, err := env.Service.Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		switch researchFlags.Output {
		case "yaml":
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			defer enc.Close() //nolint:errcheck
			return enc.Encode(resp)
		case "json", "":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		default:
			return eris.Errorf("unknown output format %q", researchFlags.Output)
		}
	},
}

func init() {
	f := researchCmd.Flags()
	f.StringVar(&researchFlags.CustomerID, "customer", "", "base customer id")
	f.StringVar(&researchFlags.CompanyName, "company", "", "company name (when no customer id)")
	f.StringVar(&researchFlags.Country, "country", "", "country override")
	f.StringVar(&researchFlags.Region, "region", "", "region override")
	f.StringVar(&researchFlags.Industry, "industry", "", "industry override")
	f.StringVar(&researchFlags.Seller, "seller", "", "seller override")
	f.StringSliceVar(&researchFlags.Websites, "website", nil, "website to snapshot (repeatable)")
	f.StringVar(&researchFlags.Scope, "scope", "", "candidate scope: country or region")
	f.IntVar(&researchFlags.MaxSimilar, "max-similar", 0, "max candidates to return (1-20, default 10)")
	f.StringVar(&researchFlags.SegmentFocus, "segment", "", "segment focus: B2B, B2C or MIXED")
	f.BoolVar(&researchFlags.ExternalOnly, "external-only", false, "skip the CRM ranking fallback")
	f.StringVar(&researchFlags.ExternalMode, "external-mode", "", "discovery query mode: similar or profile")
	f.StringVar(&researchFlags.Output, "output", "json", "output format: json or yaml")
	rootCmd.AddCommand(researchCmd)
}
