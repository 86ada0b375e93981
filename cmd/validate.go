package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/buyergroup-cli/internal/buyergroup"
)

var (
	validateActual      int
	validateRevenue     float64
	validateEmployees   int
	validateDeal        float64
	validateFound       int
	validateHighQuality int
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an actual group size against the computed constraint",
	RunE: func(cmd *cobra.Command, args []string) error {
		if validateHighQuality > validateFound {
			validateHighQuality = validateFound
		}

		candidates := make([]stubCandidate, validateFound)
		for i := range candidates {
			if i < validateHighQuality {
				candidates[i] = stubCandidate{score: 85, relevance: 0.8}
			} else {
				candidates[i] = stubCandidate{score: 40, relevance: 0.2}
			}
		}

		intel := buyergroup.CompanyIntelligence{Revenue: validateRevenue, EmployeeCount: validateEmployees}
		constraint := buyergroup.DetermineOptimalSize(validateDeal, intel, candidates)

		out := struct {
			Constraint     buyergroup.SizeConstraint `json:"constraint"`
			Validation     buyergroup.Validation     `json:"validation"`
			Recommendation buyergroup.Recommendation `json:"recommendation"`
		}{
			Constraint:     constraint,
			Validation:     buyergroup.ValidateSize(validateActual, constraint),
			Recommendation: buyergroup.Recommend(validateActual, constraint),
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	validateCmd.Flags().IntVar(&validateActual, "size", 0, "actual group size to validate (required)")
	validateCmd.Flags().Float64Var(&validateRevenue, "revenue", 0, "annual revenue in USD")
	validateCmd.Flags().IntVar(&validateEmployees, "employees", 0, "employee count")
	validateCmd.Flags().Float64Var(&validateDeal, "deal", 0, "deal size in USD")
	validateCmd.Flags().IntVar(&validateFound, "found", 0, "number of candidates found")
	validateCmd.Flags().IntVar(&validateHighQuality, "high-quality", 0, "number of high-quality candidates found")
	_ = validateCmd.MarkFlagRequired("size")
	rootCmd.AddCommand(validateCmd)
}
