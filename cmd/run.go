package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyergroup-cli/internal/model"
)

var (
	runDomain    string
	runName      string
	runDeal      float64
	runRevenue   float64
	runEmployees int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Assemble a buyer group for a single company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initAssembler(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		company := model.Company{
			Domain:        runDomain,
			Name:          runName,
			Revenue:       runRevenue,
			EmployeeCount: runEmployees,
		}

		group, err := env.Assembler.Run(ctx, company, runDeal)
		if err != nil {
			return eris.Wrap(err, "assembly run")
		}

		zap.L().Info("assembly complete",
			zap.String("domain", company.Domain),
			zap.String("tier", group.Tier),
			zap.Int("members", group.Size()),
			zap.String("action", group.Action),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(group)
	},
}

func init() {
	runCmd.Flags().StringVar(&runDomain, "domain", "", "company domain (required)")
	runCmd.Flags().StringVar(&runName, "name", "", "company name")
	runCmd.Flags().Float64Var(&runDeal, "deal", 0, "deal size in USD")
	runCmd.Flags().Float64Var(&runRevenue, "revenue", 0, "known annual revenue, overrides directory figures")
	runCmd.Flags().IntVar(&runEmployees, "employees", 0, "known employee count, overrides directory figures")
	_ = runCmd.MarkFlagRequired("domain")
	rootCmd.AddCommand(runCmd)
}
