package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/buyergroup-cli/internal/export"
	"github.com/sells-group/buyergroup-cli/internal/model"
	"github.com/sells-group/buyergroup-cli/pkg/notion"
	sfpkg "github.com/sells-group/buyergroup-cli/pkg/salesforce"
)

var (
	exportRunID  string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an assembled buyer group",
	Long:  "Exports the group for a run to csv, xlsx, notion, or salesforce.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("export"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		group, err := st.GetGroupByRun(ctx, exportRunID)
		if err != nil {
			return eris.Wrap(err, "load group")
		}

		switch exportFormat {
		case "csv":
			if err := export.ExportCSV([]*model.BuyerGroup{group}, exportOut); err != nil {
				return err
			}
			fmt.Println(exportOut)

		case "xlsx":
			if err := export.ExportXLSX([]*model.BuyerGroup{group}, exportOut); err != nil {
				return err
			}
			fmt.Println(exportOut)

		case "notion":
			if cfg.Notion.Token == "" || cfg.Notion.GroupDB == "" {
				return eris.New("notion token and group database are required (BUYERGROUP_NOTION_TOKEN, BUYERGROUP_NOTION_GROUP_DB)")
			}
			notionClient := notion.NewClient(cfg.Notion.Token)
			pageID, err := notion.ExportGroup(ctx, notionClient, cfg.Notion.GroupDB, group)
			if err != nil {
				return err
			}
			zap.L().Info("exported to notion", zap.String("page_id", pageID))

		case "salesforce":
			if cfg.Salesforce.ClientID == "" {
				return eris.New("salesforce client ID is required (BUYERGROUP_SALESFORCE_CLIENT_ID)")
			}
			sf, err := sfpkg.Connect(cfg.Salesforce.LoginURL, cfg.Salesforce.Username, cfg.Salesforce.ClientID, cfg.Salesforce.KeyPath)
			if err != nil {
				return err
			}
			result, err := sfpkg.SyncGroup(ctx, sfpkg.NewClient(sf), group)
			if err != nil {
				return err
			}
			zap.L().Info("exported to salesforce",
				zap.Int("inserted", result.Inserted),
				zap.Int("updated", result.Updated),
				zap.Int("skipped", result.Skipped),
			)

		default:
			return eris.Errorf("unsupported format: %s (want csv, xlsx, notion, or salesforce)", exportFormat)
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "run ID whose group to export (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv, xlsx, notion, salesforce")
	exportCmd.Flags().StringVar(&exportOut, "out", "buyergroup.csv", "output path for csv/xlsx formats")
	_ = exportCmd.MarkFlagRequired("run")
	rootCmd.AddCommand(exportCmd)
}
