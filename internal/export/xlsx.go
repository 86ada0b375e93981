package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/buyergroup-cli/internal/model"
)

// summaryColumns defines the Summary sheet, one row per group.
var summaryColumns = []string{
	"Domain",
	"Company",
	"Tier",
	"Deal Size",
	"Members",
	"Valid",
	"Score",
	"Action",
	"Notes",
}

// ExportXLSX writes a workbook with a Summary sheet (one row per group) and
// a Members sheet (one row per member) to outputPath.
func ExportXLSX(groups []*model.BuyerGroup, outputPath string) error {
	f := xlsx.NewFile()

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}
	addStringRow(summary, summaryColumns)
	for _, g := range groups {
		addSummaryRow(summary, g)
	}

	members, err := f.AddSheet("Members")
	if err != nil {
		return eris.Wrap(err, "export: add members sheet")
	}
	addStringRow(members, memberColumns)
	for _, g := range groups {
		for _, m := range g.Members {
			addStringRow(members, buildMemberRow(g, m))
		}
	}

	if err := f.Save(outputPath); err != nil {
		return eris.Wrap(err, "export: save workbook")
	}
	return nil
}

func addSummaryRow(sheet *xlsx.Sheet, g *model.BuyerGroup) {
	row := sheet.AddRow()
	row.AddCell().SetString(g.Company.Domain)
	row.AddCell().SetString(g.Company.Name)
	row.AddCell().SetString(g.Tier)
	row.AddCell().SetFloat(g.DealSize)
	row.AddCell().SetInt(len(g.Members))
	row.AddCell().SetBool(g.Valid)
	row.AddCell().SetInt(g.Score)
	row.AddCell().SetString(g.Action)
	row.AddCell().SetString(g.ActionMessage)
}

func addStringRow(sheet *xlsx.Sheet, values []string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}
