// Package export writes assembled buyer groups to operator-facing formats:
// CSV for spreadsheet import and XLSX workbooks with a summary sheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/buyergroup-cli/internal/model"
)

// memberColumns defines the ordered CSV output columns, one row per member.
var memberColumns = []string{
	"Domain",
	"Company",
	"Tier",
	"Deal Size",
	"Role",
	"Rank",
	"Name",
	"Title",
	"Seniority",
	"Department",
	"Email",
	"Email Status",
	"Phone",
	"LinkedIn",
	"Score",
	"Relevance",
	"Reason",
}

// WriteCSV writes one row per member for each group to w, header first.
func WriteCSV(groups []*model.BuyerGroup, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(memberColumns); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, g := range groups {
		for _, m := range g.Members {
			if err := cw.Write(buildMemberRow(g, m)); err != nil {
				return eris.Wrap(err, "export: write row")
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "export: flush")
	}
	return nil
}

// ExportCSV writes the groups to a CSV file at outputPath.
func ExportCSV(groups []*model.BuyerGroup, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close()

	return WriteCSV(groups, f)
}

// buildMemberRow maps one group member to a CSV row.
func buildMemberRow(g *model.BuyerGroup, m model.Member) []string {
	c := m.Candidate
	return []string{
		g.Company.Domain,                // Domain
		g.Company.Name,                  // Company
		g.Tier,                          // Tier
		formatDollars(g.DealSize),       // Deal Size
		string(m.Role),                  // Role
		strconv.Itoa(m.Rank),            // Rank
		c.FullName,                      // Name
		c.Title,                         // Title
		string(c.Seniority),             // Seniority
		c.Department,                    // Department
		c.Email,                         // Email
		string(c.EmailStatus),           // Email Status
		c.Phone,                         // Phone
		c.LinkedInURL,                   // LinkedIn
		formatFloat(c.OverallScore, 1),  // Score
		formatFloat(c.Relevance, 2),     // Relevance
		m.Reason,                        // Reason
	}
}

func formatFloat(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// formatDollars formats a number as "$1,234,567".
func formatDollars(n float64) string {
	intVal := int64(n)
	if intVal == 0 {
		return "$0"
	}

	negative := intVal < 0
	if negative {
		intVal = -intVal
	}

	s := fmt.Sprintf("%d", intVal)
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	prefix := "$"
	if negative {
		prefix = "-$"
	}
	return prefix + string(result)
}
