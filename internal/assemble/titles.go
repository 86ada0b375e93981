package assemble

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/buyergroup-cli/internal/model"
)

var titleCaser = cases.Title(language.AmericanEnglish)

// NormalizeName cleans a person or company name for display: collapsed
// whitespace and title casing. ALL-CAPS vendor exports come through here.
func NormalizeName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	joined := strings.Join(fields, " ")
	return titleCaser.String(strings.ToLower(joined))
}

// seniorityMarkers maps lowercase title substrings to seniority, checked in
// order: the most senior match wins.
var seniorityMarkers = []struct {
	marker string
	level  model.Seniority
}{
	{"chief", model.SeniorityCLevel},
	{"ceo", model.SeniorityCLevel},
	{"cfo", model.SeniorityCLevel},
	{"cto", model.SeniorityCLevel},
	{"cio", model.SeniorityCLevel},
	{"ciso", model.SeniorityCLevel},
	{"coo", model.SeniorityCLevel},
	{"founder", model.SeniorityCLevel},
	{"owner", model.SeniorityCLevel},
	{"president", model.SeniorityCLevel},
	{"partner", model.SeniorityCLevel},
	{"vice president", model.SeniorityVP},
	{"svp", model.SeniorityVP},
	{"evp", model.SeniorityVP},
	{"avp", model.SeniorityVP},
	{"vp", model.SeniorityVP},
	{"head of", model.SeniorityDirector},
	{"director", model.SeniorityDirector},
	{"principal", model.SeniorityDirector},
	{"manager", model.SeniorityManager},
	{"lead", model.SeniorityManager},
	{"supervisor", model.SeniorityManager},
}

// DetectSeniority derives a coarse seniority level from a job title.
// Unknown titles classify as individual contributor.
func DetectSeniority(title string) model.Seniority {
	t := strings.ToLower(title)
	for _, m := range seniorityMarkers {
		if strings.Contains(t, m.marker) {
			return m.level
		}
	}
	return model.SeniorityIC
}

// departmentMarkers maps lowercase title substrings to departments.
var departmentMarkers = []struct {
	marker string
	dept   string
}{
	{"procurement", "procurement"},
	{"purchasing", "procurement"},
	{"sourcing", "procurement"},
	{"legal", "legal"},
	{"counsel", "legal"},
	{"compliance", "legal"},
	{"financ", "finance"},
	{"account", "finance"},
	{"controller", "finance"},
	{"treasur", "finance"},
	{"cfo", "finance"},
	{"security", "security"},
	{"ciso", "security"},
	{"engineer", "engineering"},
	{"developer", "engineering"},
	{"technology", "engineering"},
	{"cto", "engineering"},
	{"product", "product"},
	{"data", "engineering"},
	{"it ", "it"},
	{"information technology", "it"},
	{"cio", "it"},
	{"sales", "sales"},
	{"revenue", "sales"},
	{"marketing", "marketing"},
	{"growth", "marketing"},
	{"operations", "operations"},
	{"coo", "operations"},
	{"people", "hr"},
	{"human resources", "hr"},
	{"talent", "hr"},
}

// DetectDepartment derives a department from a job title; "general" when
// nothing matches.
func DetectDepartment(title string) string {
	t := strings.ToLower(title) + " "
	for _, m := range departmentMarkers {
		if strings.Contains(t, m.marker) {
			return m.dept
		}
	}
	return "general"
}

// seniorityRank orders seniority levels for at-or-above comparisons.
var seniorityRank = map[model.Seniority]int{
	model.SeniorityCLevel:   4,
	model.SeniorityVP:       3,
	model.SeniorityDirector: 2,
	model.SeniorityManager:  1,
	model.SeniorityIC:       0,
}

// rankOf returns the ordinal rank of a seniority level.
func rankOf(s model.Seniority) int {
	return seniorityRank[s]
}
