// Package buyergroup implements the buyer-group sizing and role-distribution
// model: company size tiering, per-tier role targets, the deal-size- and
// data-availability-aware sizing engine, and the size validator. All
// functions are pure and safe for concurrent use.
package buyergroup

// Tier is an ordinal company-size classification. Tiers are ordered from
// smallest (S1) to largest (L7); each tier owns a half-open revenue range
// and a half-open employee-count range.
type Tier int

const (
	TierS1 Tier = iota
	TierS2
	TierS3
	TierS4
	TierS5
	TierS6
	TierS7
	TierM1
	TierM2
	TierM3
	TierM4
	TierM5
	TierM6
	TierM7
	TierL1
	TierL2
	TierL3
	TierL4
	TierL5
	TierL6
	TierL7

	tierCount = int(TierL7) + 1
)

// defaultTier is the fallback when no range matches. The scan below is
// exhaustive over [0, inf) so this only guards a table defect.
const defaultTier = TierS3

var tierNames = [tierCount]string{
	"S1", "S2", "S3", "S4", "S5", "S6", "S7",
	"M1", "M2", "M3", "M4", "M5", "M6", "M7",
	"L1", "L2", "L3", "L4", "L5", "L6", "L7",
}

// String returns the short tier label (e.g. "M3").
func (t Tier) String() string {
	if t < 0 || int(t) >= tierCount {
		return "unknown"
	}
	return tierNames[t]
}

// ParseTier resolves a tier label back to its Tier value.
// Unknown labels return the default mid-small tier.
func ParseTier(s string) Tier {
	for i, name := range tierNames {
		if name == s {
			return Tier(i)
		}
	}
	return defaultTier
}

// tierRange holds the classification bounds for one tier. MaxRevenue and
// MaxEmployees are exclusive; a zero max means unbounded (top tier only).
type tierRange struct {
	minRevenue   float64
	maxRevenue   float64
	minEmployees int
	maxEmployees int
}

// tierRanges maps each tier to its revenue and employee bounds. Ranges are
// contiguous and non-overlapping per metric; the L7 upper bounds are open.
var tierRanges = [tierCount]tierRange{
	TierS1: {0, 1_000_000, 0, 5},
	TierS2: {1_000_000, 5_000_000, 5, 10},
	TierS3: {5_000_000, 10_000_000, 10, 25},
	TierS4: {10_000_000, 25_000_000, 25, 50},
	TierS5: {25_000_000, 50_000_000, 50, 100},
	TierS6: {50_000_000, 100_000_000, 100, 150},
	TierS7: {100_000_000, 250_000_000, 150, 250},
	TierM1: {250_000_000, 500_000_000, 250, 500},
	TierM2: {500_000_000, 1_000_000_000, 500, 1_000},
	TierM3: {1_000_000_000, 2_500_000_000, 1_000, 2_500},
	TierM4: {2_500_000_000, 5_000_000_000, 2_500, 5_000},
	TierM5: {5_000_000_000, 7_500_000_000, 5_000, 7_500},
	TierM6: {7_500_000_000, 10_000_000_000, 7_500, 10_000},
	TierM7: {10_000_000_000, 15_000_000_000, 10_000, 15_000},
	TierL1: {15_000_000_000, 25_000_000_000, 15_000, 25_000},
	TierL2: {25_000_000_000, 50_000_000_000, 25_000, 50_000},
	TierL3: {50_000_000_000, 100_000_000_000, 50_000, 100_000},
	TierL4: {100_000_000_000, 150_000_000_000, 100_000, 150_000},
	TierL5: {150_000_000_000, 250_000_000_000, 150_000, 250_000},
	TierL6: {250_000_000_000, 500_000_000_000, 250_000, 500_000},
	TierL7: {500_000_000_000, 0, 500_000, 0},
}

// ClassifyTier maps a company to its size tier. Revenue is the preferred
// metric when known (> 0); otherwise the employee count is used. Negative
// inputs are clamped to zero. Classification is total: every input maps to
// exactly one tier.
func ClassifyTier(revenue float64, employees int) Tier {
	if revenue < 0 {
		revenue = 0
	}
	if employees < 0 {
		employees = 0
	}

	if revenue > 0 {
		for t, r := range tierRanges {
			if revenue >= r.minRevenue && (r.maxRevenue == 0 || revenue < r.maxRevenue) {
				return Tier(t)
			}
		}
		return defaultTier
	}

	for t, r := range tierRanges {
		if employees >= r.minEmployees && (r.maxEmployees == 0 || employees < r.maxEmployees) {
			return Tier(t)
		}
	}
	return defaultTier
}

// Tiers returns all tiers in ascending size order.
func Tiers() []Tier {
	out := make([]Tier, tierCount)
	for i := range out {
		out[i] = Tier(i)
	}
	return out
}
