package buyergroup

// Role is a buyer-group role category.
type Role string

const (
	RoleDecision    Role = "decision"
	RoleChampion    Role = "champion"
	RoleStakeholder Role = "stakeholder"
	RoleBlocker     Role = "blocker"
	RoleIntroducer  Role = "introducer"
)

// Roles lists the role categories in slot-filling priority order.
var Roles = []Role{RoleDecision, RoleChampion, RoleStakeholder, RoleBlocker, RoleIntroducer}

// Target is a min/max/ideal count triple for one role within one tier.
type Target struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Ideal int `json:"ideal"`
}

// Distribution holds the per-role targets for a tier.
type Distribution struct {
	Decision    Target `json:"decision"`
	Champion    Target `json:"champion"`
	Stakeholder Target `json:"stakeholder"`
	Blocker     Target `json:"blocker"`
	Introducer  Target `json:"introducer"`
}

// IdealTotal is the sum of ideal counts across all roles. It equals the
// tier's ideal group size by construction (verified by test).
func (d Distribution) IdealTotal() int {
	return d.Decision.Ideal + d.Champion.Ideal + d.Stakeholder.Ideal +
		d.Blocker.Ideal + d.Introducer.Ideal
}

// GroupSize is the acceptable buyer-group size band for a tier.
type GroupSize struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Ideal int `json:"ideal"`
}

// DealThresholds gives, per seniority level, the minimum deal size (USD) at
// which that seniority is expected to hold decision authority. Within a
// tier VP >= Director >= Manager.
type DealThresholds struct {
	VP       float64 `json:"vp"`
	Director float64 `json:"director"`
	Manager  float64 `json:"manager"`
}

// blockerDealFloor and blockerEmployeeFloor gate blocker sourcing: blockers
// (procurement, legal, finance) are only worth sourcing when the deal value
// or org size justifies the cost.
const (
	blockerDealFloor     = 50_000
	blockerEmployeeFloor = 100
)

// groupSizes is the per-tier acceptable group size band.
var groupSizes = [tierCount]GroupSize{
	TierS1: {1, 3, 2},
	TierS2: {2, 4, 3},
	TierS3: {3, 6, 5},
	TierS4: {3, 7, 5},
	TierS5: {4, 8, 6},
	TierS6: {4, 9, 7},
	TierS7: {5, 10, 7},
	TierM1: {5, 10, 8},
	TierM2: {5, 11, 8},
	TierM3: {6, 12, 9},
	TierM4: {6, 12, 9},
	TierM5: {6, 13, 10},
	TierM6: {7, 13, 10},
	TierM7: {7, 14, 11},
	TierL1: {7, 14, 11},
	TierL2: {8, 15, 12},
	TierL3: {8, 15, 12},
	TierL4: {8, 16, 13},
	TierL5: {9, 16, 13},
	TierL6: {9, 17, 14},
	TierL7: {10, 18, 15},
}

// distributions maps each tier to its role targets. Per tier, the ideal
// counts sum to the tier's ideal group size in groupSizes.
var distributions = [tierCount]Distribution{
	TierS1: {Decision: Target{1, 1, 1}, Champion: Target{0, 1, 1}, Stakeholder: Target{0, 1, 0}, Blocker: Target{0, 0, 0}, Introducer: Target{0, 0, 0}},
	TierS2: {Decision: Target{1, 1, 1}, Champion: Target{0, 1, 1}, Stakeholder: Target{0, 2, 1}, Blocker: Target{0, 0, 0}, Introducer: Target{0, 0, 0}},
	TierS3: {Decision: Target{1, 1, 1}, Champion: Target{1, 2, 1}, Stakeholder: Target{1, 2, 2}, Blocker: Target{0, 1, 0}, Introducer: Target{0, 1, 1}},
	TierS4: {Decision: Target{1, 1, 1}, Champion: Target{1, 2, 1}, Stakeholder: Target{1, 3, 2}, Blocker: Target{0, 1, 0}, Introducer: Target{0, 1, 1}},
	TierS5: {Decision: Target{1, 1, 1}, Champion: Target{1, 2, 1}, Stakeholder: Target{1, 3, 2}, Blocker: Target{0, 1, 1}, Introducer: Target{0, 1, 1}},
	TierS6: {Decision: Target{1, 2, 1}, Champion: Target{1, 2, 2}, Stakeholder: Target{1, 3, 2}, Blocker: Target{0, 1, 1}, Introducer: Target{0, 1, 1}},
	TierS7: {Decision: Target{1, 2, 1}, Champion: Target{1, 2, 2}, Stakeholder: Target{1, 3, 2}, Blocker: Target{0, 2, 1}, Introducer: Target{0, 1, 1}},
	TierM1: {Decision: Target{1, 2, 1}, Champion: Target{1, 3, 2}, Stakeholder: Target{2, 4, 3}, Blocker: Target{0, 2, 1}, Introducer: Target{0, 1, 1}},
	TierM2: {Decision: Target{1, 2, 1}, Champion: Target{1, 3, 2}, Stakeholder: Target{2, 4, 3}, Blocker: Target{0, 2, 1}, Introducer: Target{0, 1, 1}},
	TierM3: {Decision: Target{1, 2, 2}, Champion: Target{1, 3, 2}, Stakeholder: Target{2, 4, 3}, Blocker: Target{0, 2, 1}, Introducer: Target{0, 1, 1}},
	TierM4: {Decision: Target{1, 2, 2}, Champion: Target{1, 3, 2}, Stakeholder: Target{2, 4, 3}, Blocker: Target{0, 2, 1}, Introducer: Target{0, 1, 1}},
	TierM5: {Decision: Target{1, 2, 2}, Champion: Target{1, 3, 2}, Stakeholder: Target{2, 5, 3}, Blocker: Target{1, 2, 2}, Introducer: Target{0, 1, 1}},
	TierM6: {Decision: Target{1, 2, 2}, Champion: Target{1, 3, 2}, Stakeholder: Target{2, 5, 3}, Blocker: Target{1, 2, 2}, Introducer: Target{0, 1, 1}},
	TierM7: {Decision: Target{1, 2, 2}, Champion: Target{1, 3, 2}, Stakeholder: Target{2, 5, 4}, Blocker: Target{1, 2, 2}, Introducer: Target{0, 1, 1}},
	TierL1: {Decision: Target{1, 3, 2}, Champion: Target{1, 3, 2}, Stakeholder: Target{2, 5, 4}, Blocker: Target{1, 2, 2}, Introducer: Target{0, 1, 1}},
	TierL2: {Decision: Target{1, 3, 2}, Champion: Target{2, 4, 3}, Stakeholder: Target{2, 5, 4}, Blocker: Target{1, 2, 2}, Introducer: Target{0, 1, 1}},
	TierL3: {Decision: Target{1, 3, 2}, Champion: Target{2, 4, 3}, Stakeholder: Target{2, 5, 4}, Blocker: Target{1, 2, 2}, Introducer: Target{0, 1, 1}},
	TierL4: {Decision: Target{1, 3, 2}, Champion: Target{2, 4, 3}, Stakeholder: Target{2, 5, 4}, Blocker: Target{1, 3, 2}, Introducer: Target{0, 2, 2}},
	TierL5: {Decision: Target{1, 3, 2}, Champion: Target{2, 4, 3}, Stakeholder: Target{2, 5, 4}, Blocker: Target{1, 3, 2}, Introducer: Target{0, 2, 2}},
	TierL6: {Decision: Target{1, 3, 2}, Champion: Target{2, 4, 3}, Stakeholder: Target{3, 6, 5}, Blocker: Target{1, 3, 2}, Introducer: Target{0, 2, 2}},
	TierL7: {Decision: Target{2, 3, 3}, Champion: Target{2, 4, 3}, Stakeholder: Target{3, 6, 5}, Blocker: Target{1, 3, 2}, Introducer: Target{0, 2, 2}},
}

// dealThresholds is the per-tier seniority/deal-size table. Values are
// monotonic within a tier (VP >= Director >= Manager) and non-decreasing
// across tiers in size order.
var dealThresholds = [tierCount]DealThresholds{
	TierS1: {100_000, 50_000, 10_000},
	TierS2: {100_000, 50_000, 15_000},
	TierS3: {150_000, 75_000, 25_000},
	TierS4: {150_000, 75_000, 25_000},
	TierS5: {200_000, 100_000, 25_000},
	TierS6: {200_000, 100_000, 50_000},
	TierS7: {250_000, 100_000, 50_000},
	TierM1: {250_000, 150_000, 50_000},
	TierM2: {300_000, 150_000, 50_000},
	TierM3: {300_000, 150_000, 75_000},
	TierM4: {400_000, 200_000, 75_000},
	TierM5: {400_000, 200_000, 100_000},
	TierM6: {500_000, 250_000, 100_000},
	TierM7: {500_000, 250_000, 100_000},
	TierL1: {600_000, 300_000, 150_000},
	TierL2: {600_000, 300_000, 150_000},
	TierL3: {750_000, 400_000, 200_000},
	TierL4: {750_000, 400_000, 200_000},
	TierL5: {1_000_000, 500_000, 250_000},
	TierL6: {1_000_000, 500_000, 250_000},
	TierL7: {1_500_000, 750_000, 300_000},
}

// GroupSizeFor returns the tier's acceptable group size band.
func GroupSizeFor(t Tier) GroupSize {
	if t < 0 || int(t) >= tierCount {
		t = defaultTier
	}
	return groupSizes[t]
}

// DistributionFor returns the tier's role distribution targets.
func DistributionFor(t Tier) Distribution {
	if t < 0 || int(t) >= tierCount {
		t = defaultTier
	}
	return distributions[t]
}

// DealThresholdsFor returns the tier's seniority deal-size thresholds.
func DealThresholdsFor(t Tier) DealThresholds {
	if t < 0 || int(t) >= tierCount {
		t = defaultTier
	}
	return dealThresholds[t]
}

// ExpectedSeniority returns the seniority level expected to hold decision
// authority for a deal of the given size at the given tier.
func ExpectedSeniority(t Tier, dealSize float64) string {
	th := DealThresholdsFor(t)
	switch {
	case dealSize >= th.VP:
		return "vp"
	case dealSize >= th.Director:
		return "director"
	case dealSize >= th.Manager:
		return "manager"
	default:
		return "manager"
	}
}

// RoleCounts is the number of people to source per role for one company.
type RoleCounts struct {
	Decision    int `json:"decision"`
	Champion    int `json:"champion"`
	Stakeholder int `json:"stakeholder"`
	Blocker     int `json:"blocker"`
	Introducer  int `json:"introducer"`
}

// Total is the sum across all roles.
func (rc RoleCounts) Total() int {
	return rc.Decision + rc.Champion + rc.Stakeholder + rc.Blocker + rc.Introducer
}

// Count returns the count for a single role.
func (rc RoleCounts) Count(r Role) int {
	switch r {
	case RoleDecision:
		return rc.Decision
	case RoleChampion:
		return rc.Champion
	case RoleStakeholder:
		return rc.Stakeholder
	case RoleBlocker:
		return rc.Blocker
	case RoleIntroducer:
		return rc.Introducer
	}
	return 0
}

// RoleTargets decides how many people to source per role. The special
// cases are evaluated in order, first match wins: role composition must
// reflect both who exists (totalCandidatesFound) and what is worth
// sourcing (deal value, org size).
func RoleTargets(t Tier, totalCandidatesFound, actualEmployeeCount int, dealSize float64) RoleCounts {
	if totalCandidatesFound < 0 {
		totalCandidatesFound = 0
	}

	switch {
	case actualEmployeeCount <= 1:
		// Solo operator: the founder is the whole buyer group.
		return RoleCounts{Decision: 1}

	case actualEmployeeCount <= 3:
		// A champion only exists if someone beyond the decision maker
		// was actually found.
		return RoleCounts{
			Decision: 1,
			Champion: clampNonNeg(min(1, totalCandidatesFound-1)),
		}

	case actualEmployeeCount <= 5:
		return RoleCounts{
			Decision:    1,
			Champion:    min(1, totalCandidatesFound/2),
			Stakeholder: clampNonNeg(min(1, totalCandidatesFound-2)),
		}
	}

	d := DistributionFor(t)
	counts := RoleCounts{
		Decision:    d.Decision.Ideal,
		Champion:    d.Champion.Ideal,
		Stakeholder: d.Stakeholder.Ideal,
		Introducer:  d.Introducer.Ideal,
	}
	if dealSize > blockerDealFloor || actualEmployeeCount > blockerEmployeeFloor {
		counts.Blocker = d.Blocker.Ideal
	}
	return counts
}

func clampNonNeg(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
