package buyergroup

import "fmt"

// CompanyIntelligence is the slice of company data the sizing engine reads.
// Zero values mean unknown.
type CompanyIntelligence struct {
	Revenue       float64 `json:"revenue"`
	EmployeeCount int     `json:"employee_count"`
}

// Candidate is the minimal view of a discovered employee the engine needs:
// a 0-100 overall score and a 0-1 relevance from the upstream discovery
// collaborator.
type Candidate interface {
	CandidateScore() float64
	CandidateRelevance() float64
}

// SizeConstraint is the sizing engine's output: the acceptable group size
// band plus the flags and reasoning the validator and downstream role
// assignment consume. Computed fresh per run, never persisted.
type SizeConstraint struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Ideal int `json:"ideal"`

	// Reasoning names the rule that fired and the deciding quantity.
	Reasoning string `json:"reasoning"`

	AcceptSinglePerson bool `json:"accept_single_person"`
	DataLimited        bool `json:"data_limited,omitempty"`
	QualityLimited     bool `json:"quality_limited,omitempty"`

	// Tier and CompanyEmployees carry context forward so the validator can
	// apply the small-company exception without re-fetching intelligence.
	Tier             Tier `json:"tier"`
	CompanyEmployees int  `json:"company_employees"`
}

// High-quality candidate gates and the rule-trigger constants of the
// sizing policy.
const (
	highQualityScoreFloor     = 60
	highQualityRelevanceFloor = 0.4

	sparseCoverageRatio  = 0.10
	partialCoverageRatio = 0.20
	smallDealCeiling     = 50_000
	staleCoverageRatio   = 0.50
)

// sizingInput gathers the derived quantities the rules test against.
type sizingInput struct {
	dealSize    float64
	employees   int
	avail       int
	ratio       float64 // avail / employees; 0 when employees is 0
	highQuality int
	size        GroupSize // tier group-size band
	tier        Tier
}

// sizingRule is one (predicate, builder) pair of the ordered policy.
type sizingRule struct {
	name    string
	applies func(in sizingInput) bool
	build   func(in sizingInput) SizeConstraint
}

// sizingRules is the policy, highest priority first. Evaluation is strictly
// first-match-wins; the order encodes priority from structural certainty
// (the company is objectively tiny) down to default tier-based sizing.
var sizingRules = []sizingRule{
	{
		name:    "solo_company",
		applies: func(in sizingInput) bool { return in.employees <= 1 },
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min: 1, Max: 1, Ideal: 1,
				AcceptSinglePerson: true,
				Reasoning:          fmt.Sprintf("solo company (%d employees): the single person is the whole buyer group", in.employees),
			}
		},
	},
	{
		name:    "micro_company",
		applies: func(in sizingInput) bool { return in.employees <= 3 },
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min: 1, Max: min(3, in.avail), Ideal: min(2, in.avail),
				AcceptSinglePerson: true,
				Reasoning:          fmt.Sprintf("micro company (%d employees): minimal org, minimal group", in.employees),
			}
		},
	},
	{
		name:    "very_small_company",
		applies: func(in sizingInput) bool { return in.employees <= 5 },
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min: 1, Max: min(4, in.avail), Ideal: min(3, in.avail),
				AcceptSinglePerson: true,
				Reasoning:          fmt.Sprintf("very small company (%d employees): small org, small group", in.employees),
			}
		},
	},
	{
		name: "sparse_coverage",
		applies: func(in sizingInput) bool {
			return in.ratio < sparseCoverageRatio && in.avail <= 3
		},
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min: 1, Max: in.avail, Ideal: min(in.avail, 2),
				AcceptSinglePerson: true,
				DataLimited:        true,
				Reasoning:          fmt.Sprintf("sparse coverage: only %d of %d employees found (ratio %.2f); using what was found", in.avail, in.employees, in.ratio),
			}
		},
	},
	{
		name: "partial_coverage",
		applies: func(in sizingInput) bool {
			return in.ratio < partialCoverageRatio && in.avail <= 5
		},
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min: 1, Max: min(in.avail, in.size.Max),
				Ideal:              min(in.avail, in.size.Ideal*7/10),
				AcceptSinglePerson: true,
				DataLimited:        true,
				Reasoning:          fmt.Sprintf("partial coverage: %d of %d employees found (ratio %.2f); tier expectation scaled down", in.avail, in.employees, in.ratio),
			}
		},
	},
	{
		name: "small_deal",
		applies: func(in sizingInput) bool {
			// Unknown (zero) deal size is not treated as a small deal.
			return in.dealSize > 0 && in.dealSize < smallDealCeiling
		},
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min: 1, Max: min(in.size.Max, in.avail),
				Ideal:              min(max(1, in.size.Ideal*6/10), in.avail),
				AcceptSinglePerson: true,
				Reasoning:          fmt.Sprintf("small deal ($%.0f): low-value deals do not justify a full committee", in.dealSize),
			}
		},
	},
	{
		name: "no_quality_signal",
		applies: func(in sizingInput) bool {
			return in.highQuality == 0 && in.avail > 0
		},
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min: 1, Max: min(3, in.avail), Ideal: min(2, in.avail),
				AcceptSinglePerson: true,
				QualityLimited:     true,
				Reasoning:          fmt.Sprintf("no high-quality candidates among %d found: keeping the group small and conservative", in.avail),
			}
		},
	},
	{
		name: "single_standout",
		applies: func(in sizingInput) bool {
			return in.highQuality == 1 && in.avail <= 3
		},
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min: 1, Max: min(3, in.avail), Ideal: 1,
				AcceptSinglePerson: true,
				QualityLimited:     true,
				Reasoning:          fmt.Sprintf("exactly 1 high-quality candidate of %d found: one standout is sufficient", in.avail),
			}
		},
	},
	{
		name:    "tier_default",
		applies: func(in sizingInput) bool { return true },
		build: func(in sizingInput) SizeConstraint {
			return SizeConstraint{
				Min:                max(1, in.size.Min*7/10),
				Max:                min(in.size.Max, in.avail),
				Ideal:              min(in.size.Ideal, max(1, in.avail*8/10)),
				AcceptSinglePerson: in.size.Min <= 2,
				DataLimited:        in.ratio < staleCoverageRatio,
				Reasoning:          fmt.Sprintf("tier %s default sizing with %d candidates available (coverage ratio %.2f)", in.tier, in.avail, in.ratio),
			}
		},
	},
}

// DetermineOptimalSize computes the acceptable buyer-group size for a
// company given the deal size, the company intelligence, and the pool of
// candidates actually discovered. It never errors: degenerate inputs
// degrade to a minimal but usable constraint. The returned Max never
// exceeds len(candidates) and Min <= Ideal <= Max always holds.
func DetermineOptimalSize[C Candidate](dealSize float64, intel CompanyIntelligence, candidates []C) SizeConstraint {
	tier := ClassifyTier(intel.Revenue, intel.EmployeeCount)

	in := sizingInput{
		dealSize:  dealSize,
		employees: intel.EmployeeCount,
		avail:     len(candidates),
		size:      GroupSizeFor(tier),
		tier:      tier,
	}
	if in.employees > 0 {
		in.ratio = float64(in.avail) / float64(in.employees)
	}
	for _, c := range candidates {
		if c.CandidateScore() > highQualityScoreFloor && c.CandidateRelevance() > highQualityRelevanceFloor {
			in.highQuality++
		}
	}

	for _, rule := range sizingRules {
		if !rule.applies(in) {
			continue
		}
		sc := rule.build(in)
		sc.Tier = tier
		sc.CompanyEmployees = intel.EmployeeCount
		return normalize(sc, in.avail)
	}

	// Unreachable: tier_default always applies.
	sc := sizingRules[len(sizingRules)-1].build(in)
	sc.Tier = tier
	sc.CompanyEmployees = intel.EmployeeCount
	return normalize(sc, in.avail)
}

// normalize enforces the cap invariant (Max <= available) and the ordering
// Min <= Ideal <= Max, clamping downward when the pool is degenerate.
func normalize(sc SizeConstraint, avail int) SizeConstraint {
	if sc.Max > avail {
		sc.Max = avail
	}
	if sc.Max < 0 {
		sc.Max = 0
	}
	if sc.Ideal > sc.Max {
		sc.Ideal = sc.Max
	}
	if sc.Ideal < 0 {
		sc.Ideal = 0
	}
	if sc.Min > sc.Ideal {
		sc.Min = sc.Ideal
	}
	if sc.Min < 0 {
		sc.Min = 0
	}
	return sc
}
