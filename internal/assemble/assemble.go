// Package assemble fills buyer-group role slots from a scored candidate
// pool. Candidates are ranked per role by a composite of overall score and
// relevance, adjusted by how well their seniority and department fit the
// role, then assigned greedily in role-priority order.
package assemble

import (
	"fmt"
	"sort"

	"github.com/sells-group/buyergroup-cli/internal/buyergroup"
	"github.com/sells-group/buyergroup-cli/internal/model"
	"github.com/sells-group/buyergroup-cli/internal/policy"
)

// blockerDepartments are the departments that typically hold approval or
// veto power over a purchase.
var blockerDepartments = map[string]bool{
	"finance":     true,
	"legal":       true,
	"procurement": true,
	"security":    true,
}

// Composite returns the 0-100 composite score for a candidate under the
// given weights. Relevance is 0-1 and is scaled to the score range.
func Composite(c model.CandidateEmployee, w policy.Weights) float64 {
	total := w.Score + w.Relevance
	if total <= 0 {
		return c.OverallScore
	}
	return (w.Score*c.OverallScore + w.Relevance*c.Relevance*100) / total
}

// roleAffinity returns a multiplier in (0, 1] expressing how well a
// candidate's seniority and department fit a role. expected is the
// seniority level the deal size calls for in the decision maker.
func roleAffinity(c model.CandidateEmployee, role buyergroup.Role, expected model.Seniority) float64 {
	switch role {
	case buyergroup.RoleDecision:
		// Decision makers should be at or above the expected level.
		if rankOf(c.Seniority) >= rankOf(expected) {
			return 1.0
		}
		return 0.6
	case buyergroup.RoleChampion:
		// Champions sit close to the work: directors and managers.
		switch c.Seniority {
		case model.SeniorityDirector, model.SeniorityManager:
			return 1.0
		case model.SeniorityVP, model.SeniorityIC:
			return 0.85
		default:
			return 0.7
		}
	case buyergroup.RoleStakeholder:
		if c.Seniority == model.SeniorityIC {
			return 0.8
		}
		return 0.9
	case buyergroup.RoleBlocker:
		if blockerDepartments[c.Department] {
			return 1.0
		}
		return 0.3
	case buyergroup.RoleIntroducer:
		// Introducers are warm entry points, usually not executives.
		switch c.Seniority {
		case model.SeniorityIC, model.SeniorityManager:
			return 1.0
		default:
			return 0.7
		}
	}
	return 1.0
}

// Assemble assigns candidates to role slots. Roles are filled in priority
// order (decision first); each candidate is used at most once. The total
// never exceeds maxTotal. Candidates whose composite falls below the
// policy floor for a role are skipped for that role.
//
// Candidates missing a detected seniority or department get one from
// their title before ranking.
func Assemble(candidates []model.CandidateEmployee, counts buyergroup.RoleCounts, tier buyergroup.Tier, dealSize float64, maxTotal int, pol policy.Policy) []model.Member {
	pool := make([]model.CandidateEmployee, len(candidates))
	copy(pool, candidates)
	for i := range pool {
		if pool[i].Seniority == "" {
			pool[i].Seniority = DetectSeniority(pool[i].Title)
		}
		if pool[i].Department == "" {
			pool[i].Department = DetectDepartment(pool[i].Title)
		}
	}

	expected := model.Seniority(buyergroup.ExpectedSeniority(tier, dealSize))
	used := make(map[string]bool, len(pool))
	var members []model.Member

	for _, role := range buyergroup.Roles {
		want := counts.Count(role)
		if want == 0 {
			continue
		}
		if remaining := maxTotal - len(members); want > remaining {
			want = remaining
		}
		if want <= 0 {
			break
		}

		ranked := rankForRole(pool, used, role, expected, pol)
		floor := pol.FloorFor(string(role))
		taken := 0
		for _, rc := range ranked {
			if taken >= want {
				break
			}
			if rc.weighted < floor {
				break // ranked descending, nothing below passes
			}
			used[rc.cand.ID] = true
			taken++
			members = append(members, model.Member{
				Candidate: rc.cand,
				Role:      role,
				Rank:      taken,
				Reason: fmt.Sprintf("%s (%s, %s) scored %.1f for %s",
					rc.cand.Title, rc.cand.Seniority, rc.cand.Department, rc.weighted, role),
			})
		}
	}

	return members
}

// rankedCandidate pairs a candidate with its role-weighted composite.
type rankedCandidate struct {
	cand     model.CandidateEmployee
	weighted float64
}

// rankForRole scores the unused pool for one role and sorts it best-first.
// Ties break on candidate ID, so assembly is deterministic.
func rankForRole(pool []model.CandidateEmployee, used map[string]bool, role buyergroup.Role, expected model.Seniority, pol policy.Policy) []rankedCandidate {
	ranked := make([]rankedCandidate, 0, len(pool))
	for _, c := range pool {
		if used[c.ID] {
			continue
		}
		comp := Composite(c, pol.Weights)
		ranked = append(ranked, rankedCandidate{
			cand:     c,
			weighted: comp * roleAffinity(c, role, expected),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].weighted != ranked[j].weighted {
			return ranked[i].weighted > ranked[j].weighted
		}
		return ranked[i].cand.ID < ranked[j].cand.ID
	})
	return ranked
}
