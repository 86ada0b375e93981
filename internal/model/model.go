// Package model defines the shared domain types for the buyer-group
// assembly pipeline.
package model

import (
	"time"

	"github.com/sells-group/buyergroup-cli/internal/buyergroup"
)

// RunStatus represents the current state of an assembly run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusDiscovering RunStatus = "discovering"
	RunStatusSizing      RunStatus = "sizing"
	RunStatusAssembling  RunStatus = "assembling"
	RunStatusVerifying   RunStatus = "verifying"
	RunStatusValidating  RunStatus = "validating"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Company represents a target company whose buyer group is being assembled.
type Company struct {
	Domain        string  `json:"domain"`
	Name          string  `json:"name"`
	Industry      string  `json:"industry,omitempty"`
	City          string  `json:"city,omitempty"`
	State         string  `json:"state,omitempty"`
	Revenue       float64 `json:"revenue"`        // annual revenue USD; 0 = unknown
	EmployeeCount int     `json:"employee_count"` // 0 = unknown
}

// Intelligence projects the company onto the slice the sizing engine reads.
func (c Company) Intelligence() buyergroup.CompanyIntelligence {
	return buyergroup.CompanyIntelligence{
		Revenue:       c.Revenue,
		EmployeeCount: c.EmployeeCount,
	}
}

// Seniority is a coarse job-level classification derived from titles.
type Seniority string

const (
	SeniorityCLevel   Seniority = "c_level"
	SeniorityVP       Seniority = "vp"
	SeniorityDirector Seniority = "director"
	SeniorityManager  Seniority = "manager"
	SeniorityIC       Seniority = "ic"
)

// VerifyStatus is the outcome of contact verification for one channel.
type VerifyStatus string

const (
	VerifyValid   VerifyStatus = "valid"
	VerifyRisky   VerifyStatus = "risky"
	VerifyInvalid VerifyStatus = "invalid"
	VerifyUnknown VerifyStatus = "unknown"
)

// CandidateEmployee is one person found at the target company by the
// discovery collaborator, scored for buyer-group relevance.
type CandidateEmployee struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Title        string    `json:"title"`
	Seniority    Seniority `json:"seniority,omitempty"`
	Department   string    `json:"department,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	LinkedInURL  string    `json:"linkedin_url,omitempty"`
	OverallScore float64   `json:"overall_score"` // 0-100
	Relevance    float64   `json:"relevance"`     // 0-1
	Source       string    `json:"source,omitempty"`

	EmailStatus     VerifyStatus `json:"email_status,omitempty"`
	EmailConfidence float64      `json:"email_confidence,omitempty"`
	PhoneStatus     VerifyStatus `json:"phone_status,omitempty"`
}

// CandidateScore implements buyergroup.Candidate.
func (c CandidateEmployee) CandidateScore() float64 { return c.OverallScore }

// CandidateRelevance implements buyergroup.Candidate.
func (c CandidateEmployee) CandidateRelevance() float64 { return c.Relevance }

// Member is one candidate placed into a buyer-group role slot.
type Member struct {
	Candidate CandidateEmployee `json:"candidate"`
	Role      buyergroup.Role   `json:"role"`
	Rank      int               `json:"rank"` // 1-based position within the role
	Reason    string            `json:"reason,omitempty"`
}

// BuyerGroup is an assembled, validated buyer group for one company.
type BuyerGroup struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	Company   Company   `json:"company"`
	Tier      string    `json:"tier"`
	DealSize  float64   `json:"deal_size"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`

	// Validation outcome (advisory, never blocks persistence).
	Valid          bool   `json:"valid"`
	Score          int    `json:"score"`
	Action         string `json:"action"`
	ActionMessage  string `json:"action_message,omitempty"`
	ActionPriority string `json:"action_priority,omitempty"`
}

// Size returns the number of members.
func (g BuyerGroup) Size() int { return len(g.Members) }

// MembersByRole returns the members holding the given role, in rank order.
func (g BuyerGroup) MembersByRole(r buyergroup.Role) []Member {
	var out []Member
	for _, m := range g.Members {
		if m.Role == r {
			out = append(out, m)
		}
	}
	return out
}

// Run represents a single assembly run for a company.
type Run struct {
	ID        string    `json:"id"`
	Company   Company   `json:"company"`
	DealSize  float64   `json:"deal_size"`
	Status    RunStatus `json:"status"`
	Error     string    `json:"error,omitempty"`
	GroupID   string    `json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
