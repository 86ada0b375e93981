package buyergroup

import "fmt"

// Validation is the result of scoring an assembled group against its
// constraint.
type Validation struct {
	Valid     bool   `json:"valid"`
	Score     int    `json:"score"` // 0-100
	Reasoning string `json:"reasoning"`
}

// Action is the recommended operator response to a validation result.
type Action string

const (
	ActionAccept         Action = "accept"
	ActionAcceptWithNote Action = "accept_with_note"
	ActionWarn           Action = "warn"
)

// Priority ranks how urgently a recommendation should be reviewed.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Recommendation is advisory output for the calling pipeline: it never
// blocks persistence, it flags groups for operator or regeneration review.
type Recommendation struct {
	Action   Action   `json:"action"`
	Message  string   `json:"message"`
	Priority Priority `json:"priority"`
}

// smallCompanyEmployeeCeiling bounds the below-minimum single-person
// exception: at five or fewer employees one person can still be a
// legitimate buyer group even under the nominal minimum.
const smallCompanyEmployeeCeiling = 5

// ValidateSize scores an actual group size against the computed constraint.
// Rules are evaluated top to bottom, first match wins; the function is pure
// and never errors.
func ValidateSize(actual int, sc SizeConstraint) Validation {
	switch {
	case actual >= sc.Min && actual <= sc.Max:
		score := 100
		if actual != sc.Ideal {
			score = max(60, 100-5*abs(actual-sc.Ideal))
		}
		return Validation{
			Valid:     true,
			Score:     score,
			Reasoning: fmt.Sprintf("size %d within [%d, %d] (ideal %d)", actual, sc.Min, sc.Max, sc.Ideal),
		}

	case actual == 1 && sc.AcceptSinglePerson:
		return Validation{
			Valid:     true,
			Score:     80,
			Reasoning: "single-person group accepted by constraint",
		}

	case actual < sc.Min:
		if actual == 1 && sc.CompanyEmployees <= smallCompanyEmployeeCeiling {
			return Validation{
				Valid:     true,
				Score:     70,
				Reasoning: fmt.Sprintf("single person below nominal minimum %d accepted for a %d-employee company", sc.Min, sc.CompanyEmployees),
			}
		}
		return Validation{
			Valid:     false,
			Score:     max(0, 100-20*(sc.Min-actual)),
			Reasoning: fmt.Sprintf("size %d below minimum %d", actual, sc.Min),
		}

	default: // actual > sc.Max
		return Validation{
			Valid:     false,
			Score:     max(0, 100-10*(actual-sc.Max)),
			Reasoning: fmt.Sprintf("size %d above maximum %d", actual, sc.Max),
		}
	}
}

// Recommend derives the advisory action for an assembled group. Below-
// minimum groups under a data-limited constraint are expected, not defects;
// below-minimum otherwise signals a real sourcing gap.
func Recommend(actual int, sc SizeConstraint) Recommendation {
	v := ValidateSize(actual, sc)

	switch {
	case v.Valid && v.Score >= 80:
		return Recommendation{
			Action:   ActionAccept,
			Priority: PriorityLow,
			Message:  v.Reasoning,
		}

	case actual == 1 && sc.AcceptSinglePerson:
		return Recommendation{
			Action:   ActionAccept,
			Priority: PriorityLow,
			Message:  "single-person group accepted",
		}

	case actual < sc.Min && sc.DataLimited:
		return Recommendation{
			Action:   ActionAcceptWithNote,
			Priority: PriorityMedium,
			Message:  fmt.Sprintf("group of %d below minimum %d, expected under known data scarcity", actual, sc.Min),
		}

	case actual < sc.Min:
		return Recommendation{
			Action:   ActionWarn,
			Priority: PriorityHigh,
			Message:  fmt.Sprintf("group of %d below minimum %d: likely sourcing gap, consider regeneration", actual, sc.Min),
		}

	case actual > sc.Max:
		return Recommendation{
			Action:   ActionWarn,
			Priority: PriorityMedium,
			Message:  fmt.Sprintf("group of %d above maximum %d: trim low-relevance members", actual, sc.Max),
		}

	default:
		return Recommendation{
			Action:   ActionAcceptWithNote,
			Priority: PriorityLow,
			Message:  v.Reasoning,
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
