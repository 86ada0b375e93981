// Package policy loads optional overrides for the assembly policy from a
// YAML file. The sizing model's tier tables are compile-time constants;
// policy only tunes how candidates are weighed and filtered when filling
// role slots.
package policy

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Weights balances the candidate composite score between the discovery
// collaborator's overall score and its buyer-group relevance.
type Weights struct {
	Score     float64 `yaml:"score"`
	Relevance float64 `yaml:"relevance"`
}

// Policy is the assembly policy: composite weights, a global score floor,
// and optional per-role floors.
type Policy struct {
	Weights        Weights            `yaml:"weights"`
	MinMemberScore float64            `yaml:"min_member_score"`
	RoleFloors     map[string]float64 `yaml:"role_floors"`
}

// Default returns the built-in assembly policy.
func Default() Policy {
	return Policy{
		Weights:        Weights{Score: 0.7, Relevance: 0.3},
		MinMemberScore: 0,
		RoleFloors:     map[string]float64{},
	}
}

// Load reads a policy override file and merges it over the defaults.
// Zero-valued fields in the file keep their defaults. A missing path
// returns the defaults without error.
func Load(path string) (Policy, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return p, nil
		}
		return p, eris.Wrapf(err, "policy: read %s", path)
	}

	// The YAML has a top-level "policy" key.
	var wrapper struct {
		Policy Policy `yaml:"policy"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return p, eris.Wrap(err, "policy: parse")
	}

	o := wrapper.Policy
	if o.Weights.Score > 0 {
		p.Weights.Score = o.Weights.Score
	}
	if o.Weights.Relevance > 0 {
		p.Weights.Relevance = o.Weights.Relevance
	}
	if o.MinMemberScore > 0 {
		p.MinMemberScore = o.MinMemberScore
	}
	for role, floor := range o.RoleFloors {
		p.RoleFloors[role] = floor
	}

	return p, nil
}

// FloorFor returns the score floor for a role, falling back to the global
// minimum member score.
func (p Policy) FloorFor(role string) float64 {
	if f, ok := p.RoleFloors[role]; ok {
		return f
	}
	return p.MinMemberScore
}
