package report

import (
	"fmt"
	"slices"

	"github.com/agentstation/specgate/pkg/checker"
	"github.com/agentstation/specgate/pkg/errors"
)

// Policy decides which failing checks gate the run. A rule listed in
// SoftRules never gates; a rule in HardRules always does; every other
// rule gates when its class is in HardClasses.
type Policy struct {
	HardClasses []checker.Class `mapstructure:"hard_classes" json:"hard_classes" yaml:"hard_classes"`
	HardRules   []string        `mapstructure:"hard_rules" json:"hard_rules" yaml:"hard_rules"`
	SoftRules   []string        `mapstructure:"soft_rules" json:"soft_rules" yaml:"soft_rules"`
}

// DefaultPolicy gates on structural and referential rules.
func DefaultPolicy() Policy {
	return Policy{
		HardClasses: []checker.Class{checker.ClassStructural, checker.ClassReferential},
		HardRules:   []string{},
		SoftRules:   []string{},
	}
}

// Validate rejects unknown classes and rules, and rules listed as both
// hard and soft.
func (p Policy) Validate() error {
	for _, c := range p.HardClasses {
		if !slices.Contains(checker.Classes, c) {
			return errors.NewValidationError("gate.hard_classes", c, fmt.Sprintf("unknown class, want one of %v", checker.Classes))
		}
	}
	known := make(map[string]bool)
	for _, r := range checker.Rules() {
		known[r.ID] = true
	}
	for _, id := range append(slices.Clone(p.HardRules), p.SoftRules...) {
		if !known[id] {
			return errors.NewValidationError("gate.rules", id, "unknown rule")
		}
	}
	for _, id := range p.HardRules {
		if slices.Contains(p.SoftRules, id) {
			return errors.NewValidationError("gate.rules", id, "rule is listed as both hard and soft")
		}
	}
	return nil
}

// IsHard reports whether a failure of c gates the run.
func (p Policy) IsHard(c checker.Check) bool {
	switch {
	case slices.Contains(p.SoftRules, c.Rule):
		return false
	case slices.Contains(p.HardRules, c.Rule):
		return true
	default:
		return slices.Contains(p.HardClasses, c.Class)
	}
}

// Apply marks the gating checks of r and recounts its tallies.
func (p Policy) Apply(r *checker.Report) {
	for i := range r.Checks {
		r.Checks[i].Hard = p.IsHard(r.Checks[i])
	}
	r.Tally()
}

// Err returns a GateFailedError naming the failed gating rules, or nil.
// r must have been passed through Apply.
func (p Policy) Err(r *checker.Report) error {
	if r.HardFailCount == 0 {
		return nil
	}
	var rules []string
	for _, c := range r.Checks {
		if c.Hard && c.Failed() {
			rules = append(rules, c.Rule)
		}
	}
	return errors.NewGateFailedError(r.HardFailCount, rules)
}

// ExitCode is the process exit status for r under p.
func (p Policy) ExitCode(r *checker.Report) int {
	return errors.ExitCode(p.Err(r))
}
