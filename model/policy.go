package model

// RuleDefinition is the policy's configuration for a single rule id.
type RuleDefinition struct {
	Severity Severity `yaml:"severity" json:"severity"`
	Weight   int      `yaml:"weight" json:"weight"`
	Message  string   `yaml:"message" json:"message"`
	Enabled  *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
}

// IsEnabled reports whether the rule is enabled (default true when unset).
func (r RuleDefinition) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Exception suppresses rule ids for files matching a glob pattern.
type Exception struct {
	PathPattern        string   `yaml:"pattern" json:"pattern"`
	SuppressedRuleIDs  []string `yaml:"ignore" json:"ignore"`
	Reason             string   `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Thresholds define the score boundaries for decision mapping.
type Thresholds struct {
	Block int `yaml:"block" json:"block"`
	Warn  int `yaml:"warn" json:"warn"`
}

// Policy is the declarative ruleset evaluated against a finding list.
type Policy struct {
	Version       string                    `yaml:"version" json:"version"`
	Name          string                    `yaml:"name" json:"name"`
	Description   string                    `yaml:"description,omitempty" json:"description,omitempty"`
	Extends       string                    `yaml:"extends,omitempty" json:"extends,omitempty"`
	Thresholds    Thresholds                `yaml:"thresholds" json:"thresholds"`
	CriticalBlock []string                  `yaml:"critical_block,omitempty" json:"critical_block,omitempty"`
	Rules         map[string]RuleDefinition `yaml:"rules,omitempty" json:"rules,omitempty"`
	Exceptions    []Exception               `yaml:"exceptions,omitempty" json:"exceptions,omitempty"`

	// RequireSignature demands a verifiable SKILL.md.sig sidecar. When set
	// and no signature file is present, the trust supplemental check emits
	// an info-severity trust_unsigned finding.
	RequireSignature bool `yaml:"require_signature,omitempty" json:"require_signature,omitempty"`
}

// TriggeredRule aggregates all findings that share a rule id.
type TriggeredRule struct {
	RuleID   string
	Severity Severity
	Weight   int
	Message  string
	Count    int
	Findings []Finding
}

// EvaluationResult is the output of the Policy Engine.
type EvaluationResult struct {
	Score            int
	Triggered        []TriggeredRule
	HasCriticalBlock bool
	CriticalBlockHit []string
	Suppressed       []Finding
}

// Decision is the terminal outcome of a scan.
type Decision string

const (
	DecisionAllow      Decision = "allow"
	DecisionBlock      Decision = "block"
	DecisionQuarantine Decision = "quarantine"
)
