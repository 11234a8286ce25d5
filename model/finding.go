// Package model holds the data types shared across the scan pipeline:
// findings, file sets, policy, and the decision artifact.
package model

// Severity is totally ordered descending by declaration position.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityRank gives each Severity a rank where lower is more severe.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// Less reports whether s is strictly more severe than other.
func (s Severity) Less(other Severity) bool {
	return severityRank[s] < severityRank[other]
}

// DefaultWeight returns the synthesized rule weight for a severity when no
// explicit rule definition exists in the policy.
func (s Severity) DefaultWeight() int {
	switch s {
	case SeverityCritical:
		return -50
	case SeverityHigh:
		return -20
	case SeverityMedium:
		return -10
	case SeverityLow:
		return -5
	default:
		return 0
	}
}

// AnalyzerKind identifies the producer of a Finding.
type AnalyzerKind string

const (
	AnalyzerSecret      AnalyzerKind = "secret"
	AnalyzerStatic      AnalyzerKind = "static"
	AnalyzerSkill       AnalyzerKind = "skill"
	AnalyzerEntrypoint  AnalyzerKind = "entrypoint"
	AnalyzerDependency  AnalyzerKind = "dependency"
	AnalyzerCIRisk      AnalyzerKind = "ci-risk"
	AnalyzerTrust       AnalyzerKind = "trust"
	AnalyzerSkillConfig AnalyzerKind = "skill-config"
)

// Location pinpoints a Finding within the source tree.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Finding is the atomic output unit of an analyzer.
type Finding struct {
	Analyzer  AnalyzerKind      `json:"analyzer"`
	Severity  Severity          `json:"severity"`
	RuleID    string            `json:"rule"`
	Message   string            `json:"message"`
	Location  Location          `json:"location"`
	Evidence  string            `json:"evidence,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
