// Package engine implements the Policy Engine: suppression matching,
// dedup-by-rule-id scoring, and critical-block detection over a flat finding
// list.
package engine

import (
	"path/filepath"
	"strings"

	"github.com/skillaudit/scanner/model"
)

// Evaluate scores findings against policy and returns the evaluation result.
// Finding order is preserved as the dedup/scoring order the spec requires.
func Evaluate(policy model.Policy, findings []model.Finding) model.EvaluationResult {
	result := model.EvaluationResult{}
	triggeredIndex := make(map[string]int)
	criticalBlockSet := make(map[string]bool)
	for _, id := range policy.CriticalBlock {
		criticalBlockSet[id] = true
	}
	critHitSeen := make(map[string]bool)

	score := 100

	for _, f := range findings {
		if isSuppressed(policy, f) {
			result.Suppressed = append(result.Suppressed, f)
			continue
		}

		def, hasDef := policy.Rules[f.RuleID]
		if hasDef && !def.IsEnabled() {
			continue
		}

		weight := f.Severity.DefaultWeight()
		message := f.Message
		severity := f.Severity
		if hasDef {
			weight = def.Weight
			message = def.Message
			severity = def.Severity
		}

		if criticalBlockSet[f.RuleID] && !critHitSeen[f.RuleID] {
			critHitSeen[f.RuleID] = true
			result.CriticalBlockHit = append(result.CriticalBlockHit, f.RuleID)
		}

		if idx, ok := triggeredIndex[f.RuleID]; ok {
			t := &result.Triggered[idx]
			t.Count++
			t.Findings = append(t.Findings, f)
			continue
		}

		triggeredIndex[f.RuleID] = len(result.Triggered)
		result.Triggered = append(result.Triggered, model.TriggeredRule{
			RuleID:   f.RuleID,
			Severity: severity,
			Weight:   weight,
			Message:  message,
			Count:    1,
			Findings: []model.Finding{f},
		})
		score += weight
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	result.Score = score
	result.HasCriticalBlock = len(result.CriticalBlockHit) > 0

	return result
}

func isSuppressed(policy model.Policy, f model.Finding) bool {
	for _, exc := range policy.Exceptions {
		if !globMatch(exc.PathPattern, f.Location.File) {
			continue
		}
		for _, ruleID := range exc.SuppressedRuleIDs {
			if ruleID == f.RuleID {
				return true
			}
		}
	}
	return false
}

// globMatch implements `*`/`**` glob semantics: `*` matches within a single
// path segment, `**` matches across segments. Matching is case-sensitive.
func globMatch(pattern, path string) bool {
	patternSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(filepath.ToSlash(path), "/")
	return matchSegments(patternSegs, pathSegs)
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	head := pattern[0]

	if head == "**" {
		if len(pattern) == 1 {
			return true
		}
		for i := 0; i <= len(path); i++ {
			if matchSegments(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	}

	if len(path) == 0 {
		return false
	}
	if !matchSegment(head, path[0]) {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}

func matchSegment(pattern, segment string) bool {
	matched, err := filepath.Match(pattern, segment)
	if err != nil {
		return false
	}
	return matched
}
