// Package enforcer maps a Policy Engine evaluation into the terminal
// decision and process exit code.
package enforcer

import (
	"fmt"

	"github.com/skillaudit/scanner/model"
)

// Exit codes per the decision/exit-code contract.
const (
	ExitAllow      = 0
	ExitBlock      = 1
	ExitQuarantine = 2
	ExitScanFailed = 3
)

// Outcome is the terminal result of enforcing a policy's evaluation.
type Outcome struct {
	Decision   model.Decision
	ExitCode   int
	Evaluation model.EvaluationResult
	Summary    string
	Reasons    []string
	PolicyName string
	TimestampUTC string
}

// Enforce derives the decision, exit code, and human-readable reasons from
// an evaluation result.
func Enforce(policy model.Policy, evaluation model.EvaluationResult, timestampUTC string) Outcome {
	decision := decide(policy, evaluation)

	var exitCode int
	switch decision {
	case model.DecisionAllow:
		exitCode = ExitAllow
	case model.DecisionBlock:
		exitCode = ExitBlock
	case model.DecisionQuarantine:
		exitCode = ExitQuarantine
	}

	return Outcome{
		Decision:     decision,
		ExitCode:     exitCode,
		Evaluation:   evaluation,
		Summary:      summarize(decision, evaluation),
		Reasons:      reasons(evaluation),
		PolicyName:   policy.Name,
		TimestampUTC: timestampUTC,
	}
}

func decide(policy model.Policy, evaluation model.EvaluationResult) model.Decision {
	if evaluation.HasCriticalBlock {
		return model.DecisionBlock
	}
	if evaluation.Score <= policy.Thresholds.Block {
		return model.DecisionBlock
	}
	if evaluation.Score <= policy.Thresholds.Warn {
		return model.DecisionQuarantine
	}
	return model.DecisionAllow
}

func summarize(decision model.Decision, evaluation model.EvaluationResult) string {
	return fmt.Sprintf("%s (score=%d, triggered=%d, suppressed=%d)", decision, evaluation.Score, len(evaluation.Triggered), len(evaluation.Suppressed))
}

func reasons(evaluation model.EvaluationResult) []string {
	var out []string
	for _, id := range evaluation.CriticalBlockHit {
		out = append(out, fmt.Sprintf("critical_block: rule %s triggered", id))
	}
	for _, t := range evaluation.Triggered {
		out = append(out, fmt.Sprintf("%s (%s): %s x%d", t.RuleID, t.Severity, t.Message, t.Count))
	}
	return out
}
