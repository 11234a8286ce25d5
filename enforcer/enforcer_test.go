package enforcer

import (
	"testing"

	"github.com/skillaudit/scanner/model"
)

func TestEnforceAllowsHighScore(t *testing.T) {
	policy := model.Policy{Name: "p", Thresholds: model.Thresholds{Block: 30, Warn: 60}}
	eval := model.EvaluationResult{Score: 90}

	out := Enforce(policy, eval, "2026-08-03T00:00:00Z")
	if out.Decision != model.DecisionAllow || out.ExitCode != ExitAllow {
		t.Fatalf("expected allow/0, got %s/%d", out.Decision, out.ExitCode)
	}
}

func TestEnforceQuarantinesMidScore(t *testing.T) {
	policy := model.Policy{Name: "p", Thresholds: model.Thresholds{Block: 30, Warn: 60}}
	eval := model.EvaluationResult{Score: 50}

	out := Enforce(policy, eval, "2026-08-03T00:00:00Z")
	if out.Decision != model.DecisionQuarantine || out.ExitCode != ExitQuarantine {
		t.Fatalf("expected quarantine/2, got %s/%d", out.Decision, out.ExitCode)
	}
}

func TestEnforceBlocksLowScore(t *testing.T) {
	policy := model.Policy{Name: "p", Thresholds: model.Thresholds{Block: 30, Warn: 60}}
	eval := model.EvaluationResult{Score: 10}

	out := Enforce(policy, eval, "2026-08-03T00:00:00Z")
	if out.Decision != model.DecisionBlock || out.ExitCode != ExitBlock {
		t.Fatalf("expected block/1, got %s/%d", out.Decision, out.ExitCode)
	}
}

func TestEnforceBlocksOnCriticalHitRegardlessOfScore(t *testing.T) {
	policy := model.Policy{Name: "p", Thresholds: model.Thresholds{Block: 30, Warn: 60}}
	eval := model.EvaluationResult{Score: 95, HasCriticalBlock: true, CriticalBlockHit: []string{"secret_aws_access_key"}}

	out := Enforce(policy, eval, "2026-08-03T00:00:00Z")
	if out.Decision != model.DecisionBlock || out.ExitCode != ExitBlock {
		t.Fatalf("expected critical block to override high score, got %s/%d", out.Decision, out.ExitCode)
	}
	if len(out.Reasons) == 0 {
		t.Error("expected at least one reason listing the critical hit")
	}
}
