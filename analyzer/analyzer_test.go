package analyzer

import (
	"errors"
	"testing"

	"github.com/skillaudit/scanner/model"
)

type fakeAnalyzer struct {
	kind    model.AnalyzerKind
	name    string
	results []model.Finding
	err     error
	panics  bool
}

func (f fakeAnalyzer) Kind() model.AnalyzerKind { return f.kind }
func (f fakeAnalyzer) Name() string             { return f.name }
func (f fakeAnalyzer) Scan(ScanInput) ([]model.Finding, error) {
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestOrchestratorRegistrationOrder(t *testing.T) {
	a1 := fakeAnalyzer{kind: "a", name: "first"}
	a2 := fakeAnalyzer{kind: "b", name: "second"}
	o := NewOrchestrator(a1, a2)

	results := o.Scan(ScanInput{})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "first" || results[1].Name != "second" {
		t.Fatalf("expected registration order preserved, got %s, %s", results[0].Name, results[1].Name)
	}
}

func TestOrchestratorFailureIsolation(t *testing.T) {
	good := fakeAnalyzer{kind: "good", name: "good", results: []model.Finding{{RuleID: "x"}}}
	bad := fakeAnalyzer{kind: "bad", name: "bad", err: errors.New("kaboom")}
	o := NewOrchestrator(good, bad)

	results := o.Scan(ScanInput{})
	var goodResult, badResult Result
	for _, r := range results {
		if r.Name == "good" {
			goodResult = r
		}
		if r.Name == "bad" {
			badResult = r
		}
	}

	if len(goodResult.Findings) != 1 {
		t.Errorf("expected unaffected analyzer to keep its finding, got %v", goodResult.Findings)
	}
	if badResult.ErrorMsg == "" {
		t.Error("expected error message for failing analyzer")
	}
	if len(badResult.Findings) != 0 {
		t.Errorf("expected empty findings for failing analyzer, got %v", badResult.Findings)
	}
}

func TestOrchestratorPanicIsolation(t *testing.T) {
	good := fakeAnalyzer{kind: "good", name: "good", results: []model.Finding{{RuleID: "x"}}}
	panicky := fakeAnalyzer{kind: "panicky", name: "panicky", panics: true}
	o := NewOrchestrator(panicky, good)

	results := o.Scan(ScanInput{})
	if results[0].ErrorMsg == "" {
		t.Error("expected panic to be converted into an error message")
	}
	if len(results[1].Findings) != 1 {
		t.Error("expected the other analyzer to be unaffected by the panic")
	}
}

func TestFlattenFindingsPreservesOrder(t *testing.T) {
	a1 := fakeAnalyzer{kind: "a", name: "a", results: []model.Finding{{RuleID: "r1"}, {RuleID: "r2"}}}
	a2 := fakeAnalyzer{kind: "b", name: "b", results: []model.Finding{{RuleID: "r3"}}}
	o := NewOrchestrator(a1, a2)

	flat := FlattenFindings(o.Scan(ScanInput{}))
	if len(flat) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(flat))
	}
	if flat[0].RuleID != "r1" || flat[1].RuleID != "r2" || flat[2].RuleID != "r3" {
		t.Errorf("unexpected order: %+v", flat)
	}
}

func TestErrorMessagesCollectsFailures(t *testing.T) {
	good := fakeAnalyzer{kind: "good", name: "good"}
	bad := fakeAnalyzer{kind: "bad", name: "bad", err: errors.New("nope")}
	o := NewOrchestrator(good, bad)

	errs := ErrorMessages(o.Scan(ScanInput{}))
	if len(errs) != 1 {
		t.Fatalf("expected 1 error message, got %v", errs)
	}
}
