// Package analyzer defines the analyzer contract and the parallel
// orchestrator that runs a registered set of analyzers with per-analyzer
// failure isolation and timing.
package analyzer

import (
	"sync"
	"time"

	"github.com/skillaudit/scanner/model"
)

// ScanInput is what every analyzer receives. Files is the full file set;
// each analyzer applies its own path predicate internally.
type ScanInput struct {
	RootDir string
	Files   []string // absolute paths, in walker order
	Policy  *model.Policy
}

// Analyzer is the contract every pattern analyzer implements.
type Analyzer interface {
	Kind() model.AnalyzerKind
	Name() string
	Scan(input ScanInput) ([]model.Finding, error)
}

// Result is the outcome of running one analyzer: its findings (empty on
// failure), timing, and an error message (empty on success). Exactly one
// analyzer's failure never aborts the pipeline or other analyzers.
type Result struct {
	Kind       model.AnalyzerKind
	Name       string
	Findings   []model.Finding
	DurationMS int64
	ErrorMsg   string
}

// runOne executes a single analyzer, converting any returned error into a
// Result with empty findings and a non-empty ErrorMsg, and measuring
// wall-clock duration regardless of outcome.
func runOne(a Analyzer, input ScanInput) (result Result) {
	start := time.Now()
	defer func() {
		result.DurationMS = time.Since(start).Milliseconds()
		if r := recover(); r != nil {
			result = Result{
				Kind:       a.Kind(),
				Name:       a.Name(),
				Findings:   []model.Finding{},
				DurationMS: result.DurationMS,
				ErrorMsg:   panicMessage(r),
			}
		}
	}()

	findings, err := a.Scan(input)
	if err != nil {
		return Result{
			Kind:     a.Kind(),
			Name:     a.Name(),
			Findings: []model.Finding{},
			ErrorMsg: err.Error(),
		}
	}
	return Result{
		Kind:     a.Kind(),
		Name:     a.Name(),
		Findings: findings,
	}
}

func panicMessage(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return "panic: " + toString(r)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return "non-string panic value"
}

// Orchestrator holds a registered set of analyzers. Registration order is
// the canonical order for outputs.
type Orchestrator struct {
	analyzers []Analyzer
}

// NewOrchestrator creates an Orchestrator with the given analyzers,
// preserving the order they're passed in.
func NewOrchestrator(analyzers ...Analyzer) *Orchestrator {
	return &Orchestrator{analyzers: append([]Analyzer(nil), analyzers...)}
}

// Scan runs all registered analyzers concurrently and awaits all of them.
// It returns per-analyzer results in registration order regardless of
// finish order.
func (o *Orchestrator) Scan(input ScanInput) []Result {
	results := make([]Result, len(o.analyzers))

	var wg sync.WaitGroup
	wg.Add(len(o.analyzers))
	for i, a := range o.analyzers {
		i, a := i, a
		go func() {
			defer wg.Done()
			results[i] = runOne(a, input)
		}()
	}
	wg.Wait()

	return results
}

// FlattenFindings concatenates each analyzer's findings in orchestrator
// order; relative order of findings within an analyzer is preserved.
func FlattenFindings(results []Result) []model.Finding {
	var all []model.Finding
	for _, r := range results {
		all = append(all, r.Findings...)
	}
	return all
}

// ErrorMessages collects the non-empty error messages across results, in
// orchestrator order, for the report's errors[] field.
func ErrorMessages(results []Result) []string {
	var errs []string
	for _, r := range results {
		if r.ErrorMsg != "" {
			errs = append(errs, r.Name+": "+r.ErrorMsg)
		}
	}
	return errs
}
