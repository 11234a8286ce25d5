// Package policy loads, validates, and resolves the inheritance chain of
// policy files that the Policy Engine evaluates findings against.
package policy

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/skillaudit/scanner/model"
)

// ValidationError reports every field that failed validation.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	msg := "policy validation failed"
	for _, p := range e.Problems {
		msg += "\n  " + p
	}
	return msg
}

// CycleError reports an extends cycle detected while resolving inheritance.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("policy extends cycle detected: %v", e.Chain)
}

// Loader resolves policy files, caching results by absolute path for the
// duration of a single run.
type Loader struct {
	mu    sync.Mutex
	cache map[string]model.Policy
}

// NewLoader returns a Loader with an empty cache.
func NewLoader() *Loader {
	return &Loader{cache: make(map[string]model.Policy)}
}

// Load resolves the policy at path, following any `extends` chain, validating
// the fully merged result, and caching it keyed by absolute path.
func (l *Loader) Load(path string) (model.Policy, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return model.Policy{}, err
	}

	l.mu.Lock()
	if cached, ok := l.cache[abs]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.mu.Unlock()

	merged, err := l.resolve(abs, nil)
	if err != nil {
		return model.Policy{}, err
	}
	if err := validate(merged); err != nil {
		return model.Policy{}, err
	}

	l.mu.Lock()
	l.cache[abs] = merged
	l.mu.Unlock()

	return merged, nil
}

func (l *Loader) resolve(abs string, chain []string) (model.Policy, error) {
	for _, seen := range chain {
		if seen == abs {
			return model.Policy{}, &CycleError{Chain: append(append([]string{}, chain...), abs)}
		}
	}
	chain = append(chain, abs)

	content, err := os.ReadFile(abs)
	if err != nil {
		return model.Policy{}, fmt.Errorf("policy file not found: %s: %w", abs, err)
	}

	var p model.Policy
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return model.Policy{}, fmt.Errorf("policy yaml syntax error in %s: %w", abs, err)
	}

	if p.Extends == "" {
		return p, nil
	}

	parentPath := p.Extends
	if !filepath.IsAbs(parentPath) {
		parentPath = filepath.Join(filepath.Dir(abs), parentPath)
	}
	parent, err := l.resolve(parentPath, chain)
	if err != nil {
		return model.Policy{}, err
	}

	return merge(parent, p), nil
}

func merge(parent, child model.Policy) model.Policy {
	out := parent

	if child.Version != "" {
		out.Version = child.Version
	}
	if child.Name != "" {
		out.Name = child.Name
	}
	if child.Description != "" {
		out.Description = child.Description
	}
	out.Extends = ""

	if child.Thresholds.Block != 0 {
		out.Thresholds.Block = child.Thresholds.Block
	}
	if child.Thresholds.Warn != 0 {
		out.Thresholds.Warn = child.Thresholds.Warn
	}

	out.CriticalBlock = unionStrings(parent.CriticalBlock, child.CriticalBlock)

	out.Rules = make(map[string]model.RuleDefinition, len(parent.Rules)+len(child.Rules))
	for k, v := range parent.Rules {
		out.Rules[k] = v
	}
	for k, v := range child.Rules {
		out.Rules[k] = v
	}

	out.Exceptions = append(append([]model.Exception{}, parent.Exceptions...), child.Exceptions...)

	out.RequireSignature = parent.RequireSignature || child.RequireSignature

	return out
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

var versionPattern = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

func validate(p model.Policy) error {
	var problems []string

	if p.Thresholds.Block > p.Thresholds.Warn {
		problems = append(problems, "thresholds: block must be <= warn")
	}
	if len(p.Name) < 1 || len(p.Name) > 50 {
		problems = append(problems, "name: must be 1-50 characters")
	}
	if !versionPattern.MatchString(p.Version) {
		problems = append(problems, "version: must match \\d+.\\d+(.\\d+)?")
	}
	for id, r := range p.Rules {
		if r.Message == "" {
			problems = append(problems, fmt.Sprintf("rules.%s.message: must be non-empty", id))
		}
	}
	for i, exc := range p.Exceptions {
		if exc.PathPattern == "" {
			problems = append(problems, fmt.Sprintf("exceptions[%d].pattern: must be non-empty", i))
		}
		if len(exc.SuppressedRuleIDs) == 0 {
			problems = append(problems, fmt.Sprintf("exceptions[%d].ignore: must have at least one rule id", i))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
