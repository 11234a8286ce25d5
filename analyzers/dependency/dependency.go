// Package dependency implements the dependency pattern analyzer: manifest
// parsing, lockfile-presence checks, and an optional vulnerability probe
// against a configured oracle.
package dependency

import (
	"context"
	"encoding/json"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/skillaudit/scanner/analyzer"
	"github.com/skillaudit/scanner/model"
	"github.com/skillaudit/scanner/oracle"
)

type dep struct {
	name    string
	version string
}

type manifestKind struct {
	fileName     string
	ecosystem    string
	lockFileName string
	parse        func(content []byte) ([]dep, error)
}

var manifests = []manifestKind{
	{"package.json", "npm", "package-lock.json", parseNpm},
	{"requirements.txt", "PyPI", "", parsePip},
	{"go.mod", "Go", "go.sum", parseGoMod},
	{"Cargo.toml", "crates.io", "Cargo.lock", parseCargo},
}

type dependencyAnalyzer struct {
	oracle oracle.Oracle
}

// New returns the dependency analyzer. A nil oracle disables the
// vulnerability probe step.
func New(o oracle.Oracle) analyzer.Analyzer {
	return dependencyAnalyzer{oracle: o}
}

func (dependencyAnalyzer) Kind() model.AnalyzerKind { return model.AnalyzerDependency }
func (dependencyAnalyzer) Name() string             { return "dependency" }

func (a dependencyAnalyzer) Scan(input analyzer.ScanInput) ([]model.Finding, error) {
	var findings []model.Finding
	fileSet := make(map[string]bool, len(input.Files))
	for _, f := range input.Files {
		fileSet[f] = true
	}

	for _, absPath := range input.Files {
		base := filepath.Base(absPath)
		var mk *manifestKind
		for i := range manifests {
			if manifests[i].fileName == base {
				mk = &manifests[i]
				break
			}
		}
		if mk == nil {
			continue
		}

		content, ok := analyzer.ReadCapped(absPath, 0)
		if !ok {
			continue
		}
		rel := analyzer.RelPath(input.RootDir, absPath)

		deps, err := mk.parse(content)
		if err != nil {
			findings = append(findings, model.Finding{
				Analyzer: model.AnalyzerDependency,
				Severity: model.SeverityInfo,
				RuleID:   "dependency_parse_error",
				Message:  "failed to parse dependency manifest: " + err.Error(),
				Location: model.Location{File: rel, Line: 1},
				Metadata: map[string]string{"category": "dependency"},
			})
			continue
		}

		if mk.lockFileName != "" {
			lockPath := filepath.Join(filepath.Dir(absPath), mk.lockFileName)
			if !fileSet[lockPath] {
				findings = append(findings, model.Finding{
					Analyzer: model.AnalyzerDependency,
					Severity: model.SeverityMedium,
					RuleID:   "dependency_no_lockfile",
					Message:  "no lockfile found for " + base,
					Location: model.Location{File: rel, Line: 1},
					Metadata: map[string]string{"category": "dependency"},
				})
			}
		}

		if a.oracle != nil {
			findings = append(findings, a.probeVulnerabilities(mk.ecosystem, deps, rel)...)
		}
	}

	return findings, nil
}

func (a dependencyAnalyzer) probeVulnerabilities(ecosystem string, deps []dep, rel string) []model.Finding {
	var out []model.Finding
	for _, d := range deps {
		version := normalizeVersion(d.version)
		if version == "" {
			continue
		}
		vulns := a.oracle.Lookup(context.Background(), ecosystem, d.name, version)
		for _, v := range vulns {
			out = append(out, model.Finding{
				Analyzer: model.AnalyzerDependency,
				Severity: severityFromCVSS(v),
				RuleID:   "dependency_vuln_" + sanitizeID(v.ID),
				Message:  d.name + "@" + version + ": " + v.Summary,
				Location: model.Location{File: rel, Line: 1},
				Metadata: map[string]string{"category": "dependency", "dependency": d.name, "vulnerability_id": v.ID},
			})
		}
	}
	return out
}

func severityFromCVSS(v oracle.Vulnerability) model.Severity {
	if !v.HasScore {
		return model.SeverityInfo
	}
	switch {
	case v.CVSSScore >= 9.0:
		return model.SeverityCritical
	case v.CVSSScore >= 7.0:
		return model.SeverityHigh
	case v.CVSSScore >= 4.0:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9_]`)

func sanitizeID(id string) string {
	return nonAlnum.ReplaceAllString(id, "_")
}

// normalizeVersion strips common version-spec prefixes and skips wildcards,
// returning "" when no concrete version can be resolved.
func normalizeVersion(v string) string {
	v = strings.TrimSpace(v)
	for _, prefix := range []string{"^", "~", ">=", "<=", ">", "<", "=", "~>"} {
		v = strings.TrimPrefix(v, prefix)
	}
	v = strings.TrimSpace(v)
	if v == "" || strings.Contains(v, "*") || v == "latest" {
		return ""
	}
	return v
}

func parseNpm(content []byte) ([]dep, error) {
	var doc struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	var out []dep
	for _, name := range sortedKeys(doc.Dependencies) {
		out = append(out, dep{name: name, version: doc.Dependencies[name]})
	}
	for _, name := range sortedKeys(doc.DevDependencies) {
		out = append(out, dep{name: name, version: doc.DevDependencies[name]})
	}
	return out, nil
}

// sortedKeys returns m's keys in sorted order so dependency findings come
// out in a stable, reproducible order across runs of the same manifest.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func parsePip(content []byte) ([]dep, error) {
	var out []dep
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, ver := splitPipRequirement(line)
		out = append(out, dep{name: name, version: ver})
	}
	return out, nil
}

var pipOperators = []string{"==", ">=", "<=", "!=", "~=", ">", "<"}

func splitPipRequirement(line string) (string, string) {
	for _, op := range pipOperators {
		if idx := strings.Index(line, op); idx != -1 {
			return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+len(op):])
		}
	}
	return line, ""
}

var goModRequireLine = regexp.MustCompile(`(?m)^[ \t]*require[ \t]+([^\s(]\S*)[ \t]+(\S+)`)
var goModBlockLine = regexp.MustCompile(`(?m)^\s*(\S+)\s+(v\S+)`)

func parseGoMod(content []byte) ([]dep, error) {
	seen := make(map[string]bool)
	var out []dep
	add := func(name, ver string) {
		key := name + "@" + ver
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, dep{name: name, version: ver})
	}

	for _, m := range goModRequireLine.FindAllSubmatch(content, -1) {
		add(string(m[1]), string(m[2]))
	}

	inBlock := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "require ("):
			inBlock = true
			continue
		case inBlock && trimmed == ")":
			inBlock = false
			continue
		case inBlock:
			if m := goModBlockLine.FindStringSubmatch(trimmed); m != nil {
				add(m[1], m[2])
			}
		}
	}
	return out, nil
}

func parseCargo(content []byte) ([]dep, error) {
	var out []dep
	inSection := false
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") {
			inSection = trimmed == "[dependencies]"
			continue
		}
		if !inSection || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		idx := strings.Index(trimmed, "=")
		if idx == -1 {
			continue
		}
		name := strings.TrimSpace(trimmed[:idx])
		rest := strings.TrimSpace(trimmed[idx+1:])
		var version string
		if strings.HasPrefix(rest, "{") {
			if vIdx := strings.Index(rest, `version`); vIdx != -1 {
				tail := rest[vIdx:]
				if q1 := strings.Index(tail, `"`); q1 != -1 {
					if q2 := strings.Index(tail[q1+1:], `"`); q2 != -1 {
						version = tail[q1+1 : q1+1+q2]
					}
				}
			}
		} else {
			version = strings.Trim(rest, `"`)
		}
		out = append(out, dep{name: name, version: version})
	}
	return out, nil
}
