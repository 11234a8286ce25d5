// Package cirisk implements the CI-risk pattern analyzer: rules over GitHub
// Actions workflow files and GitLab CI pipeline files.
package cirisk

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/skillaudit/scanner/analyzer"
	"github.com/skillaudit/scanner/model"
)

type ciRiskAnalyzer struct{}

// New returns the CI-risk analyzer.
func New() analyzer.Analyzer { return ciRiskAnalyzer{} }

func (ciRiskAnalyzer) Kind() model.AnalyzerKind { return model.AnalyzerCIRisk }
func (ciRiskAnalyzer) Name() string             { return "ci-risk" }

func (ciRiskAnalyzer) Scan(input analyzer.ScanInput) ([]model.Finding, error) {
	var findings []model.Finding

	for _, absPath := range input.Files {
		rel := analyzer.RelPath(input.RootDir, absPath)
		slash := filepath.ToSlash(rel)

		var kind string
		switch {
		case isWorkflowPath(slash):
			kind = "workflow"
		case strings.HasSuffix(slash, ".gitlab-ci.yml"):
			kind = "gitlab"
		default:
			continue
		}

		content, ok := analyzer.ReadCapped(absPath, 0)
		if !ok {
			continue
		}

		var doc map[string]interface{}
		if err := yaml.Unmarshal(content, &doc); err != nil {
			findings = append(findings, model.Finding{
				Analyzer: model.AnalyzerCIRisk,
				Severity: model.SeverityInfo,
				RuleID:   "ci_parse_error",
				Message:  "failed to parse CI configuration: " + err.Error(),
				Location: model.Location{File: rel, Line: 1},
				Metadata: map[string]string{"category": "ci-risk"},
			})
			continue
		}

		if kind == "workflow" {
			findings = append(findings, scanWorkflow(doc, content, rel)...)
		} else {
			findings = append(findings, scanGitlab(doc, content, rel)...)
		}
	}

	return findings, nil
}

func isWorkflowPath(slash string) bool {
	if !strings.HasPrefix(slash, ".github/workflows/") {
		return false
	}
	return strings.HasSuffix(slash, ".yml") || strings.HasSuffix(slash, ".yaml")
}

var secretEchoPattern = regexp.MustCompile(`echo[^\n]*\$\{\{\s*secrets\.`)
var pipeToShellPattern = regexp.MustCompile(`(curl|wget)\b[^\n|]*\|\s*(bash|sh)\b`)
var shaPinned = regexp.MustCompile(`@[0-9a-fA-F]{40}$`)

func scanWorkflow(doc map[string]interface{}, content []byte, rel string) []model.Finding {
	var out []model.Finding

	if perms, ok := doc["permissions"].(string); ok && perms == "write-all" {
		out = append(out, finding("ci_permissions_write_all", model.SeverityHigh, "workflow requests write-all permissions", rel, 1, "permissions: write-all"))
	}

	if onVal, ok := doc["on"]; ok && hasKey(onVal, "pull_request_target") {
		out = append(out, finding("ci_pull_request_target", model.SeverityHigh, "workflow triggers on pull_request_target", rel, 1, "pull_request_target"))
	}

	jobs := jobsOf(doc)
	for _, jobName := range sortedKeys(jobs) {
		jobMap, ok := jobs[jobName].(map[string]interface{})
		if !ok {
			continue
		}
		steps, _ := jobMap["steps"].([]interface{})
		for _, s := range steps {
			step, ok := s.(map[string]interface{})
			if !ok {
				continue
			}
			if run, ok := step["run"].(string); ok {
				if secretEchoPattern.MatchString(run) {
					out = append(out, finding("ci_secret_exposure", model.SeverityCritical, "step echoes a secret into logs", rel, 1, analyzer.TruncateEvidence(run)))
				}
				if pipeToShellPattern.MatchString(run) {
					out = append(out, finding("ci_pipe_to_shell", model.SeverityHigh, "step pipes a remote download into a shell", rel, 1, analyzer.TruncateEvidence(run)))
				}
			}
			if uses, ok := step["uses"].(string); ok {
				out = append(out, checkUsesPin(uses, rel)...)
			}
		}
	}

	return out
}

func checkUsesPin(uses, rel string) []model.Finding {
	var out []model.Finding
	if !strings.Contains(uses, "@") {
		out = append(out, finding("ci_action_unpinned", model.SeverityMedium, "action reference has no version pin", rel, 1, uses))
		return out
	}
	if strings.HasSuffix(uses, "@main") || strings.HasSuffix(uses, "@master") {
		out = append(out, finding("ci_action_unpinned", model.SeverityMedium, "action pinned to a mutable branch ref", rel, 1, uses))
		return out
	}
	namespace := strings.SplitN(uses, "/", 2)[0]
	if namespace != "actions" && !shaPinned.MatchString(uses) {
		out = append(out, finding("ci_action_third_party_unpinned", model.SeverityMedium, "third-party action not pinned to a commit SHA", rel, 1, uses))
	}
	return out
}

func scanGitlab(doc map[string]interface{}, content []byte, rel string) []model.Finding {
	var out []model.Finding

	if vars, ok := doc["variables"].(map[string]interface{}); ok {
		for _, key := range sortedKeys(vars) {
			str, ok := vars[key].(string)
			if !ok || str == "" {
				continue
			}
			if secretKeyPattern.MatchString(key) {
				out = append(out, finding("ci_gitlab_plaintext_secret", model.SeverityHigh, "plaintext secret-shaped variable "+key, rel, 1, key+"="+analyzer.TruncateEvidence(str)))
			}
		}
	}

	for _, key := range sortedKeys(doc) {
		jobMap, ok := doc[key].(map[string]interface{})
		if !ok {
			continue
		}
		scriptLines, ok := jobMap["script"].([]interface{})
		if !ok {
			continue
		}
		for _, line := range scriptLines {
			str, ok := line.(string)
			if !ok {
				continue
			}
			if pipeToShellPattern.MatchString(str) {
				out = append(out, finding("ci_gitlab_pipe_to_shell", model.SeverityHigh, "job "+key+" pipes a remote download into a shell", rel, 1, analyzer.TruncateEvidence(str)))
			}
		}
	}

	return out
}

var secretKeyPattern = regexp.MustCompile(`(?i)password|secret|token|key|api_key|apikey`)

func jobsOf(doc map[string]interface{}) map[string]interface{} {
	jobs, _ := doc["jobs"].(map[string]interface{})
	return jobs
}

// sortedKeys returns m's keys in sorted order so findings over YAML-decoded
// maps come out in a stable, reproducible order across runs.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hasKey(v interface{}, key string) bool {
	switch m := v.(type) {
	case map[string]interface{}:
		_, ok := m[key]
		return ok
	case string:
		return m == key
	case []interface{}:
		for _, item := range m {
			if s, ok := item.(string); ok && s == key {
				return true
			}
		}
	}
	return false
}

func finding(id string, sev model.Severity, msg, rel string, line int, evidence string) model.Finding {
	return model.Finding{
		Analyzer: model.AnalyzerCIRisk,
		Severity: sev,
		RuleID:   id,
		Message:  msg,
		Location: model.Location{File: rel, Line: line},
		Evidence: analyzer.TruncateEvidence(evidence),
		Metadata: map[string]string{"category": "ci-risk"},
	}
}
