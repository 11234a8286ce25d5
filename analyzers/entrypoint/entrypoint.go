// Package entrypoint implements the entrypoint pattern analyzer: rules keyed
// on well-known install/build entrypoint file paths, plus a handful of
// universal shell-execution rules applied to every file.
package entrypoint

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/skillaudit/scanner/analyzer"
	"github.com/skillaudit/scanner/model"
)

var universalRules = []struct {
	id       string
	pattern  *regexp.Regexp
	severity model.Severity
	message  string
}{
	{"entrypoint_curl_pipe_shell", regexp.MustCompile(`curl\b[^\n|]*\|\s*(bash|sh|zsh)\b`), model.SeverityCritical, "curl piped directly into a shell"},
	{"entrypoint_wget_pipe_shell", regexp.MustCompile(`wget\b[^\n|]*\|\s*(bash|sh|zsh)\b`), model.SeverityCritical, "wget piped directly into a shell"},
	{"entrypoint_python_inline_exec", regexp.MustCompile(`python3?\s+-c\s+['"].*(urllib|requests).*exec.*['"]`), model.SeverityCritical, "inline python one-liner fetching and executing code"},
}

var setupPyPresence = regexp.MustCompile(`\bsetup\(|install_requires`)
var setupPyCmdclass = regexp.MustCompile(`cmdclass\s*=\s*\{`)
var makefileInstallTarget = regexp.MustCompile(`(?m)^install\s*:`)
var makefileAllTarget = regexp.MustCompile(`(?m)^all\s*:`)
var dockerfileRun = regexp.MustCompile(`(?m)^RUN\s`)
var dockerfileEntrypoint = regexp.MustCompile(`(?m)^ENTRYPOINT\s`)

var shellEntrypointNames = map[string]bool{
	"install.sh": true, "setup.sh": true, "bootstrap.sh": true,
}

type npmPackageJSON struct {
	Scripts map[string]string `json:"scripts"`
}

var npmLifecycleScripts = []struct {
	name     string
	severity model.Severity
}{
	{"postinstall", model.SeverityHigh},
	{"preinstall", model.SeverityHigh},
	{"prepare", model.SeverityMedium},
	{"prepublish", model.SeverityMedium},
}

type entrypointAnalyzer struct{}

// New returns the entrypoint analyzer.
func New() analyzer.Analyzer { return entrypointAnalyzer{} }

func (entrypointAnalyzer) Kind() model.AnalyzerKind { return model.AnalyzerEntrypoint }
func (entrypointAnalyzer) Name() string             { return "entrypoint" }

func (entrypointAnalyzer) Scan(input analyzer.ScanInput) ([]model.Finding, error) {
	var findings []model.Finding

	for _, absPath := range input.Files {
		content, ok := analyzer.ReadCapped(absPath, 0)
		if !ok {
			continue
		}
		rel := analyzer.RelPath(input.RootDir, absPath)
		base := filepath.Base(absPath)

		switch {
		case base == "package.json":
			findings = append(findings, scanPackageJSON(content, rel)...)
		case base == "setup.py":
			findings = append(findings, scanSetupPy(content, rel)...)
		case strings.EqualFold(base, "Makefile"):
			findings = append(findings, scanMakefile(content, rel)...)
		case shellEntrypointNames[strings.ToLower(base)]:
			findings = append(findings, scanShellEntrypoint(content, rel)...)
		case base == "Dockerfile":
			findings = append(findings, scanDockerfile(content, rel)...)
		}

		for _, r := range universalRules {
			for _, loc := range r.pattern.FindAllIndex(content, -1) {
				findings = append(findings, newFinding(r.id, r.severity, r.message, rel, content, loc))
			}
		}
	}

	return findings, nil
}

func scanPackageJSON(content []byte, rel string) []model.Finding {
	var pkg npmPackageJSON
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil
	}
	var out []model.Finding
	for _, s := range npmLifecycleScripts {
		value, present := pkg.Scripts[s.name]
		if !present {
			continue
		}
		out = append(out, model.Finding{
			Analyzer: model.AnalyzerEntrypoint,
			Severity: s.severity,
			RuleID:   "entrypoint_npm_" + s.name,
			Message:  "package.json defines a " + s.name + " lifecycle script",
			Location: model.Location{File: rel, Line: 1},
			Evidence: analyzer.TruncateEvidence(value),
			Metadata: map[string]string{"category": "entrypoint"},
		})
	}
	return out
}

func scanSetupPy(content []byte, rel string) []model.Finding {
	var out []model.Finding
	if loc := setupPyPresence.FindIndex(content); loc != nil {
		out = append(out, newFinding("entrypoint_setup_py_install", model.SeverityMedium, "setup.py defines an install routine", rel, content, loc))
	}
	if loc := setupPyCmdclass.FindIndex(content); loc != nil {
		out = append(out, newFinding("entrypoint_setup_py_cmdclass", model.SeverityHigh, "setup.py overrides install cmdclass", rel, content, loc))
	}
	return out
}

func scanMakefile(content []byte, rel string) []model.Finding {
	var out []model.Finding
	if loc := makefileInstallTarget.FindIndex(content); loc != nil {
		out = append(out, newFinding("entrypoint_makefile_install", model.SeverityMedium, "Makefile defines an install target", rel, content, loc))
	}
	if loc := makefileAllTarget.FindIndex(content); loc != nil {
		out = append(out, newFinding("entrypoint_makefile_all", model.SeverityLow, "Makefile defines an all target", rel, content, loc))
	}
	return out
}

func scanShellEntrypoint(content []byte, rel string) []model.Finding {
	if len(strings.TrimSpace(string(content))) == 0 {
		return nil
	}
	end := 1
	if len(content) < end {
		end = len(content)
	}
	return []model.Finding{newFinding("entrypoint_shell_script", model.SeverityHigh, "non-empty install/setup/bootstrap shell script", rel, content, []int{0, end})}
}

func scanDockerfile(content []byte, rel string) []model.Finding {
	var out []model.Finding
	for _, loc := range dockerfileRun.FindAllIndex(content, -1) {
		out = append(out, newFinding("entrypoint_dockerfile_run", model.SeverityMedium, "Dockerfile RUN instruction", rel, content, loc))
	}
	for _, loc := range dockerfileEntrypoint.FindAllIndex(content, -1) {
		out = append(out, newFinding("entrypoint_dockerfile_entrypoint", model.SeverityMedium, "Dockerfile ENTRYPOINT instruction", rel, content, loc))
	}
	return out
}

func newFinding(id string, sev model.Severity, msg, rel string, content []byte, loc []int) model.Finding {
	return model.Finding{
		Analyzer: model.AnalyzerEntrypoint,
		Severity: sev,
		RuleID:   id,
		Message:  msg,
		Location: model.Location{File: rel, Line: analyzer.LineAt(content, loc[0])},
		Evidence: analyzer.TruncateEvidence(string(content[loc[0]:loc[1]])),
		Metadata: map[string]string{"category": "entrypoint"},
	}
}
