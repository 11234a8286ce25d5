// Package staticcode implements the static-code pattern analyzer: dangerous
// API usage, obfuscation, and credential-access patterns across common
// scripting and systems-language source files.
package staticcode

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/skillaudit/scanner/analyzer"
	"github.com/skillaudit/scanner/model"
)

var scopeExtensions = map[string]bool{
	".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".py": true, ".rb": true, ".sh": true, ".bash": true,
	".go": true, ".rs": true,
}

type rule struct {
	id       string
	pattern  *regexp.Regexp
	severity model.Severity
	message  string
	category string // "dangerous_api", "obfuscation", "credential_access"
}

var rules = []rule{
	// Dangerous API
	{"static_eval_usage", regexp.MustCompile(`\beval[\s(]`), model.SeverityHigh, "use of eval", "dangerous_api"},
	{"static_exec_usage", regexp.MustCompile(`\bexec[\s(]`), model.SeverityHigh, "use of exec", "dangerous_api"},
	{"static_child_process", regexp.MustCompile(`child_process`), model.SeverityHigh, "child_process import/require", "dangerous_api"},
	{"static_spawn_family", regexp.MustCompile(`\b(spawn|execSync|execFileSync|spawnSync)\(`), model.SeverityHigh, "process spawn call", "dangerous_api"},
	{"static_destructive_fs", regexp.MustCompile(`\b(writeFileSync|unlinkSync|rmSync|rmdirSync|renameSync)\(`), model.SeverityMedium, "destructive filesystem call", "dangerous_api"},
	{"static_network_fetch", regexp.MustCompile(`\b(fetch|requests\.(get|post|put|delete)|urllib\.request|http\.request)\(`), model.SeverityLow, "network fetch call", "dangerous_api"},

	// Obfuscation
	{"static_base64_decode", regexp.MustCompile(`\b(atob|Buffer\.from\([^)]*base64|base64\.b64decode|base64\.decode)\(`), model.SeverityMedium, "base64 decode primitive", "obfuscation"},
	{"static_fromcharcode", regexp.MustCompile(`String\.fromCharCode\((?:[^)]{40,})\)`), model.SeverityHigh, "long String.fromCharCode argument list", "obfuscation"},
	{"static_hex_escape_run", regexp.MustCompile(`(?:\\x[0-9a-fA-F]{2}){11,}`), model.SeverityMedium, "long run of hex escapes", "obfuscation"},
	{"static_long_line", regexp.MustCompile(`[^\n]{500,}`), model.SeverityLow, "suspiciously long line", "obfuscation"},

	// Credential access
	{"static_ssh_dir", regexp.MustCompile(`~/\.ssh|id_rsa|authorized_keys`), model.SeverityHigh, "reference to SSH credential material", "credential_access"},
	{"static_aws_dir", regexp.MustCompile(`~/\.aws`), model.SeverityHigh, "reference to AWS credential directory", "credential_access"},
	{"static_dotenv", regexp.MustCompile(`\.env\b`), model.SeverityHigh, "reference to .env file", "credential_access"},
	{"static_browser_storage", regexp.MustCompile(`\b(localStorage|sessionStorage|document\.cookie)\b`), model.SeverityHigh, "reference to browser storage", "credential_access"},
	{"static_os_keychain", regexp.MustCompile(`(?i)\b(keychain|keyring)\b`), model.SeverityCritical, "reference to OS keychain/keyring", "credential_access"},
}

type staticAnalyzer struct{}

// New returns the static-code analyzer.
func New() analyzer.Analyzer { return staticAnalyzer{} }

func (staticAnalyzer) Kind() model.AnalyzerKind { return model.AnalyzerStatic }
func (staticAnalyzer) Name() string             { return "static-code" }

func (staticAnalyzer) Scan(input analyzer.ScanInput) ([]model.Finding, error) {
	var findings []model.Finding

	for _, absPath := range input.Files {
		if !scopeExtensions[strings.ToLower(filepath.Ext(absPath))] {
			continue
		}
		content, ok := analyzer.ReadCapped(absPath, 0)
		if !ok {
			continue
		}
		rel := analyzer.RelPath(input.RootDir, absPath)

		for _, r := range rules {
			for _, loc := range r.pattern.FindAllIndex(content, -1) {
				match := string(content[loc[0]:loc[1]])
				findings = append(findings, model.Finding{
					Analyzer: model.AnalyzerStatic,
					Severity: r.severity,
					RuleID:   r.id,
					Message:  r.message,
					Location: model.Location{
						File: rel,
						Line: analyzer.LineAt(content, loc[0]),
					},
					Evidence: analyzer.TruncateEvidence(match),
					Metadata: map[string]string{"category": r.category},
				})
			}
		}
	}

	return findings, nil
}
