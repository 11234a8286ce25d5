// Package skilldoc implements the skill-doc pattern analyzer: dangerous
// shell commands, suspect URLs, and permission signals embedded in
// markdown documentation shipped alongside a skill.
package skilldoc

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/skillaudit/scanner/analyzer"
	"github.com/skillaudit/scanner/model"
)

var allowlistedHosts = []string{"github.com", "githubusercontent.com", "npmjs.org", "pypi.org"}

var shortenerHosts = []string{"bit.ly", "tinyurl.com", "goo.gl", "t.co", "is.gd", "ow.ly"}

type rule struct {
	id       string
	pattern  *regexp.Regexp
	severity model.Severity
	message  string
}

var shellRules = []rule{
	{"skilldoc_rm_rf_root", regexp.MustCompile(`rm\s+-rf\s+(?:/|~/?|\$HOME/?)(?:[\s;&|)'"` + "`" + `]|$)`), model.SeverityCritical, "recursive delete of a root-level path"},
	{"skilldoc_rm_recursive", regexp.MustCompile(`rm\s+-[rRf]*[rR][rRf]*\s`), model.SeverityHigh, "generic recursive delete"},
	{"skilldoc_sudo", regexp.MustCompile(`\bsudo\b`), model.SeverityMedium, "use of sudo"},
	{"skilldoc_chmod_permissive", regexp.MustCompile(`chmod\s+(777|a\+rwx)\b`), model.SeverityMedium, "overly permissive chmod"},
	{"skilldoc_curl_pipe_shell", regexp.MustCompile(`curl\b[^\n|]*\|\s*(bash|sh|zsh)\b`), model.SeverityCritical, "curl piped directly into a shell"},
	{"skilldoc_wget_pipe_shell", regexp.MustCompile(`wget\b[^\n|]*\|\s*(bash|sh|zsh)\b`), model.SeverityCritical, "wget piped directly into a shell"},
	{"skilldoc_shell_dash_c", regexp.MustCompile(`\b(bash|sh|zsh)\s+-c\s`), model.SeverityMedium, "shell -c invocation"},
	{"skilldoc_dd_command", regexp.MustCompile(`\bdd\s+(if=|of=)`), model.SeverityHigh, "raw disk dd command"},
	{"skilldoc_mkfs", regexp.MustCompile(`\bmkfs[.\w]*\b`), model.SeverityCritical, "filesystem format command"},
}

var homeDirKeywords = regexp.MustCompile(`~/|\$HOME|/home/[^/\s]+`)
var portBindKeywords = regexp.MustCompile(`(?i)\b(port\s*[:=]|bind\(|listen\()`)
var secretEnvVarRef = regexp.MustCompile(`\$(API_KEY|SECRET|TOKEN|PASSWORD|CREDENTIAL|AUTH)\b`)
var sensitivePathRef = regexp.MustCompile(`/etc/passwd|/etc/shadow|/var/log|/proc/`)

var urlPattern = regexp.MustCompile(`https?://([^\s/'">)]+)`)
var dottedQuadHost = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}(:\d+)?$`)

type skillDocAnalyzer struct{}

// New returns the skill-doc analyzer.
func New() analyzer.Analyzer { return skillDocAnalyzer{} }

func (skillDocAnalyzer) Kind() model.AnalyzerKind { return model.AnalyzerSkill }
func (skillDocAnalyzer) Name() string             { return "skill-doc" }

func (skillDocAnalyzer) Scan(input analyzer.ScanInput) ([]model.Finding, error) {
	var findings []model.Finding

	for _, absPath := range input.Files {
		if !strings.EqualFold(filepath.Ext(absPath), ".md") {
			continue
		}
		content, ok := analyzer.ReadCapped(absPath, 0)
		if !ok {
			continue
		}
		rel := analyzer.RelPath(input.RootDir, absPath)

		findings = append(findings, scanShellRules(content, rel)...)
		findings = append(findings, scanURLs(content, rel)...)
		findings = append(findings, scanPermissionSignals(content, rel)...)
	}

	return findings, nil
}

func scanShellRules(content []byte, rel string) []model.Finding {
	var out []model.Finding
	for _, r := range shellRules {
		for _, loc := range r.pattern.FindAllIndex(content, -1) {
			out = append(out, newFinding(r.id, r.severity, r.message, rel, content, loc))
		}
	}
	return out
}

func scanURLs(content []byte, rel string) []model.Finding {
	var out []model.Finding
	for _, loc := range urlPattern.FindAllSubmatchIndex(content, -1) {
		host := string(content[loc[2]:loc[3]])
		host = strings.ToLower(host)
		fullLoc := []int{loc[0], loc[1]}

		if dottedQuadHost.MatchString(strings.SplitN(host, "/", 2)[0]) {
			out = append(out, newFinding("skilldoc_url_dotted_ip", model.SeverityHigh, "direct IPv4 URL", rel, content, fullLoc))
			continue
		}
		if isShortener(host) {
			out = append(out, newFinding("skilldoc_url_shortener", model.SeverityHigh, "URL shortener domain", rel, content, fullLoc))
			continue
		}
		hostOnly := strings.SplitN(host, "/", 2)[0]
		hostOnly = strings.SplitN(hostOnly, ":", 2)[0]
		if len(hostOnly) >= 50 && isBase64ish(hostOnly) {
			out = append(out, newFinding("skilldoc_url_base64_host", model.SeverityHigh, "base64-like host name", rel, content, fullLoc))
			continue
		}
		if !isAllowlisted(hostOnly) {
			out = append(out, newFinding("skilldoc_url_non_allowlisted", model.SeverityMedium, "download from non-allowlisted host", rel, content, fullLoc))
		}
	}
	return out
}

func scanPermissionSignals(content []byte, rel string) []model.Finding {
	var out []model.Finding
	for _, loc := range homeDirKeywords.FindAllIndex(content, -1) {
		out = append(out, newFinding("skilldoc_home_dir_access", model.SeverityMedium, "home-directory access reference", rel, content, loc))
	}
	for _, loc := range portBindKeywords.FindAllIndex(content, -1) {
		out = append(out, newFinding("skilldoc_port_bind", model.SeverityMedium, "port/bind/listen construct", rel, content, loc))
	}
	for _, loc := range secretEnvVarRef.FindAllIndex(content, -1) {
		out = append(out, newFinding("skilldoc_secret_env_reference", model.SeverityHigh, "reference to a secret-shaped environment variable", rel, content, loc))
	}
	for _, loc := range sensitivePathRef.FindAllIndex(content, -1) {
		out = append(out, newFinding("skilldoc_sensitive_path", model.SeverityHigh, "reference to a sensitive system path", rel, content, loc))
	}
	return out
}

func newFinding(id string, sev model.Severity, msg, rel string, content []byte, loc []int) model.Finding {
	evidence := analyzer.TruncateEvidence(string(content[loc[0]:loc[1]]))
	return model.Finding{
		Analyzer: model.AnalyzerSkill,
		Severity: sev,
		RuleID:   id,
		Message:  msg,
		Location: model.Location{File: rel, Line: analyzer.LineAt(content, loc[0])},
		Evidence: evidence,
		Metadata: map[string]string{"category": "skill-doc"},
	}
}

func isAllowlisted(host string) bool {
	for _, h := range allowlistedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func isShortener(host string) bool {
	hostOnly := strings.SplitN(host, "/", 2)[0]
	hostOnly = strings.SplitN(hostOnly, ":", 2)[0]
	for _, h := range shortenerHosts {
		if hostOnly == h {
			return true
		}
	}
	return false
}

func isBase64ish(s string) bool {
	for _, c := range s {
		if !(c >= 'a' && c <= 'z') && !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '+' && c != '/' && c != '=' && c != '-' && c != '_' {
			return false
		}
	}
	return true
}
