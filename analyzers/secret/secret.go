// Package secret implements the secret-shaped pattern analyzer: it scans
// every file in the file set for credential-shaped substrings.
package secret

import (
	"regexp"

	"github.com/skillaudit/scanner/analyzer"
	"github.com/skillaudit/scanner/masker"
	"github.com/skillaudit/scanner/model"
)

// maxScanBytes bounds how much of a file is scanned for secrets.
const maxScanBytes = 1 * 1024 * 1024

type rule struct {
	id       string
	pattern  *regexp.Regexp
	severity model.Severity
	message  string
	// sensitive rules mask their evidence before attachment.
	sensitive bool
}

var rules = []rule{
	{
		id:       "secret_aws_access_key",
		pattern:  regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		severity: model.SeverityCritical,
		message:  "AWS access key id found",
		sensitive: true,
	},
	{
		id:       "secret_aws_secret_key",
		pattern:  regexp.MustCompile(`(?:[^A-Za-z0-9+/=]|^)([A-Za-z0-9+/]{40})(?:[^A-Za-z0-9+/=]|$)`),
		severity: model.SeverityCritical,
		message:  "possible AWS secret access key found",
		sensitive: true,
	},
	{
		id:       "secret_github_token",
		pattern:  regexp.MustCompile(`gh[posur]_[a-zA-Z0-9]{36}`),
		severity: model.SeverityCritical,
		message:  "GitHub token found",
		sensitive: true,
	},
	{
		id:       "secret_openai_key",
		pattern:  regexp.MustCompile(`sk-(?:[A-Za-z0-9]{20,})`),
		severity: model.SeverityCritical,
		message:  "OpenAI-style API key found",
		sensitive: true,
	},
	{
		id:       "secret_anthropic_key",
		pattern:  regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{95}`),
		severity: model.SeverityCritical,
		message:  "Anthropic API key found",
		sensitive: true,
	},
	{
		id:       "secret_pem_private_key",
		pattern:  regexp.MustCompile(`(?s)-----BEGIN [A-Z ]*PRIVATE KEY-----.*?-----END [A-Z ]*PRIVATE KEY-----`),
		severity: model.SeverityCritical,
		message:  "PEM private key block found",
		sensitive: true,
	},
	{
		id:       "secret_password_in_url",
		pattern:  regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^\s:/@'"]+:[^\s:/@'"]+@`),
		severity: model.SeverityHigh,
		message:  "credentials embedded in URL",
		sensitive: true,
	},
	{
		id:       "secret_generic_api_key",
		pattern:  regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*['"]?([A-Za-z0-9_-]{20,})['"]?`),
		severity: model.SeverityHigh,
		message:  "generic API key assignment found",
		sensitive: true,
	},
	{
		id:       "secret_jwt",
		pattern:  regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
		severity: model.SeverityHigh,
		message:  "JWT token found",
		sensitive: true,
	},
}

type secretAnalyzer struct{}

// New returns the secret analyzer.
func New() analyzer.Analyzer { return secretAnalyzer{} }

func (secretAnalyzer) Kind() model.AnalyzerKind { return model.AnalyzerSecret }
func (secretAnalyzer) Name() string             { return "secret" }

func (secretAnalyzer) Scan(input analyzer.ScanInput) ([]model.Finding, error) {
	var findings []model.Finding

	for _, absPath := range input.Files {
		content, ok := analyzer.ReadCapped(absPath, maxScanBytes)
		if !ok {
			continue
		}
		rel := analyzer.RelPath(input.RootDir, absPath)

		for _, r := range rules {
			for _, loc := range r.pattern.FindAllIndex(content, -1) {
				match := string(content[loc[0]:loc[1]])
				evidence := analyzer.TruncateEvidence(match)
				if r.sensitive {
					evidence = masker.Mask(evidence)
				}
				findings = append(findings, model.Finding{
					Analyzer: model.AnalyzerSecret,
					Severity: r.severity,
					RuleID:   r.id,
					Message:  r.message,
					Location: model.Location{
						File: rel,
						Line: analyzer.LineAt(content, loc[0]),
					},
					Evidence: evidence,
					Metadata: map[string]string{"category": "secret"},
				})
			}
		}
	}

	return findings, nil
}
