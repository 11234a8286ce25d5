package report

import (
	"fmt"
	"strings"

	"github.com/skillaudit/scanner/model"
)

// FormatText renders a Report as human-readable plain text. It is a
// convenience view over an already-masked Report; it carries no additional
// data. The CLI's --format text writes it in place of the JSON report.
func FormatText(r model.Report) string {
	var b strings.Builder

	b.WriteString("Skill Audit Report\n")
	b.WriteString("===================\n")
	fmt.Fprintf(&b, "Source:   %s (%s)\n", r.Source.Path, r.Source.Type)
	fmt.Fprintf(&b, "Policy:   %s\n", r.PolicyName)
	fmt.Fprintf(&b, "Decision: %s (score %d/100)\n", strings.ToUpper(string(r.Decision)), r.Score)
	fmt.Fprintf(&b, "Duration: %dms\n", r.DurationMS)

	b.WriteString("\nSeverity summary:\n")
	fmt.Fprintf(&b, "  critical=%d high=%d medium=%d low=%d info=%d\n",
		r.Summary.Critical, r.Summary.High, r.Summary.Medium, r.Summary.Low, r.Summary.Info)

	if len(r.CriticalBlockRules) > 0 {
		b.WriteString("\nCritical-block rules triggered:\n")
		for _, id := range r.CriticalBlockRules {
			fmt.Fprintf(&b, "  - %s\n", id)
		}
	}

	if len(r.Findings) > 0 {
		b.WriteString("\nFindings:\n")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "  [%-8s] %-32s %s:%d %s\n",
				strings.ToUpper(string(f.Severity)), f.Rule, f.Location.File, f.Location.Line, f.Message)
		}
	} else {
		b.WriteString("\nFindings: none\n")
	}

	if len(r.Errors) > 0 {
		b.WriteString("\nAnalyzer errors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	return b.String()
}
