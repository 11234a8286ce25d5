package manifest

import (
	"github.com/skillaudit/scanner/model"
)

// deniedBinaries mirrors a small denylist of networking/remote-access
// binaries a skill should not declare as required.
var deniedBinaries = map[string]bool{
	"nc": true, "ncat": true, "netcat": true, "nmap": true,
}

// defaultMaxEgressDomains is the threshold above which a skill's declared
// egress domain count is itself considered a risk signal.
const defaultMaxEgressDomains = 5

// Check evaluates a Descriptor against the skill-level policy signals and
// returns any findings. These are additive to the six pattern analyzers;
// they reason over declared requirements rather than file content.
func Check(d Descriptor, rel string) []model.Finding {
	if !d.HasFrontmatter {
		return nil
	}

	var findings []model.Finding

	for _, bin := range d.RequiredBins {
		if deniedBinaries[bin] {
			findings = append(findings, model.Finding{
				Analyzer: model.AnalyzerSkillConfig,
				Severity: model.SeverityHigh,
				RuleID:   "skill_denied_binary",
				Message:  "skill declares a denied required binary: " + bin,
				Location: model.Location{File: rel, Line: 1},
				Evidence: bin,
				Metadata: map[string]string{"category": "skill-config"},
			})
		}
	}

	if len(d.EgressDomains) > defaultMaxEgressDomains {
		findings = append(findings, model.Finding{
			Analyzer: model.AnalyzerSkillConfig,
			Severity: model.SeverityMedium,
			RuleID:   "skill_excess_egress",
			Message:  "skill declares an unusually large number of egress domains",
			Location: model.Location{File: rel, Line: 1},
			Metadata: map[string]string{"category": "skill-config"},
		})
	}

	return findings
}
