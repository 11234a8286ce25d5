package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/skillaudit/scanner/analyzer"
	"github.com/skillaudit/scanner/analyzers/cirisk"
	"github.com/skillaudit/scanner/analyzers/dependency"
	"github.com/skillaudit/scanner/analyzers/entrypoint"
	"github.com/skillaudit/scanner/analyzers/secret"
	"github.com/skillaudit/scanner/analyzers/skilldoc"
	"github.com/skillaudit/scanner/analyzers/staticcode"
	"github.com/skillaudit/scanner/enforcer"
	"github.com/skillaudit/scanner/engine"
	"github.com/skillaudit/scanner/ingest"
	"github.com/skillaudit/scanner/internal/logging"
	"github.com/skillaudit/scanner/manifest"
	"github.com/skillaudit/scanner/model"
	"github.com/skillaudit/scanner/oracle"
	"github.com/skillaudit/scanner/policy"
	"github.com/skillaudit/scanner/report"
	"github.com/skillaudit/scanner/trust"
	"github.com/spf13/cobra"
)

var (
	policyPath   string
	outputPath   string
	outputFormat string
	pretty       bool
	debug        bool
	vcsRef       string
	trustedKeys  string
	offline      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <source>",
	Short: "Ingest and audit a skill source: a local directory, a VCS URL, or an archive path",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&policyPath, "policy", "p", "", "path to the policy YAML file (required)")
	scanCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the decision artifact to this path instead of stdout")
	scanCmd.Flags().StringVar(&outputFormat, "format", "json", "report format: json or text")
	scanCmd.Flags().BoolVar(&pretty, "pretty", true, "pretty-print JSON output")
	scanCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	scanCmd.Flags().StringVar(&vcsRef, "ref", "", "branch, tag, or commit to check out for a VCS source")
	scanCmd.Flags().StringVar(&trustedKeys, "trusted-keys", "", "directory of trusted publisher public keys for signature verification")
	scanCmd.Flags().BoolVar(&offline, "offline", false, "skip the dependency vulnerability oracle network lookup")
	_ = scanCmd.MarkFlagRequired("policy")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	logging.Init(debug)
	logger := logging.Logger
	source := args[0]
	start := time.Now()

	pol, err := policy.NewLoader().Load(policyPath)
	if err != nil {
		logger.Errorw("failed to load policy", "path", policyPath, "err", err)
		os.Exit(enforcer.ExitScanFailed)
	}

	logger.Infow("ingesting source", "source", source)
	result, cleanup := ingest.Dispatch(source,
		ingest.VCSOptions{Ref: vcsRef},
		ingest.ArchiveOptions{},
	)
	defer cleanup()

	if !result.Success {
		logger.Errorw("ingest failed", "source", source, "err", result.Err)
		os.Exit(enforcer.ExitScanFailed)
	}
	ingestCtx := result.Context

	var analyzerErrors []string

	orch := analyzer.NewOrchestrator(
		secret.New(),
		staticcode.New(),
		skilldoc.New(),
		entrypoint.New(),
		dependency.New(dependencyOracle()),
		cirisk.New(),
	)

	scanInput := analyzer.ScanInput{
		RootDir: ingestCtx.RootDir,
		Files:   ingestCtx.AbsolutePaths(),
		Policy:  &pol,
	}
	results := orch.Scan(scanInput)
	findings := analyzer.FlattenFindings(results)
	analyzerErrors = append(analyzerErrors, analyzer.ErrorMessages(results)...)

	findings = append(findings, manifestFindings(ingestCtx)...)
	findings = append(findings, trustFindings(ingestCtx, &pol, trustedKeys)...)

	evaluation := engine.Evaluate(pol, findings)
	timestamp := time.Now().UTC().Format(time.RFC3339)
	outcome := enforcer.Enforce(pol, evaluation, timestamp)

	rpt := report.Assemble(report.Input{
		IngestContext: *ingestCtx,
		Findings:      findings,
		Evaluation:    evaluation,
		Decision:      outcome.Decision,
		PolicyName:    pol.Name,
		DurationMS:    time.Since(start).Milliseconds(),
		Errors:        analyzerErrors,
		TimestampUTC:  timestamp,
	})

	if err := writeReport(rpt); err != nil {
		logger.Errorw("failed to write report", "err", err)
		os.Exit(enforcer.ExitScanFailed)
	}

	logger.Infow("scan complete", "decision", outcome.Decision, "score", evaluation.Score, "exitCode", outcome.ExitCode)
	os.Exit(outcome.ExitCode)
	return nil
}

func dependencyOracle() oracle.Oracle {
	if offline {
		return oracle.NewNullOracle()
	}
	return oracle.NewOSVOracle()
}

// manifestFindings reads SKILL.md at the source root, if present, and
// applies the skill-config checks over its declared requirements.
func manifestFindings(ingestCtx *model.IngestContext) []model.Finding {
	for _, f := range ingestCtx.Files {
		if f.Path != "SKILL.md" {
			continue
		}
		content, err := os.ReadFile(f.AbsolutePath)
		if err != nil {
			return nil
		}
		d, err := manifest.Parse(content)
		if err != nil {
			return nil
		}
		return manifest.Check(d, f.Path)
	}
	return nil
}

// trustFindings checks the skill's provenance signature. A policy with
// require_signature set flags an entirely unsigned skill regardless of
// whether a trusted-key directory was configured; verification against a
// keyring only happens when one is.
func trustFindings(ingestCtx *model.IngestContext, pol *model.Policy, keyDir string) []model.Finding {
	if !trust.HasSignatureFile(ingestCtx.RootDir) {
		if !pol.RequireSignature {
			return nil
		}
		return []model.Finding{{
			Analyzer: model.AnalyzerTrust,
			Severity: model.SeverityInfo,
			RuleID:   "trust_unsigned",
			Message:  "policy requires a signed skill but no SKILL.md.sig is present",
			Location: model.Location{File: "SKILL.md.sig", Line: 1},
		}}
	}

	if keyDir == "" {
		return nil
	}

	keyring := trust.NewKeyring()
	if err := keyring.LoadFromDir(keyDir); err != nil {
		return nil
	}
	result := trust.VerifySource(ingestCtx.RootDir, ingestCtx.SourceHash, keyring)
	if !result.Attempted || result.Verified {
		return nil
	}
	return []model.Finding{{
		Analyzer: model.AnalyzerTrust,
		Severity: model.SeverityHigh,
		RuleID:   "trust_signature_invalid",
		Message:  "skill signature present but failed verification: " + result.Reason,
		Location: model.Location{File: "SKILL.md.sig", Line: 1},
	}}
}

func writeReport(rpt model.Report) error {
	var out []byte
	var err error

	switch outputFormat {
	case "text":
		out = []byte(report.FormatText(rpt))
	default:
		out, err = report.Marshal(rpt, pretty)
		if err != nil {
			return err
		}
	}

	// The decision artifact's byte contract forbids a trailing newline
	// (spec §4.9); write exactly what Marshal/FormatText produced, to stdout
	// or to the output file.
	if outputPath == "" {
		fmt.Print(string(out))
		return nil
	}
	return os.WriteFile(outputPath, out, 0o644)
}
