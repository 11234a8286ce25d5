// Package report assembles the Decision Artifact: the canonical,
// reproducible JSON record of a completed scan.
package report

import (
	"bytes"
	"encoding/json"

	"github.com/skillaudit/scanner/masker"
	"github.com/skillaudit/scanner/model"
)

// Input gathers everything the Report Assembler needs to produce a Decision
// Artifact.
type Input struct {
	IngestContext model.IngestContext
	Findings      []model.Finding
	Evaluation    model.EvaluationResult
	Decision      model.Decision
	PolicyName    string
	DurationMS    int64
	Errors        []string
	TimestampUTC  string
}

// Assemble builds a Report from Input, performing a final defense-in-depth
// masking pass over every finding's evidence before serialization.
func Assemble(in Input) model.Report {
	summary := model.SeveritySummary{}
	reportFindings := make([]model.ReportFinding, 0, len(in.Findings))

	for _, f := range in.Findings {
		switch f.Severity {
		case model.SeverityCritical:
			summary.Critical++
		case model.SeverityHigh:
			summary.High++
		case model.SeverityMedium:
			summary.Medium++
		case model.SeverityLow:
			summary.Low++
		case model.SeverityInfo:
			summary.Info++
		}

		reportFindings = append(reportFindings, model.ReportFinding{
			Analyzer: f.Analyzer,
			Severity: f.Severity,
			Rule:     f.RuleID,
			Message:  f.Message,
			Location: f.Location,
			Evidence: masker.Mask(f.Evidence),
			Metadata: f.Metadata,
		})
	}

	return model.Report{
		Version:   model.ReportSchemaVersion,
		Timestamp: in.TimestampUTC,
		Source: model.SourceInfo{
			Type:   in.IngestContext.Metadata.Kind,
			Path:   in.IngestContext.RootDir,
			URL:    in.IngestContext.Metadata.OriginalLocation,
			Commit: in.IngestContext.Metadata.VCSCommit,
			Hash:   in.IngestContext.SourceHash,
		},
		Decision:           in.Decision,
		Score:              in.Evaluation.Score,
		Findings:           reportFindings,
		Summary:            summary,
		CriticalBlockRules: in.Evaluation.CriticalBlockHit,
		DurationMS:         in.DurationMS,
		PolicyName:         in.PolicyName,
		Errors:             in.Errors,
	}
}

// Marshal serializes a Report as canonical JSON: declared key order (the
// field order of model.Report), two-space indent when pretty, compact
// otherwise, UTF-8, no trailing newline.
func Marshal(r model.Report, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return nil, err
	}
	// json.Encoder.Encode always appends a trailing newline; the contract
	// forbids one.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
