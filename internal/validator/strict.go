package validator

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// strictTool is the EBI vcf_validator binary, supporting VCF 4.1-4.3.
const strictTool = "vcf_validator"

// StrictValidator runs vcf_validator with error-level logging. The tool
// writes its own report file and announces the path and a final status
// in its [info] output.
type StrictValidator struct {
	runner commandRunner
	logger *zap.Logger
}

// NewStrictValidator creates a validator for VCF versions >= 4.1.
func NewStrictValidator(opts Options) *StrictValidator {
	return &StrictValidator{
		runner: &execRunner{workDir: opts.WorkDir, timeout: opts.Timeout, logger: opts.logger()},
		logger: opts.logger(),
	}
}

// Name returns the external tool name.
func (v *StrictValidator) Name() string { return strictTool }

// Validate runs the tool against vcfPath, operating directly on the
// possibly-compressed file, and interprets its output.
func (v *StrictValidator) Validate(ctx context.Context, vcfPath, outDir string) (*Report, error) {
	retained, _, err := v.runner.run(ctx, strictTool, "-i", vcfPath, "-l", "error")
	if err != nil {
		return nil, err
	}

	report, ok := parseStrictOutput(retained)
	if !ok {
		// Output did not match the expected shape. For a valid
		// low-version file this is expected; fall back to the
		// diagnostics-or-silence interpretation.
		v.logger.Debug("strict validator output did not match expected shape",
			zap.Int("retained_lines", len(retained)))
		return interpretSilentTool(strictTool, vcfPath, outDir, retained)
	}

	if err := ensureReportExists(report.ReportPath); err != nil {
		return nil, err
	}

	if report.Outcome != Pass {
		return report, &ValidationError{Tool: strictTool, Output: retained}
	}

	return report, nil
}

// parseStrictOutput interprets vcf_validator's [info] lines. The tool
// announces its report path on the second retained line (token 6, space
// separated) and a final status on the third (tokens 9 onward join to
// "isvalid" for a valid file). Returns ok=false when the output does
// not have that shape.
func parseStrictOutput(retained []string) (*Report, bool) {
	if len(retained) < 3 || !strings.HasPrefix(retained[0], infoMarker) {
		return nil, false
	}

	pathTokens := strings.Split(retained[1], " ")
	if len(pathTokens) < 7 {
		return nil, false
	}
	reportPath := strings.TrimRight(pathTokens[6], "\n")

	statusTokens := strings.Split(retained[2], " ")
	if len(statusTokens) < 10 {
		return nil, false
	}
	status := strings.TrimRight(strings.Join(statusTokens[9:], ""), "\n")

	report := &Report{
		Outcome:     Fail,
		ReportPath:  reportPath,
		Diagnostics: retained,
	}
	if status == "isvalid" {
		report.Outcome = Pass
	}

	return report, true
}
