package validator

import (
	"context"

	"go.uber.org/zap"
)

// legacyTool is the vcftools vcf-validator script, tolerant of the
// older 4.0 spec. It prints diagnostics only on failure and nothing at
// all on success.
const legacyTool = "vcf-validator"

// LegacyValidator runs vcf-validator for VCF 4.0 files.
type LegacyValidator struct {
	runner commandRunner
	logger *zap.Logger
}

// NewLegacyValidator creates a validator for 4.0 <= version < 4.1.
func NewLegacyValidator(opts Options) *LegacyValidator {
	return &LegacyValidator{
		runner: &execRunner{workDir: opts.WorkDir, timeout: opts.Timeout, logger: opts.logger()},
		logger: opts.logger(),
	}
}

// Name returns the external tool name.
func (v *LegacyValidator) Name() string { return legacyTool }

// Validate runs the tool and interprets its report-only-on-failure
// convention.
func (v *LegacyValidator) Validate(ctx context.Context, vcfPath, outDir string) (*Report, error) {
	retained, _, err := v.runner.run(ctx, legacyTool, vcfPath)
	if err != nil {
		return nil, err
	}

	return interpretSilentTool(legacyTool, vcfPath, outDir, retained)
}

// interpretSilentTool handles tools that report only on failure:
// captured diagnostics mean the file is invalid, no output at all means
// it validated cleanly. Either way a report file is materialized in
// outDir; on failure the report is returned alongside the error so the
// caller still knows where the diagnostics landed.
func interpretSilentTool(tool, vcfPath, outDir string, retained []string) (*Report, error) {
	if len(retained) > 0 {
		path, err := writeDiagnosticsReport(outDir, retained)
		if err != nil {
			return nil, err
		}
		report := &Report{Outcome: Fail, ReportPath: path, Diagnostics: retained}
		return report, &ValidationError{Tool: tool, Output: retained}
	}

	path, err := writeSuccessReport(outDir, tool, vcfPath)
	if err != nil {
		return nil, err
	}
	if err := ensureReportExists(path); err != nil {
		return nil, err
	}

	return &Report{Outcome: Pass, ReportPath: path}, nil
}
