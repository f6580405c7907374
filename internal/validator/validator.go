// Package validator dispatches external VCF validator tools by format
// version and interprets their diagnostic output into structured
// reports.
//
// Two tools are supported: vcf_validator (strict, VCF >= 4.1) and
// vcf-validator (legacy, VCF 4.0). Both communicate through combined
// stdout/stderr text; the exit code is logged but never used to decide
// pass/fail. Each tool's text-to-structure heuristics are isolated in
// its own adapter.
package validator

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Outcome is the structured pass/fail result of a validation run.
type Outcome int

const (
	Pass Outcome = iota
	Fail
)

// Report is the structured result of an external validation run.
// ReportPath always names an existing file once Validate returns
// without error.
type Report struct {
	Outcome     Outcome
	ReportPath  string
	Diagnostics []string // retained [info]-level output lines
}

// Validator runs an external validation tool against a VCF file,
// writing any synthesized report files into outDir.
type Validator interface {
	Name() string
	Validate(ctx context.Context, vcfPath, outDir string) (*Report, error)
}

// Options configures validator subprocess execution.
type Options struct {
	WorkDir string        // subprocess working directory, usually the scratch root
	Timeout time.Duration // per-invocation limit; 0 means no limit
	Logger  *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ForVersion selects the validator tool for a declared VCF version.
// Versions below 4.0 are not supported by any tool.
func ForVersion(version float64, opts Options) (Validator, error) {
	switch {
	case version >= 4.1:
		return NewStrictValidator(opts), nil
	case version >= 4.0:
		return NewLegacyValidator(opts), nil
	default:
		return nil, &VersionError{Version: version}
	}
}
