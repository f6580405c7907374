package validator

import (
	"fmt"
	"strings"
	"time"
)

// VersionError indicates a declared VCF version no validator supports.
type VersionError struct {
	Version float64
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("vcf version %.1f is not supported: file format line must declare version 4.0 or newer, "+
		"see https://samtools.github.io/hts-specs/", e.Version)
}

// ValidationError carries the complete retained diagnostic output of a
// failed validation run, verbatim.
type ValidationError struct {
	Tool   string
	Output []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s reported the file as invalid:\n%s", e.Tool, strings.Join(e.Output, "\n"))
}

// TimeoutError indicates the validator subprocess exceeded its time
// budget. Distinct from ValidationError: nothing is known about the
// file's validity.
type TimeoutError struct {
	Tool    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s did not finish within %s", e.Tool, e.Timeout)
}

// ReportError indicates no validation report file materialized on disk,
// which is fatal regardless of the validator's apparent outcome.
type ReportError struct {
	Path string
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("validator did not generate a report file at %s", e.Path)
}
