package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// fallbackReportName is used when the tool does not write its own
// report file.
const fallbackReportName = "vcf_validation.txt"

// writeDiagnosticsReport persists captured diagnostic lines as the
// validation report.
func writeDiagnosticsReport(outDir string, lines []string) (string, error) {
	path := filepath.Join(outDir, fallbackReportName)
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write validation report: %w", err)
	}
	return path, nil
}

// writeSuccessReport synthesizes a report for a tool that stays silent
// on success.
func writeSuccessReport(outDir, tool, vcfPath string) (string, error) {
	path := filepath.Join(outDir, fallbackReportName)
	content := fmt.Sprintf("%s used to validate vcf file:\n%s\nFile is valid as of VCF spec v4.0\n", tool, vcfPath)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write validation report: %w", err)
	}
	return path, nil
}

// ensureReportExists enforces the postcondition that exactly one
// report file is on disk after a validation run.
func ensureReportExists(path string) error {
	if _, err := os.Stat(path); err != nil {
		return &ReportError{Path: path}
	}
	return nil
}
