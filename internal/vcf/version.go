package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// FormatError indicates a malformed or missing ##fileformat meta line.
type FormatError struct {
	Path    string
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid vcf %s: %s", e.Path, e.Message)
}

// DetectVersion reads the first meta line of a VCF file and returns the
// declared format version (e.g. 4.2 for "##fileformat=VCFv4.2").
// Gzip-framed input is detected by magic number and read transparently.
// Only the first line is inspected; the rest of the header is left to
// the full parser.
func DetectVersion(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open vcf file: %w", err)
	}
	defer file.Close()

	gzipped, err := sniffGzip(file)
	if err != nil {
		return 0, fmt.Errorf("read vcf file: %w", err)
	}

	var r io.Reader = file
	if gzipped {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return 0, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("read first line: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")

	if line == "" {
		return 0, &FormatError{Path: path, Message: "file is empty, expected ##fileformat meta line"}
	}

	key, value, found := strings.Cut(line, "=")
	if !found || !strings.HasPrefix(key, "##fileformat") {
		return 0, &FormatError{Path: path, Message: "##fileformat meta line is missing or improperly formatted"}
	}

	version, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimSpace(value), "VCFv"), 64)
	if err != nil {
		return 0, &FormatError{Path: path, Message: fmt.Sprintf("cannot parse version from %q", value)}
	}

	return version, nil
}
