package pipeline

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// stagedInput locates the input file and produces the two local copies
// the rest of the pipeline works from.
type stagedInput struct {
	// WorkingPath is the decompressed (or already-plain) file that
	// gets validated and parsed.
	WorkingPath string

	// OriginalPath is a byte-exact copy of the source file under
	// scratch; it is what gets hashed and uploaded.
	OriginalPath string
}

// stageInput resolves the user-supplied path against the staging root
// (test fixtures under the test-data root are used in place), copies
// the original bytes into scratch, and decompresses gzip-framed input
// into scratch before parsing.
func (i *Importer) stageInput(stagingPath string) (*stagedInput, error) {
	localPath := stagingPath
	if i.cfg.TestDataRoot == "" || !strings.HasPrefix(stagingPath, i.cfg.TestDataRoot) {
		localPath = filepath.Join(i.cfg.StagingRoot, stagingPath)
	}

	if _, err := os.Stat(localPath); err != nil {
		return nil, &InputError{Path: localPath, Err: err}
	}

	originalPath := filepath.Join(i.cfg.Scratch, "original_"+filepath.Base(localPath))
	if err := copyFile(localPath, originalPath); err != nil {
		return nil, fmt.Errorf("preserve original vcf: %w", err)
	}

	gzipped, err := isGzipFile(localPath)
	if err != nil {
		return nil, &InputError{Path: localPath, Err: err}
	}

	workingPath := localPath
	if gzipped {
		// The staging root is read-only; decompress into scratch.
		workingPath = filepath.Join(i.cfg.Scratch, strings.TrimSuffix(filepath.Base(localPath), ".gz"))
		if err := gunzipFile(localPath, workingPath); err != nil {
			return nil, fmt.Errorf("decompress staged vcf: %w", err)
		}
	}

	return &stagedInput{WorkingPath: workingPath, OriginalPath: originalPath}, nil
}

// isGzipFile checks the two-byte gzip magic number 1f 8b.
func isGzipFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, 2)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false, err
	}
	return n == 2 && buf[0] == 0x1f && buf[1] == 0x8b, nil
}

func gunzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	gz, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer gz.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, gz)
	return err
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
