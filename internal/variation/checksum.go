package variation

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// MD5File computes the md5 checksum of a file's bytes, streaming so
// large VCFs are never held in memory. md5 is what the blob service
// reports back for uploaded content.
func MD5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChecksumError reports a mismatch between the locally computed
// checksum and the one the blob service recorded for the same bytes.
type ChecksumError struct {
	Path   string
	Local  string
	Remote string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("local md5 %s of %s does not match remote md5 %s", e.Local, e.Path, e.Remote)
}
