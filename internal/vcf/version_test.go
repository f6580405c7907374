package vcf

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		want    float64
		wantErr bool
	}{
		{name: "v4.2", file: "simple.vcf", want: 4.2},
		{name: "v4.2 gzipped", file: "simple.vcf.gz", want: 4.2},
		{name: "v4.1", file: "filtered.vcf", want: 4.1},
		{name: "v4.0", file: "legacy.vcf", want: 4.0},
		{name: "missing fileformat line", file: "bad_header.vcf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectVersion(filepath.Join("testdata", tt.file))
			if tt.wantErr {
				require.Error(t, err)
				var fe *FormatError
				assert.True(t, errors.As(err, &fe), "expected FormatError, got %T", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectVersion_MissingFile(t *testing.T) {
	_, err := DetectVersion(filepath.Join("testdata", "no_such_file.vcf"))
	require.Error(t, err)
}

func TestDetectVersion_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.vcf")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := DetectVersion(path)
	var fe *FormatError
	require.True(t, errors.As(err, &fe))
}
