package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwastore/varimport/internal/crossref"
	"github.com/gwastore/varimport/internal/rundb"
	"github.com/gwastore/varimport/internal/store"
	"github.com/gwastore/varimport/internal/validator"
	"github.com/gwastore/varimport/internal/variation"
)

// fakeMetadata serves canned identifier sets.
type fakeMetadata struct {
	assemblyRef string
	contigs     []string
	samples     []string
}

func (f *fakeMetadata) AssemblyRefFromGenome(context.Context, string) (string, error) {
	return f.assemblyRef, nil
}

func (f *fakeMetadata) ContigIDs(context.Context, string) ([]string, error) {
	return f.contigs, nil
}

func (f *fakeMetadata) SampleInstanceIDs(context.Context, string) ([]string, error) {
	return f.samples, nil
}

// fakeBlobs echoes uploads back with the real local checksum unless a
// mismatching one is forced.
type fakeBlobs struct {
	forceMD5  string
	uploaded  string
	savedSpec *store.SaveSpec
}

func (f *fakeBlobs) FileToBlob(_ context.Context, path string) (*store.BlobRef, error) {
	f.uploaded = path
	md5sum := f.forceMD5
	if md5sum == "" {
		real, err := variation.MD5File(path)
		if err != nil {
			return nil, err
		}
		md5sum = real
	}
	return &store.BlobRef{
		BlobID: "blob-1",
		Handle: store.Handle{HID: "KBH_9", ID: "blob-1", RemoteMD5: md5sum},
	}, nil
}

func (f *fakeBlobs) SaveObject(_ context.Context, spec store.SaveSpec) (*store.ObjectInfo, error) {
	f.savedSpec = &spec
	return &store.ObjectInfo{ObjID: 12, Name: spec.Name, Workspace: "myws", Version: 1}, nil
}

// fakeValidator always passes, materializing a report file like the
// real tools do.
type fakeValidator struct{}

func (fakeValidator) Name() string { return "fake-validator" }

func (fakeValidator) Validate(_ context.Context, _, outDir string) (*validator.Report, error) {
	path := filepath.Join(outDir, "vcf_validation.txt")
	if err := os.WriteFile(path, []byte("ok\n"), 0o644); err != nil {
		return nil, err
	}
	return &validator.Report{Outcome: validator.Pass, ReportPath: path}, nil
}

func newTestImporter(t *testing.T, meta Metadata, blobs variation.BlobStore, mode crossref.Mode) *Importer {
	t.Helper()

	imp := New(Config{
		Scratch:        t.TempDir(),
		StagingRoot:    t.TempDir(),
		TestDataRoot:   "testdata",
		CrossCheckMode: mode,
	}, meta, blobs, nil, nil)
	imp.newValidator = func(version float64, opts validator.Options) (validator.Validator, error) {
		return fakeValidator{}, nil
	}
	return imp
}

func defaultParams() Params {
	return Params{
		VCFStagingPath:     filepath.Join("testdata", "simple.vcf"),
		GenomeRef:          "7/2/1",
		SampleAttributeRef: "7/4/1",
		Workspace:          "myws",
	}
}

func TestRun_FullImport(t *testing.T) {
	meta := &fakeMetadata{
		assemblyRef: "7/3/1",
		contigs:     []string{"1", "2", "3"},
		samples:     []string{"na00001", "na00002"},
	}
	blobs := &fakeBlobs{}
	imp := newTestImporter(t, meta, blobs, crossref.Lenient)

	result, err := imp.Run(context.Background(), defaultParams())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Info.TotalVariants)
	assert.Empty(t, result.Unresolved, "contigs 1,2 resolve against assembly 1,2,3")
	assert.Equal(t, "7/3/1", result.AssemblyRef)
	assert.FileExists(t, result.ReportPath)

	require.NotNil(t, result.Record)
	assert.Equal(t, 2, result.Record.NumGenotypes)
	assert.Equal(t, 5, result.Record.NumVariants)
	assert.Equal(t, "7/3/1", result.Record.AssemblyRef)
	assert.Equal(t, "KBH_9", result.Record.VCFHandleRef)

	// The byte-exact original copy was uploaded.
	assert.Equal(t, "original_simple.vcf", filepath.Base(blobs.uploaded))

	require.NotNil(t, blobs.savedSpec)
	assert.Equal(t, variation.ObjectType, blobs.savedSpec.Type)

	require.NotNil(t, result.ObjectInfo)
	assert.Equal(t, int64(12), result.ObjectInfo.ObjID)
}

func TestRun_GzippedInput(t *testing.T) {
	meta := &fakeMetadata{assemblyRef: "7/3/1", contigs: []string{"1", "2"}, samples: []string{"NA00001", "NA00002"}}
	imp := newTestImporter(t, meta, &fakeBlobs{}, crossref.Lenient)

	params := defaultParams()
	params.VCFStagingPath = filepath.Join("testdata", "simple.vcf.gz")

	result, err := imp.Run(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 5, result.Info.TotalVariants)

	// Parsing happened on the decompressed copy inside scratch.
	assert.Equal(t, "simple.vcf", filepath.Base(result.Info.FilePath))
	assert.NotEqual(t, "testdata", filepath.Dir(result.Info.FilePath))
}

func TestRun_LenientWarnsOnUnresolved(t *testing.T) {
	meta := &fakeMetadata{
		assemblyRef: "7/3/1",
		contigs:     []string{"1"}, // contig "2" unresolved
		samples:     []string{"NA00001", "NA00002"},
	}
	blobs := &fakeBlobs{}
	imp := newTestImporter(t, meta, blobs, crossref.Lenient)

	result, err := imp.Run(context.Background(), defaultParams())
	require.NoError(t, err, "lenient mode must not abort on unresolved ids")

	require.Len(t, result.Unresolved, 1)
	assert.Equal(t, crossref.KindAssembly, result.Unresolved[0].Kind)
	assert.Equal(t, []string{"2"}, result.Unresolved[0].Unresolved)

	assert.NotNil(t, blobs.savedSpec, "import still saves in lenient mode")
}

func TestRun_StrictAbortsOnUnresolved(t *testing.T) {
	meta := &fakeMetadata{
		assemblyRef: "7/3/1",
		contigs:     []string{"1"},
		samples:     []string{"NA00001", "NA00002"},
	}
	blobs := &fakeBlobs{}
	imp := newTestImporter(t, meta, blobs, crossref.Strict)

	_, err := imp.Run(context.Background(), defaultParams())

	var me *crossref.MismatchError
	require.ErrorAs(t, err, &me)
	assert.Nil(t, blobs.savedSpec, "strict mismatch must abort before save")
	assert.Empty(t, blobs.uploaded, "strict mismatch must abort before upload")
}

func TestRun_ChecksumMismatchAbortsSave(t *testing.T) {
	meta := &fakeMetadata{assemblyRef: "7/3/1", contigs: []string{"1", "2"}, samples: []string{"NA00001", "NA00002"}}
	blobs := &fakeBlobs{forceMD5: "not-the-right-hash"}
	imp := newTestImporter(t, meta, blobs, crossref.Lenient)

	_, err := imp.Run(context.Background(), defaultParams())

	var ce *variation.ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Nil(t, blobs.savedSpec, "checksum mismatch must not proceed to save")
}

func TestRun_MissingInput(t *testing.T) {
	imp := newTestImporter(t, &fakeMetadata{}, &fakeBlobs{}, crossref.Lenient)

	params := defaultParams()
	params.VCFStagingPath = "no_such_file.vcf"

	_, err := imp.Run(context.Background(), params)

	var ie *InputError
	require.ErrorAs(t, err, &ie)
}

func TestRun_MissingParams(t *testing.T) {
	imp := newTestImporter(t, &fakeMetadata{}, &fakeBlobs{}, crossref.Lenient)

	_, err := imp.Run(context.Background(), Params{VCFStagingPath: "x.vcf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genome reference")

	_, err = imp.Run(context.Background(), Params{GenomeRef: "7/2/1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "staging file path")
}

func TestRun_UnsupportedVersion(t *testing.T) {
	imp := newTestImporter(t, &fakeMetadata{}, &fakeBlobs{}, crossref.Lenient)
	// Use the real dispatcher so the version gate applies.
	imp.newValidator = validator.ForVersion

	params := defaultParams()
	params.VCFStagingPath = filepath.Join("testdata", "ancient.vcf")

	_, err := imp.Run(context.Background(), params)

	var ve *validator.VersionError
	require.ErrorAs(t, err, &ve)
	assert.InDelta(t, 3.3, ve.Version, 0.001)
}

func TestRun_RecordsLedger(t *testing.T) {
	ledger, err := rundb.Open("")
	require.NoError(t, err)
	defer ledger.Close()

	meta := &fakeMetadata{assemblyRef: "7/3/1", contigs: []string{"1", "2"}, samples: []string{"NA00001", "NA00002"}}
	imp := New(Config{
		Scratch:      t.TempDir(),
		StagingRoot:  t.TempDir(),
		TestDataRoot: "testdata",
	}, meta, &fakeBlobs{}, ledger, nil)
	imp.newValidator = func(float64, validator.Options) (validator.Validator, error) {
		return fakeValidator{}, nil
	}

	_, err = imp.Run(context.Background(), defaultParams())
	require.NoError(t, err)

	runs, err := ledger.ListRuns(0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 5, runs[0].NumVariants)
	assert.Equal(t, 2, runs[0].NumGenotypes)
	assert.Equal(t, 4.2, runs[0].VCFVersion)
	assert.Equal(t, "myws/12/1", runs[0].ObjectRef)
}

func TestValidateOnly(t *testing.T) {
	imp := newTestImporter(t, &fakeMetadata{}, &fakeBlobs{}, crossref.Lenient)

	reportPath, version, err := imp.Validate(context.Background(), filepath.Join("testdata", "simple.vcf"))
	require.NoError(t, err)
	assert.Equal(t, 4.2, version)
	assert.FileExists(t, reportPath)
}

func TestValidateOnly_FailedValidation(t *testing.T) {
	imp := newTestImporter(t, &fakeMetadata{}, &fakeBlobs{}, crossref.Lenient)
	imp.newValidator = func(float64, validator.Options) (validator.Validator, error) {
		return failingValidator{}, nil
	}

	_, _, err := imp.Validate(context.Background(), filepath.Join("testdata", "simple.vcf"))

	var ve *validator.ValidationError
	require.ErrorAs(t, err, &ve)
}

// failingValidator simulates a tool that found errors.
type failingValidator struct{}

func (failingValidator) Name() string { return "failing-validator" }

func (failingValidator) Validate(_ context.Context, _, outDir string) (*validator.Report, error) {
	path := filepath.Join(outDir, "vcf_validation.txt")
	if err := os.WriteFile(path, []byte("bad\n"), 0o644); err != nil {
		return nil, err
	}
	report := &validator.Report{Outcome: validator.Fail, ReportPath: path, Diagnostics: []string{"[info] bad"}}
	return report, &validator.ValidationError{Tool: "failing-validator", Output: []string{"[info] bad"}}
}

func TestStageInput_ResolvesAgainstStagingRoot(t *testing.T) {
	stagingRoot := t.TempDir()
	content, err := os.ReadFile(filepath.Join("testdata", "simple.vcf"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(stagingRoot, "upload.vcf"), content, 0o644))

	imp := New(Config{Scratch: t.TempDir(), StagingRoot: stagingRoot}, nil, nil, nil, nil)

	staged, err := imp.stageInput("upload.vcf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(stagingRoot, "upload.vcf"), staged.WorkingPath)
	assert.FileExists(t, staged.OriginalPath)
	assert.Equal(t, "original_upload.vcf", filepath.Base(staged.OriginalPath))
}

func TestInputError_Unwrap(t *testing.T) {
	imp := New(Config{Scratch: t.TempDir(), StagingRoot: t.TempDir()}, nil, nil, nil, nil)

	_, err := imp.stageInput("missing.vcf")
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
