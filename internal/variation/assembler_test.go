package variation

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwastore/varimport/internal/store"
	"github.com/gwastore/varimport/internal/vcf"
)

// fakeBlobStore echoes uploads back with a configurable checksum.
type fakeBlobStore struct {
	remoteMD5    string // overrides the real hash when set
	blobID       string
	uploadedPath string
	savedSpec    *store.SaveSpec
}

func (f *fakeBlobStore) FileToBlob(_ context.Context, path string) (*store.BlobRef, error) {
	f.uploadedPath = path

	md5sum := f.remoteMD5
	if md5sum == "" {
		real, err := MD5File(path)
		if err != nil {
			return nil, err
		}
		md5sum = real
	}

	blobID := f.blobID
	return &store.BlobRef{
		BlobID: blobID,
		Handle: store.Handle{HID: "KBH_7", ID: blobID, RemoteMD5: md5sum},
	}, nil
}

func (f *fakeBlobStore) SaveObject(_ context.Context, spec store.SaveSpec) (*store.ObjectInfo, error) {
	f.savedSpec = &spec
	return &store.ObjectInfo{ObjID: 1, Name: spec.Name, Type: spec.Type}, nil
}

func testInputs(t *testing.T, scratch string) Inputs {
	t.Helper()

	vcfPath := filepath.Join(scratch, "sample.vcf")
	require.NoError(t, os.WriteFile(vcfPath, []byte("##fileformat=VCFv4.2\n"), 0o644))

	original := filepath.Join(scratch, "original_sample.vcf")
	require.NoError(t, os.WriteFile(original, []byte("##fileformat=VCFv4.2\n"), 0o644))

	return Inputs{
		Info: &vcf.Info{
			Version:       4.2,
			TotalVariants: 5,
			GenotypeIDs:   []string{"NA00001", "NA00002"},
			ChromosomeIDs: []string{"1", "2"},
			Contigs: map[string]*vcf.ContigStats{
				"1": {ContigID: "1", TotalVariants: 2, PassVariants: 2, Length: 1},
				"2": {ContigID: "2", TotalVariants: 3, PassVariants: 3, Length: 1},
			},
			FilePath: vcfPath,
		},
		OriginalPath:  original,
		PopulationRef: "7/4/1",
		GenomeRef:     "7/2/1",
		AssemblyRef:   "7/3/1",
	}
}

func TestAssemble(t *testing.T) {
	scratch := t.TempDir()
	blobs := &fakeBlobStore{blobID: "b-1"}
	a := NewAssembler(scratch, blobs, nil)

	in := testInputs(t, scratch)
	rec, err := a.Assemble(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, 2, rec.NumGenotypes)
	assert.Equal(t, 5, rec.NumVariants)
	require.Len(t, rec.Contigs, 2)
	assert.Equal(t, "1", rec.Contigs[0].ContigID)
	assert.Equal(t, "7/4/1", rec.Population)
	assert.Equal(t, "7/2/1", rec.GenomeRef)
	assert.Equal(t, "7/3/1", rec.AssemblyRef)
	assert.Equal(t, "KBH_7", rec.VCFHandleRef)
	require.NotNil(t, rec.VCFHandle)

	// The original bytes are what got uploaded, not the working copy.
	assert.Equal(t, in.OriginalPath, blobs.uploadedPath)

	// A gzipped sibling of the working copy exists for storage.
	gzPath := in.Info.FilePath + ".gz"
	require.FileExists(t, gzPath)
	f, err := os.Open(gzPath)
	require.NoError(t, err)
	defer f.Close()
	_, err = gzip.NewReader(f)
	assert.NoError(t, err, "staged copy must be gzip-framed")
}

func TestAssemble_ChecksumMismatch(t *testing.T) {
	scratch := t.TempDir()
	blobs := &fakeBlobStore{blobID: "b-1", remoteMD5: "0000deadbeef"}
	a := NewAssembler(scratch, blobs, nil)

	_, err := a.Assemble(context.Background(), testInputs(t, scratch))

	var ce *ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "0000deadbeef", ce.Remote)
	assert.NotEmpty(t, ce.Local)
}

func TestAssemble_MissingBlobID(t *testing.T) {
	scratch := t.TempDir()
	a := NewAssembler(scratch, &fakeBlobStore{}, nil)

	_, err := a.Assemble(context.Background(), testInputs(t, scratch))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identifier")
}

func TestAssemble_CopiesFileOutsideScratch(t *testing.T) {
	scratch := t.TempDir()
	elsewhere := t.TempDir()

	in := testInputs(t, scratch)
	outside := filepath.Join(elsewhere, "sample.vcf")
	require.NoError(t, os.Rename(in.Info.FilePath, outside))
	in.Info.FilePath = outside

	a := NewAssembler(scratch, &fakeBlobStore{blobID: "b-2"}, nil)
	_, err := a.Assemble(context.Background(), in)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(scratch, "sample.vcf"))
	assert.FileExists(t, filepath.Join(scratch, "sample.vcf.gz"))
}

func TestSave(t *testing.T) {
	blobs := &fakeBlobStore{}
	a := NewAssembler(t.TempDir(), blobs, nil)

	rec := &Record{NumVariants: 5}
	info, err := a.Save(context.Background(), rec, "myws", "my_variation")
	require.NoError(t, err)
	assert.Equal(t, "my_variation", info.Name)
	assert.Equal(t, ObjectType, blobs.savedSpec.Type)
}

func TestSave_DefaultName(t *testing.T) {
	blobs := &fakeBlobStore{}
	a := NewAssembler(t.TempDir(), blobs, nil)

	info, err := a.Save(context.Background(), &Record{}, "myws", "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Name, "variation_"), "got name %q", info.Name)
}

func TestSave_NilRecord(t *testing.T) {
	a := NewAssembler(t.TempDir(), &fakeBlobStore{}, nil)

	_, err := a.Save(context.Background(), nil, "myws", "x")
	require.Error(t, err)
}

func TestMD5File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	sum, err := MD5File(path)
	require.NoError(t, err)
	assert.Equal(t, "b1946ac92492d2347c6235b4d2611184", sum)
}
