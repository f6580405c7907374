package variation

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gwastore/varimport/internal/store"
	"github.com/gwastore/varimport/internal/vcf"
)

// BlobStore is the slice of the file service the assembler needs.
type BlobStore interface {
	FileToBlob(ctx context.Context, path string) (*store.BlobRef, error)
	SaveObject(ctx context.Context, spec store.SaveSpec) (*store.ObjectInfo, error)
}

// Assembler builds and persists Variation records. It stages VCF bytes
// under the scratch area, uploads the original bytes to blob storage,
// and verifies the remote checksum before trusting the handle.
type Assembler struct {
	scratch string
	blobs   BlobStore
	logger  *zap.Logger
}

// NewAssembler creates an assembler rooted at the scratch directory.
func NewAssembler(scratch string, blobs BlobStore, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{scratch: scratch, blobs: blobs, logger: logger}
}

// Inputs carries everything the assembler needs from earlier pipeline
// stages.
type Inputs struct {
	Info          *vcf.Info
	OriginalPath  string // byte-exact copy of the source file; hashed and uploaded
	PopulationRef string // sample-attribute object reference
	GenomeRef     string
	AssemblyRef   string
}

// Assemble stages the parsed file under scratch, makes sure a gzipped
// copy exists for storage, uploads the original bytes, and builds the
// Record around the verified handle.
func (a *Assembler) Assemble(ctx context.Context, in Inputs) (*Record, error) {
	if err := a.stageUnderScratch(in.Info.FilePath); err != nil {
		return nil, err
	}

	localMD5, err := MD5File(in.OriginalPath)
	if err != nil {
		return nil, err
	}

	ref, err := a.blobs.FileToBlob(ctx, in.OriginalPath)
	if err != nil {
		return nil, fmt.Errorf("upload vcf to blob storage: %w", err)
	}

	if ref.Handle.RemoteMD5 != localMD5 {
		return nil, &ChecksumError{Path: in.OriginalPath, Local: localMD5, Remote: ref.Handle.RemoteMD5}
	}
	if ref.BlobID == "" {
		return nil, fmt.Errorf("blob storage did not allocate an identifier for %s", in.OriginalPath)
	}

	a.logger.Info("vcf uploaded",
		zap.String("blob_id", ref.BlobID),
		zap.String("md5", localMD5))

	return &Record{
		NumGenotypes: len(in.Info.GenotypeIDs),
		NumVariants:  in.Info.TotalVariants,
		Contigs:      in.Info.ContigList(),
		Population:   in.PopulationRef,
		GenomeRef:    in.GenomeRef,
		AssemblyRef:  in.AssemblyRef,
		VCFHandleRef: ref.Handle.HID,
		VCFHandle:    &ref.Handle,
	}, nil
}

// Save persists the record as a named, typed object. When name is
// empty a unique default is generated.
func (a *Assembler) Save(ctx context.Context, rec *Record, workspace, name string) (*store.ObjectInfo, error) {
	if rec == nil {
		return nil, fmt.Errorf("variation record is empty, cannot save")
	}

	if name == "" {
		name = "variation_" + uuid.NewString()
	}

	a.logger.Info("saving variation record",
		zap.String("workspace", workspace),
		zap.String("name", name))

	info, err := a.blobs.SaveObject(ctx, store.SaveSpec{
		Workspace: workspace,
		Type:      ObjectType,
		Name:      name,
		Data:      rec,
	})
	if err != nil {
		return nil, fmt.Errorf("save variation record: %w", err)
	}

	return info, nil
}

// stageUnderScratch makes sure the parsed file and a gzip-compressed
// sibling live under the scratch area, copying and compressing as
// needed. The parsed Info is left untouched.
func (a *Assembler) stageUnderScratch(filePath string) error {
	staged := filePath
	if !strings.HasPrefix(staged, a.scratch) {
		staged = filepath.Join(a.scratch, filepath.Base(filePath))
		if err := copyFile(filePath, staged); err != nil {
			return fmt.Errorf("stage vcf under scratch: %w", err)
		}
	}

	if !strings.HasSuffix(staged, ".gz") {
		if _, err := gzipFile(staged); err != nil {
			return fmt.Errorf("compress staged vcf: %w", err)
		}
	}

	return nil
}

// gzipFile writes a gzip-compressed copy of path alongside it and
// returns the new path.
func gzipFile(path string) (string, error) {
	gzPath := path + ".gz"

	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(gzPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return "", err
	}
	if err := gw.Close(); err != nil {
		return "", err
	}

	return gzPath, nil
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
