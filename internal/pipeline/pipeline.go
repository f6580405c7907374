// Package pipeline orchestrates a VCF import run: staging, external
// validation, streaming aggregation, cross-reference checks, and the
// final assembly and save of the Variation record.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gwastore/varimport/internal/crossref"
	"github.com/gwastore/varimport/internal/rundb"
	"github.com/gwastore/varimport/internal/store"
	"github.com/gwastore/varimport/internal/validator"
	"github.com/gwastore/varimport/internal/variation"
	"github.com/gwastore/varimport/internal/vcf"
)

// Metadata is the slice of the workspace service the pipeline consults
// for cross-reference identifier sets.
type Metadata interface {
	AssemblyRefFromGenome(ctx context.Context, genomeRef string) (string, error)
	ContigIDs(ctx context.Context, assemblyRef string) ([]string, error)
	SampleInstanceIDs(ctx context.Context, sampleRef string) ([]string, error)
}

// Config holds pipeline-wide settings.
type Config struct {
	Scratch          string        // per-process scratch root
	StagingRoot      string        // where user uploads land (read-only)
	TestDataRoot     string        // fixture paths under this root are used in place
	CrossCheckMode   crossref.Mode // lenient warns, strict aborts
	ValidatorTimeout time.Duration // bound on each external validator run
}

// Params names the inputs of one import run.
type Params struct {
	VCFStagingPath     string // path relative to the staging root (or a fixture path)
	GenomeRef          string
	SampleAttributeRef string
	Workspace          string
	ObjectName         string // empty means generate a unique default
}

// Result is everything a completed run produced.
type Result struct {
	Info        *vcf.Info
	Record      *variation.Record
	ObjectInfo  *store.ObjectInfo
	ReportPath  string
	AssemblyRef string
	Unresolved  []*crossref.Result // checks that had unresolved ids
}

// runContext carries immutable per-run state between stages.
type runContext struct {
	params      Params
	staged      *stagedInput
	version     float64
	reportPath  string
	info        *vcf.Info
	assemblyRef string
}

// Importer runs the import pipeline. Runs are sequential; each run
// works in its own uniquely named scratch subdirectory.
type Importer struct {
	cfg    Config
	meta   Metadata
	blobs  variation.BlobStore
	ledger *rundb.Store // optional
	logger *zap.Logger

	// newValidator is swappable for tests.
	newValidator func(version float64, opts validator.Options) (validator.Validator, error)
}

// New creates an Importer. ledger may be nil to skip run bookkeeping.
func New(cfg Config, meta Metadata, blobs variation.BlobStore, ledger *rundb.Store, logger *zap.Logger) *Importer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StagingRoot == "" {
		cfg.StagingRoot = "/staging"
	}
	return &Importer{
		cfg:          cfg,
		meta:         meta,
		blobs:        blobs,
		ledger:       ledger,
		logger:       logger,
		newValidator: validator.ForVersion,
	}
}

// Run executes the full import pipeline. Fatal conditions abort with
// no partial save; unresolved cross-reference ids only warn unless the
// importer is configured strict.
func (i *Importer) Run(ctx context.Context, params Params) (*Result, error) {
	if params.GenomeRef == "" {
		return nil, fmt.Errorf("genome reference not in input parameters")
	}
	if params.VCFStagingPath == "" {
		return nil, fmt.Errorf("vcf staging file path not in input parameters")
	}

	staged, err := i.stageInput(params.VCFStagingPath)
	if err != nil {
		return nil, err
	}

	rc := &runContext{params: params, staged: staged}

	rc, err = i.validate(ctx, rc)
	if err != nil {
		return nil, err
	}

	rc, err = i.parse(rc)
	if err != nil {
		return nil, err
	}

	rc, unresolved, err := i.crossValidate(ctx, rc)
	if err != nil {
		return nil, err
	}

	record, objInfo, err := i.assembleAndSave(ctx, rc)
	if err != nil {
		return nil, err
	}

	i.recordRun(rc, objInfo)

	return &Result{
		Info:        rc.info,
		Record:      record,
		ObjectInfo:  objInfo,
		ReportPath:  rc.reportPath,
		AssemblyRef: rc.assemblyRef,
		Unresolved:  unresolved,
	}, nil
}

// Validate runs only the staging, version-detection, and external
// validation stages, returning the report path.
func (i *Importer) Validate(ctx context.Context, stagingPath string) (string, float64, error) {
	staged, err := i.stageInput(stagingPath)
	if err != nil {
		return "", 0, err
	}

	rc, err := i.validate(ctx, &runContext{staged: staged})
	if err != nil {
		return "", 0, err
	}
	return rc.reportPath, rc.version, nil
}

// validate detects the declared format version, dispatches the
// external validator, and gates the rest of the pipeline on its
// outcome.
func (i *Importer) validate(ctx context.Context, rc *runContext) (*runContext, error) {
	version, err := vcf.DetectVersion(rc.staged.WorkingPath)
	if err != nil {
		return nil, err
	}

	outDir := filepath.Join(i.cfg.Scratch, "validation_"+uuid.NewString())
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create validation output dir: %w", err)
	}

	v, err := i.newValidator(version, validator.Options{
		WorkDir: i.cfg.Scratch,
		Timeout: i.cfg.ValidatorTimeout,
		Logger:  i.logger,
	})
	if err != nil {
		return nil, err
	}

	i.logger.Info("validating vcf",
		zap.Float64("version", version),
		zap.String("tool", v.Name()),
		zap.String("file", rc.staged.WorkingPath))

	report, err := v.Validate(ctx, rc.staged.WorkingPath, outDir)
	if err != nil {
		return nil, err
	}

	i.logger.Info("validation passed", zap.String("report", report.ReportPath))

	out := *rc
	out.version = version
	out.reportPath = report.ReportPath
	return &out, nil
}

// parse streams the records into per-contig aggregates.
func (i *Importer) parse(rc *runContext) (*runContext, error) {
	parser, err := vcf.NewParser(rc.staged.WorkingPath)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	info, err := vcf.Aggregate(parser, rc.version, rc.staged.WorkingPath)
	if err != nil {
		return nil, err
	}

	i.logger.Info("parsed vcf",
		zap.Int("total_variants", info.TotalVariants),
		zap.Int("contigs", len(info.ChromosomeIDs)),
		zap.Int("genotypes", len(info.GenotypeIDs)))

	out := *rc
	out.info = info
	return &out, nil
}

// crossValidate checks the VCF's chromosome ids against the assembly
// contig set and its genotype ids against the sample-attribute
// instance set. Unresolved ids warn in lenient mode and abort in
// strict mode.
func (i *Importer) crossValidate(ctx context.Context, rc *runContext) (*runContext, []*crossref.Result, error) {
	assemblyRef, err := i.meta.AssemblyRefFromGenome(ctx, rc.params.GenomeRef)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve assembly from genome: %w", err)
	}

	assemblyContigs, err := i.meta.ContigIDs(ctx, assemblyRef)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch assembly contigs: %w", err)
	}

	var unresolved []*crossref.Result

	assemblyCheck := crossref.Check(crossref.KindAssembly, rc.info.ChromosomeIDs, assemblyContigs)
	if !assemblyCheck.Resolved() {
		unresolved = append(unresolved, assemblyCheck)
		i.logger.Warn("vcf contig ids not present in assembly",
			zap.Strings("contig_ids", assemblyCheck.Unresolved))
	}
	if err := crossref.Enforce(assemblyCheck, i.cfg.CrossCheckMode); err != nil {
		return nil, nil, err
	}

	if rc.params.SampleAttributeRef != "" {
		sampleIDs, err := i.meta.SampleInstanceIDs(ctx, rc.params.SampleAttributeRef)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch sample instance ids: %w", err)
		}

		sampleCheck := crossref.Check(crossref.KindSample, rc.info.GenotypeIDs, sampleIDs)
		if !sampleCheck.Resolved() {
			unresolved = append(unresolved, sampleCheck)
			i.logger.Warn("vcf genotypes not present in sample attribute mapping",
				zap.Strings("genotype_ids", sampleCheck.Unresolved))
		}
		if err := crossref.Enforce(sampleCheck, i.cfg.CrossCheckMode); err != nil {
			return nil, nil, err
		}
	}

	out := *rc
	out.assemblyRef = assemblyRef
	return &out, unresolved, nil
}

// assembleAndSave builds the terminal record around the
// checksum-verified handle and persists it.
func (i *Importer) assembleAndSave(ctx context.Context, rc *runContext) (*variation.Record, *store.ObjectInfo, error) {
	assembler := variation.NewAssembler(i.cfg.Scratch, i.blobs, i.logger)

	record, err := assembler.Assemble(ctx, variation.Inputs{
		Info:          rc.info,
		OriginalPath:  rc.staged.OriginalPath,
		PopulationRef: rc.params.SampleAttributeRef,
		GenomeRef:     rc.params.GenomeRef,
		AssemblyRef:   rc.assemblyRef,
	})
	if err != nil {
		return nil, nil, err
	}

	objInfo, err := assembler.Save(ctx, record, rc.params.Workspace, rc.params.ObjectName)
	if err != nil {
		return nil, nil, err
	}

	return record, objInfo, nil
}

// recordRun appends the completed run to the local ledger. Bookkeeping
// failures are logged, never fatal: the record is already saved.
func (i *Importer) recordRun(rc *runContext, objInfo *store.ObjectInfo) {
	if i.ledger == nil {
		return
	}

	md5sum, err := variation.MD5File(rc.staged.OriginalPath)
	if err != nil {
		i.logger.Warn("ledger: hash original file", zap.Error(err))
		return
	}

	objectRef := ""
	if objInfo != nil {
		objectRef = fmt.Sprintf("%s/%d/%d", objInfo.Workspace, objInfo.ObjID, objInfo.Version)
	}

	err = i.ledger.RecordRun(rundb.Run{
		RunID:        uuid.NewString(),
		ImportedAt:   time.Now().UTC(),
		VCFPath:      rc.params.VCFStagingPath,
		VCFVersion:   rc.version,
		NumVariants:  rc.info.TotalVariants,
		NumGenotypes: len(rc.info.GenotypeIDs),
		NumContigs:   len(rc.info.ChromosomeIDs),
		MD5:          md5sum,
		ObjectRef:    objectRef,
	})
	if err != nil {
		i.logger.Warn("ledger: record import run", zap.Error(err))
	}
}
