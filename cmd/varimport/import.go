package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gwastore/varimport/internal/crossref"
	"github.com/gwastore/varimport/internal/pipeline"
	"github.com/gwastore/varimport/internal/rundb"
	"github.com/gwastore/varimport/internal/store"
)

func newImportCmd(logLevel *string) *cobra.Command {
	var (
		genomeRef          string
		sampleAttributeRef string
		workspaceName      string
		objectName         string
		strict             bool
	)

	cmd := &cobra.Command{
		Use:   "import <vcf-path>",
		Short: "Validate a VCF file and save a Variation record",
		Long: `Import runs the full pipeline: external validation, streaming
aggregation, assembly and sample cross-checks, upload, and save.
The VCF path is resolved against the configured staging root.`,
		Example: `  varimport import genotypes.vcf.gz --genome-ref 7/2/1 --sample-attribute-ref 7/4/1 --workspace my_workspace
  varimport import genotypes.vcf --genome-ref 7/2/1 --workspace my_workspace --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(*logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			mode := crossCheckMode(strict)

			wsClient := store.NewClient(store.Config{
				URL:   viper.GetString("workspace.url"),
				Token: viper.GetString("auth.token"),
			}, logger)
			fsClient := store.NewClient(store.Config{
				URL:   viper.GetString("fileservice.url"),
				Token: viper.GetString("auth.token"),
			}, logger)

			ledger, err := rundb.Open(viper.GetString("ledger.path"))
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer ledger.Close()

			scratch := viper.GetString("scratch")
			if err := os.MkdirAll(scratch, 0o755); err != nil {
				return fmt.Errorf("create scratch dir: %w", err)
			}

			importer := pipeline.New(pipeline.Config{
				Scratch:          scratch,
				StagingRoot:      viper.GetString("staging.root"),
				CrossCheckMode:   mode,
				ValidatorTimeout: viper.GetDuration("validator.timeout"),
			}, store.NewWorkspace(wsClient), store.NewFileService(fsClient), ledger, logger)

			result, err := importer.Run(cmd.Context(), pipeline.Params{
				VCFStagingPath:     args[0],
				GenomeRef:          genomeRef,
				SampleAttributeRef: sampleAttributeRef,
				Workspace:          workspaceName,
				ObjectName:         objectName,
			})
			if err != nil {
				return err
			}

			logger.Info("import complete",
				zap.String("object", result.ObjectInfo.Name),
				zap.Int("variants", result.Record.NumVariants),
				zap.Int("genotypes", result.Record.NumGenotypes),
				zap.Int("contigs", len(result.Record.Contigs)))

			fmt.Printf("Saved %s (%d variants across %d contigs)\n",
				result.ObjectInfo.Name, result.Record.NumVariants, len(result.Record.Contigs))
			for _, unresolved := range result.Unresolved {
				fmt.Printf("Warning: %d %s id(s) unresolved: %s\n",
					len(unresolved.Unresolved), unresolved.Kind,
					strings.Join(unresolved.Unresolved, " "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&genomeRef, "genome-ref", "", "genome object reference (required)")
	cmd.Flags().StringVar(&sampleAttributeRef, "sample-attribute-ref", "", "sample attribute object reference")
	cmd.Flags().StringVar(&workspaceName, "workspace", "", "destination workspace name (required)")
	cmd.Flags().StringVar(&objectName, "object-name", "", "name for the saved Variation object (default: generated)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on unresolved assembly or sample identifiers")
	cmd.MarkFlagRequired("genome-ref")
	cmd.MarkFlagRequired("workspace")

	return cmd
}

// crossCheckMode resolves the flag against the configured default.
func crossCheckMode(strictFlag bool) crossref.Mode {
	if strictFlag || viper.GetString("crosscheck.mode") == "strict" {
		return crossref.Strict
	}
	return crossref.Lenient
}
