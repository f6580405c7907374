package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gwastore/varimport/internal/pipeline"
)

func newValidateCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <vcf-path>",
		Short: "Run external validation on a VCF file without importing",
		Long: `Validate detects the declared VCF version, dispatches the matching
external validator tool, and reports where the validation report was
written. Nothing is uploaded or saved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(*logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			scratch := viper.GetString("scratch")
			if err := os.MkdirAll(scratch, 0o755); err != nil {
				return fmt.Errorf("create scratch dir: %w", err)
			}

			importer := pipeline.New(pipeline.Config{
				Scratch:          scratch,
				StagingRoot:      viper.GetString("staging.root"),
				ValidatorTimeout: viper.GetDuration("validator.timeout"),
			}, nil, nil, nil, logger)

			reportPath, version, err := importer.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("VCF version %.1f validated successfully\n", version)
			fmt.Printf("Report: %s\n", reportPath)
			return nil
		},
	}
}
