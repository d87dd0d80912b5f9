package main

import (
	"fmt"

	"github.com/peakscout/peakscout/internal/decompose"
	"github.com/peakscout/peakscout/internal/logging"
	"github.com/peakscout/peakscout/internal/perrors"
	"github.com/spf13/cobra"
)

func newDecomposeCmd() *cobra.Command {
	var (
		gtfFile string
		species string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:   "decompose",
		Short: "Decompose a GTF annotation file into per-chromosome reference CSVs",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			if err := decompose.Run(log, gtfFile, species, outDir); err != nil {
				return err
			}
			fmt.Printf("Decomposed %s into %s/%s\n", gtfFile, outDir, species)
			return nil
		},
	}

	cmd.Flags().StringVar(&gtfFile, "gtf_file", "", "GTF annotation file (required)")
	cmd.Flags().StringVar(&species, "species", "", "Species identifier used as the output subdirectory (required)")
	cmd.Flags().StringVar(&outDir, "out_dir", ".", "Output directory")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if gtfFile == "" || species == "" {
			return &perrors.ConfigError{Token: "decompose", Msg: "--gtf_file and --species are required"}
		}
		return nil
	}

	return cmd
}
