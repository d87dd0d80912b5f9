package main

import (
	"context"
	"fmt"

	"github.com/peakscout/peakscout/internal/driver"
	"github.com/peakscout/peakscout/internal/logging"
	"github.com/peakscout/peakscout/internal/nearest"
	"github.com/peakscout/peakscout/internal/peakfmt"
	"github.com/peakscout/peakscout/internal/perrors"
	"github.com/peakscout/peakscout/internal/refstore"
	"github.com/peakscout/peakscout/internal/writer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPeak2GeneCmd() *cobra.Command {
	var (
		peakFile      string
		peakType      string
		species       string
		numFeatures   int
		refDir        string
		outputName    string
		outDir        string
		outputType    string
		option        string
		boundary      int64
		upBound       int64
		downBound     int64
		hasUpBound    bool
		hasDownBound  bool
		dropColumns   bool
		speciesGenome string
		viewWindow    float64
	)

	cmd := &cobra.Command{
		Use:   "peak2gene",
		Short: "Find the nearest gene(s) to each peak",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(verbose)
			if err != nil {
				return err
			}
			defer log.Sync()

			peaks, err := peakfmt.Read(peakFile, peakfmt.ReadOptions{
				Type:          peakfmt.Type(peakType),
				Boundary:      peakfmt.BoundaryOption(option),
				BoundaryWidth: boundary,
			})
			if err != nil {
				return err
			}

			dir, err := resolveRefDir(cmd.Context(), log, refDir, species)
			if err != nil {
				return err
			}

			searchOpts := nearest.Options{
				K:             numFeatures,
				DropColumns:   dropColumns,
				SpeciesGenome: speciesGenome,
				ViewWindow:    viewWindow,
			}
			if hasUpBound {
				searchOpts.UpBound = &upBound
			}
			if hasDownBound {
				searchOpts.DownBound = &downBound
			}

			out, err := driver.RunPeak2Gene(cmd.Context(), log, peaks, driver.Peak2GeneOptions{
				Species: species,
				RefDir:  dir,
				Search:  searchOpts,
			})
			if err != nil {
				return err
			}

			path, err := writer.WriteTable(out, outDir, outputName, writer.OutputType(outputType))
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %d rows to %s\n", out.Len(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&peakFile, "peak_file", "", "Peak file (required)")
	cmd.Flags().StringVar(&peakType, "peak_type", "", "Peak type: macs2_xls, macs2_bed, macs2_consensus, seacr, bed6 (required)")
	cmd.Flags().StringVar(&species, "species", "", "Species (required)")
	cmd.Flags().IntVar(&numFeatures, "num_features", 1, "Number of nearest genes to report")
	cmd.Flags().IntVar(&numFeatures, "k", 1, "Alias for --num_features")
	cmd.Flags().StringVar(&refDir, "ref_dir", "", "Reference directory (auto-downloaded to the cache if omitted)")
	cmd.Flags().StringVar(&outputName, "output_name", "peak2gene", "Output file base name")
	cmd.Flags().StringVar(&outDir, "out_dir", ".", "Output directory")
	cmd.Flags().StringVar(&outputType, "output_type", "csv", "Output type: csv")
	cmd.Flags().StringVar(&option, "option", "native_peak_boundaries", "Peak boundary option")
	cmd.Flags().Int64Var(&boundary, "boundary", 0, "Boundary width for artificial_peak_boundaries")
	cmd.Flags().Int64Var(&upBound, "up_bound", 0, "Maximum upstream distance")
	cmd.Flags().Int64Var(&downBound, "down_bound", 0, "Maximum downstream distance")
	cmd.Flags().BoolVar(&dropColumns, "drop_columns", false, "Retain only name/chr/start/end from the input columns")
	cmd.Flags().StringVar(&speciesGenome, "species_genome", "", "UCSC genome assembly (e.g. hg38); enables the ucsc_genome_browser_urls column")
	cmd.Flags().Float64Var(&viewWindow, "view_window", nearest.DefaultViewWindow, "Fraction of the UCSC browser window the peak occupies")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if peakFile == "" || peakType == "" || species == "" {
			return &perrors.ConfigError{Token: "peak2gene", Msg: "--peak_file, --peak_type, and --species are required"}
		}
		hasUpBound = cmd.Flags().Changed("up_bound")
		hasDownBound = cmd.Flags().Changed("down_bound")
		return nil
	}

	return cmd
}

// resolveRefDir returns refDir unchanged if set, otherwise ensures
// species's reference archive is downloaded/extracted under the
// user's cache directory and returns that path.
func resolveRefDir(ctx context.Context, log *zap.SugaredLogger, refDir, species string) (string, error) {
	if refDir != "" {
		return refDir, nil
	}
	cacheDir, err := userCacheDir()
	if err != nil {
		return "", err
	}
	return refstore.EnsureReference(ctx, log, species, refstore.Options{CacheDir: cacheDir})
}
