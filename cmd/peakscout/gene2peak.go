package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/peakscout/peakscout/internal/driver"
	"github.com/peakscout/peakscout/internal/logging"
	"github.com/peakscout/peakscout/internal/nearest"
	"github.com/peakscout/peakscout/internal/peakfmt"
	"github.com/peakscout/peakscout/internal/perrors"
	"github.com/peakscout/peakscout/internal/writer"
	"github.com/spf13/cobra"
)

func newGene2PeakCmd() *cobra.Command {
	var (
		peakFile      string
		peakType      string
		geneFile      string
		species       string
		numFeatures   int
		refDir        string
		outputName    string
		outDir        string
		outputType    string
		option        string
		boundary      int64
		hasUpBound    bool
		hasDownBound  bool
		upBound       int64
		downBound     int64
		dropColumns   bool
		speciesGenome string
		viewWindow    float64
	)

	cmd := &cobra.Command{
		Use:   "gene2peak",
		Short: "Find the nearest peak(s) to each gene",
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

			genes, err := readGeneNames(geneFile)
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

			out, err := driver.RunGene2Peak(cmd.Context(), log, peaks, driver.Gene2PeakOptions{
				Species:   species,
				RefDir:    dir,
				GeneNames: genes,
				Search:    searchOpts,
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
	cmd.Flags().StringVar(&geneFile, "gene_file", "", "Headerless single-column file of gene names (required)")
	cmd.Flags().StringVar(&species, "species", "", "Species (required)")
	cmd.Flags().IntVar(&numFeatures, "num_features", 1, "Number of nearest peaks to report")
	cmd.Flags().IntVar(&numFeatures, "k", 1, "Alias for --num_features")
	cmd.Flags().StringVar(&refDir, "ref_dir", "", "Reference directory (auto-downloaded to the cache if omitted)")
	cmd.Flags().StringVar(&outputName, "output_name", "gene2peak", "Output file base name")
	cmd.Flags().StringVar(&outDir, "out_dir", ".", "Output directory")
	cmd.Flags().StringVar(&outputType, "output_type", "csv", "Output type: csv")
	cmd.Flags().StringVar(&option, "option", "native_peak_boundaries", "Peak boundary option")
	cmd.Flags().Int64Var(&boundary, "boundary", 0, "Boundary width for artificial_peak_boundaries")
	cmd.Flags().Int64Var(&upBound, "up_bound", 0, "Maximum upstream distance (not applied: gene2peak searches are unbounded)")
	cmd.Flags().Int64Var(&downBound, "down_bound", 0, "Maximum downstream distance (not applied: gene2peak searches are unbounded)")
	cmd.Flags().BoolVar(&dropColumns, "drop_columns", false, "Retain only name/chr/start/end from the input columns")
	cmd.Flags().StringVar(&speciesGenome, "species_genome", "", "UCSC genome assembly (e.g. hg38); enables the ucsc_genome_browser_urls column")
	cmd.Flags().Float64Var(&viewWindow, "view_window", nearest.DefaultViewWindow, "Fraction of the UCSC browser window the peak occupies")

	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if peakFile == "" || peakType == "" || species == "" || geneFile == "" {
			return &perrors.ConfigError{Token: "gene2peak", Msg: "--peak_file, --peak_type, --gene_file, and --species are required"}
		}
		hasUpBound = cmd.Flags().Changed("up_bound")
		hasDownBound = cmd.Flags().Changed("down_bound")
		return nil
	}

	return cmd
}

// readGeneNames reads a headerless single-column file of gene names,
// one per line, per original_source's process_genes.
func readGeneNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}
	return names, nil
}
