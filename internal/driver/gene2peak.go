package driver

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/peakscout/peakscout/internal/ivltable"
	"github.com/peakscout/peakscout/internal/nearest"
	"github.com/peakscout/peakscout/internal/perrors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Gene2PeakOptions configures a RunGene2Peak call. Search.FeatureCol
// is overwritten to "name"; Search.UpBound/DownBound are forced nil
// per spec §4.4.
type Gene2PeakOptions struct {
	Species     string
	RefDir      string
	GeneNames   []string
	Search      nearest.Options
	Concurrency int
}

// RunGene2Peak materializes the requested genes' intervals from the
// gene reference, partitions the peak set by chromosome, and for
// every chromosome holding a requested gene runs the nearest-feature
// search against that chromosome's peaks (an empty reference pair if
// the chromosome has no peaks at all). A gene name absent from every
// reference chromosome file fails the run (spec §4.4/§7).
func RunGene2Peak(ctx context.Context, log *zap.SugaredLogger, peaks *ivltable.Table, opts Gene2PeakOptions) (*ivltable.Table, error) {
	genes, err := lookupGenes(opts.RefDir, opts.Species, opts.GeneNames)
	if err != nil {
		return nil, err
	}

	geneParts, err := ivltable.Partition(genes)
	if err != nil {
		return nil, err
	}
	peakParts, err := ivltable.Partition(peaks)
	if err != nil {
		return nil, err
	}

	chrs := make([]string, 0, len(geneParts))
	for chr := range geneParts {
		chrs = append(chrs, chr)
	}
	sort.Strings(chrs)

	results := make([]*ivltable.Table, len(chrs))

	g, _ := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}

	for i, chr := range chrs {
		i, chr := i, chr
		g.Go(func() error {
			var startTbl, endTbl *ivltable.Table
			if pt, ok := peakParts[chr]; ok {
				startTbl = pt.Select()
				endTbl = pt.SortByEnd().Select()
			} else {
				startTbl = ivltable.New()
				startTbl.Name = []string{}
				endTbl = ivltable.New()
				endTbl.Name = []string{}
			}
			// nearest.Search's generic FeatureCol lookup always reads
			// from the Cols map, even for "name" (which otherwise
			// lives in the dedicated Name field for pass-through).
			startTbl.SetCol("name", startTbl.Name)
			endTbl.SetCol("name", endTbl.Name)

			ref := nearest.Reference{Starts: startTbl, Ends: endTbl}
			searchOpts := opts.Search
			searchOpts.FeatureCol = "name"
			searchOpts.UpBound = nil
			searchOpts.DownBound = nil

			out, err := nearest.Search(geneParts[chr], ref, searchOpts)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Infow("gene2peak complete", "genes", len(opts.GeneNames), "chromosomes", len(chrs))

	merged := ivltable.Concat(results...)
	return merged.SortBy(func(i, j int) bool {
		if merged.Chr[i] != merged.Chr[j] {
			return merged.Chr[i] < merged.Chr[j]
		}
		return merged.Name[i] < merged.Name[j]
	}), nil
}

// lookupGenes scans every gene reference chromosome file for the
// requested names and returns an Interval Table with Name set to the
// gene name, one row per requested gene.
func lookupGenes(refDir, species string, names []string) (*ivltable.Table, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	type hit struct {
		chr        string
		start, end int64
	}
	found := make(map[string]hit, len(names))

	pattern := filepath.Join(refDir, species, "gene", "*_start.csv")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &perrors.InputError{Source: pattern, Msg: err.Error()}
	}

	for _, f := range files {
		tbl, err := ivltable.LoadCSV(f)
		if err != nil {
			return nil, err
		}
		geneNames := tbl.Col("gene_name")
		if geneNames == nil {
			continue
		}
		for i, gn := range geneNames {
			if want[gn] {
				if _, already := found[gn]; !already {
					found[gn] = hit{chr: tbl.Chr[i], start: tbl.Start[i], end: tbl.End[i]}
				}
			}
		}
	}

	out := ivltable.New()
	out.Name = []string{}
	for _, n := range names {
		h, ok := found[n]
		if !ok {
			return nil, &perrors.GeneNotFoundError{Gene: n}
		}
		out.AppendRow(h.chr, h.start, h.end, n, nil)
	}
	return out, nil
}
