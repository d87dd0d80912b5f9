package driver

import (
	"context"
	"sort"

	"github.com/peakscout/peakscout/internal/ivltable"
	"github.com/peakscout/peakscout/internal/nearest"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Peak2GeneOptions configures a RunPeak2Gene call. Search.FeatureCol
// is overwritten to "gene_name" regardless of caller input.
type Peak2GeneOptions struct {
	Species     string
	RefDir      string
	Search      nearest.Options
	Concurrency int // 0 means unbounded (one goroutine per chromosome)
}

// RunPeak2Gene takes peaks already normalized to the Interval Table
// shape (the caller does that via internal/peakfmt), partitions them
// by chromosome, and for each partition loads the gene reference pair
// and runs the nearest-feature search. Chromosomes absent from the
// reference are logged and skipped rather than failing the run
// (spec §4.4/§7).
func RunPeak2Gene(ctx context.Context, log *zap.SugaredLogger, roi *ivltable.Table, opts Peak2GeneOptions) (*ivltable.Table, error) {
	parts, err := ivltable.Partition(roi)
	if err != nil {
		return nil, err
	}

	chrs := make([]string, 0, len(parts))
	for chr := range parts {
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
			ref, ok, err := loadReference(opts.RefDir, opts.Species, "gene", chr)
			if err != nil {
				return err
			}
			if !ok {
				log.Warnw("reference missing, skipping chromosome", "err", referenceMissing(opts.Species, "gene", chr).Error())
				return nil
			}

			searchOpts := opts.Search
			searchOpts.FeatureCol = "gene_name"
			out, err := nearest.Search(parts[chr], ref, searchOpts)
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

	merged := ivltable.Concat(results...)
	return merged.SortBy(func(i, j int) bool {
		if merged.Chr[i] != merged.Chr[j] {
			return merged.Chr[i] < merged.Chr[j]
		}
		return merged.Start[i] < merged.Start[j]
	}), nil
}
