// Package nearest implements the k-nearest-feature search: for each
// query interval on a chromosome, it emits the k closest reference
// intervals with correct overlap, boundary, and distance-bound
// semantics (spec §4.3).
package nearest

import (
	"fmt"

	"github.com/peakscout/peakscout/internal/ivltable"
	"github.com/peakscout/peakscout/internal/perrors"
)

// na fills the feature and distance of slots for which fewer than k
// candidates exist.
const na = "N/A"

// DefaultViewWindow is the fraction of the UCSC browser window the
// peak itself occupies, when URL derivation is enabled and the
// caller didn't specify one.
const DefaultViewWindow = 0.2

// Reference is one (species, feature, chromosome) pair: the same
// feature set sorted two ways. Starts.Col(FeatureCol) and
// Ends.Col(FeatureCol) must both be present; when FeatureCol is
// "gene_name", "gene_id" and "gene_type" must also be present on
// both tables.
type Reference struct {
	Starts *ivltable.Table // sorted ascending by Start
	Ends   *ivltable.Table // sorted ascending by End
}

// Options configures one Search call.
type Options struct {
	// FeatureCol names the reference identifier column: "gene_name"
	// for the common peak2gene path, or "name" for gene2peak.
	FeatureCol string

	// UpBound/DownBound cap the distance to upstream/downstream
	// features. Nil means unbounded.
	UpBound   *int64
	DownBound *int64

	// K is the number of nearest features to emit per query, K >= 1.
	K int

	// DropColumns, if true, retains only name/chr/start/end from the
	// query plus the result columns; otherwise all query columns
	// pass through untouched.
	DropColumns bool

	// SpeciesGenome, if non-empty, enables the ucsc_genome_browser_urls
	// output column.
	SpeciesGenome string
	// ViewWindow is the fraction of the browser window the peak
	// occupies; defaults to DefaultViewWindow when zero.
	ViewWindow float64
}

func (o Options) viewWindow() float64 {
	if o.ViewWindow == 0 {
		return DefaultViewWindow
	}
	return o.ViewWindow
}

func overlaps(qs, qe, fs, fe int64) bool {
	return (fs <= qs && qs <= fe) || (fs <= qe && qe <= fe)
}

// Search computes the k nearest reference features for every row of
// roi, which must already be sorted ascending by Start (the driver is
// responsible for this, since the monotonic overlap cursor below
// depends on it).
func Search(roi *ivltable.Table, ref Reference, opts Options) (*ivltable.Table, error) {
	if opts.K < 1 {
		return nil, &perrors.ConfigError{Token: fmt.Sprint(opts.K), Msg: "k must be >= 1"}
	}
	if ref.Starts.Len() != ref.Ends.Len() {
		return nil, &perrors.InputError{Source: "reference pair", Msg: "start-sorted and end-sorted tables have different row counts"}
	}
	if !ref.Starts.HasCol(opts.FeatureCol) || !ref.Ends.HasCol(opts.FeatureCol) {
		return nil, &perrors.InputError{Source: "reference pair", Msg: fmt.Sprintf("missing feature column %q", opts.FeatureCol)}
	}
	isGene := opts.FeatureCol == "gene_name"
	if isGene {
		for _, col := range []string{"gene_id", "gene_type"} {
			if !ref.Starts.HasCol(col) || !ref.Ends.HasCol(col) {
				return nil, &perrors.InputError{Source: "reference pair", Msg: fmt.Sprintf("missing required gene column %q", col)}
			}
		}
	}

	n := roi.Len()
	k := opts.K

	var base *ivltable.Table
	if opts.DropColumns {
		base = roi.Select()
	} else {
		base = roi.Clone()
	}

	featureCols := make([][]string, k)
	distCols := make([][]string, k)
	var geneIDCols, geneTypeCols [][]string
	for i := range featureCols {
		featureCols[i] = make([]string, n)
		distCols[i] = make([]string, n)
	}
	if isGene {
		geneIDCols = make([][]string, k)
		geneTypeCols = make([][]string, k)
		for i := range geneIDCols {
			geneIDCols[i] = make([]string, n)
			geneTypeCols[i] = make([]string, n)
		}
	}

	emit := func(row, slot int, tbl *ivltable.Table, idx int, dist string) {
		featureCols[slot][row] = tbl.Col(opts.FeatureCol)[idx]
		distCols[slot][row] = dist
		if isGene {
			geneIDCols[slot][row] = tbl.Col("gene_id")[idx]
			geneTypeCols[slot][row] = tbl.Col("gene_type")[idx]
		}
	}
	emitNA := func(row, slot int) {
		featureCols[slot][row] = na
		distCols[slot][row] = na
		if isGene {
			geneIDCols[slot][row] = na
			geneTypeCols[slot][row] = na
		}
	}

	overlapIdx := 0
	var overlapSet []int // global indices into ref.Starts, increasing start order

	for r := 0; r < n; r++ {
		qs, qe := roi.Start[r], roi.End[r]

		dsUpper := ref.Starts.Len()
		if opts.DownBound != nil {
			dsUpper = ivltable.SearchRight(ref.Starts.Start, qe+*opts.DownBound)
		}
		usLower := 0
		if opts.UpBound != nil {
			usLower = ivltable.SearchLeft(ref.Ends.End, qs-*opts.UpBound)
		}
		usUpper := ivltable.SearchRight(ref.Ends.End, qe)

		// Drop survivors that no longer overlap; build a fresh slice
		// in one pass to avoid mutating while iterating (spec §9).
		survivors := make([]int, 0, len(overlapSet))
		for _, gi := range overlapSet {
			if overlaps(qs, qe, ref.Starts.Start[gi], ref.Starts.End[gi]) {
				survivors = append(survivors, gi)
			}
		}
		overlapSet = survivors

		for overlapIdx < dsUpper && ref.Starts.Start[overlapIdx] <= qe {
			if overlaps(qs, qe, ref.Starts.Start[overlapIdx], ref.Starts.End[overlapIdx]) {
				overlapSet = append(overlapSet, overlapIdx)
			}
			overlapIdx++
		}

		slot := 0
		slotsLeft := k

		for oi := 0; oi < len(overlapSet) && slotsLeft > 0; oi++ {
			emit(r, slot, ref.Starts, overlapSet[oi], "0")
			slot++
			slotsLeft--
		}

		ds := overlapIdx
		us := usUpper - 1

		for slotsLeft > 0 && us >= usLower && ds < dsUpper {
			dsDist := ref.Starts.Start[ds] - qe
			if dsDist < 0 {
				dsDist = 0
			}
			usDist := qs - ref.Ends.End[us]
			if usDist < 0 {
				usDist = 0
			}

			if dsDist == 0 {
				ds++
				continue
			}
			if usDist == 0 {
				us--
				continue
			}

			if dsDist < usDist {
				emit(r, slot, ref.Starts, ds, fmt.Sprint(dsDist))
				ds++
			} else {
				emit(r, slot, ref.Ends, us, fmt.Sprint(-usDist))
				us--
			}
			slot++
			slotsLeft--
		}

		if slotsLeft > 0 && us < usLower {
			for slotsLeft > 0 && ds < dsUpper {
				dsDist := ref.Starts.Start[ds] - qe
				if dsDist < 0 {
					dsDist = 0
				}
				emit(r, slot, ref.Starts, ds, fmt.Sprint(dsDist))
				ds++
				slot++
				slotsLeft--
			}
		} else if slotsLeft > 0 && ds >= dsUpper {
			for slotsLeft > 0 && us >= usLower {
				usDist := qs - ref.Ends.End[us]
				if usDist < 0 {
					usDist = 0
				}
				emit(r, slot, ref.Ends, us, fmt.Sprint(-usDist))
				us--
				slot++
				slotsLeft--
			}
		}

		for slotsLeft > 0 {
			emitNA(r, slot)
			slot++
			slotsLeft--
		}
	}

	for i := 0; i < k; i++ {
		base.SetCol(fmt.Sprintf("closest_%s_%d", opts.FeatureCol, i+1), featureCols[i])
		base.SetCol(fmt.Sprintf("closest_%s_%d_dist", opts.FeatureCol, i+1), distCols[i])
		if isGene {
			base.SetCol(fmt.Sprintf("closest_%s_%d_gene_id", opts.FeatureCol, i+1), geneIDCols[i])
			base.SetCol(fmt.Sprintf("closest_%s_%d_gene_type", opts.FeatureCol, i+1), geneTypeCols[i])
		}
	}

	if opts.SpeciesGenome != "" {
		urls := make([]string, n)
		for r := 0; r < n; r++ {
			urls[r] = ucscURL(opts.SpeciesGenome, base.Chr[r], base.Start[r], base.End[r], opts.viewWindow())
		}
		base.SetCol("ucsc_genome_browser_urls", urls)
	}

	return base, nil
}
