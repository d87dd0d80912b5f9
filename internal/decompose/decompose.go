package decompose

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/peakscout/peakscout/internal/duckdb"
	"github.com/peakscout/peakscout/internal/perrors"
	"go.uber.org/zap"
)

// Run decomposes the GTF at gtfPath into <outDir>/<species>/<feature>/<chr>_start.csv
// and <chr>_end.csv pairs, one per distinct (feature, chromosome), per
// spec §4.1.
func Run(log *zap.SugaredLogger, gtfPath, species, outDir string) error {
	byFeature, err := parseGTF(gtfPath)
	if err != nil {
		return err
	}

	speciesDir := filepath.Join(outDir, species)
	if err := os.MkdirAll(speciesDir, 0o755); err != nil {
		return &perrors.IOError{Path: speciesDir, Err: err}
	}

	engine, err := duckdb.NewEngine()
	if err != nil {
		return fmt.Errorf("decompose: %w", err)
	}
	defer engine.Close()

	for feature, rows := range byFeature {
		log.Infow("decomposing feature", "feature", feature, "rows", len(rows))

		keys := unionKeys(rows)
		byChr := make(map[string][]row)
		for _, r := range rows {
			byChr[r.chr] = append(byChr[r.chr], r)
		}

		featureDir := filepath.Join(speciesDir, feature)
		if err := os.MkdirAll(featureDir, 0o755); err != nil {
			return &perrors.IOError{Path: featureDir, Err: err}
		}

		for chr, chrRows := range byChr {
			if err := writeChromosomePair(engine, featureDir, chr, chrRows, keys); err != nil {
				return err
			}
		}
	}

	return nil
}

// header returns the exploded CSV column order: the fixed GTF columns
// (minus feature/attribute, which are implicit/dropped), then the
// attribute keys, then a trailing row_idx used only for
// deduplication and stripped from the final output.
func header(keys []string) []string {
	cols := []string{"chr", "source", "start", "end", "score", "strand", "frame"}
	cols = append(cols, keys...)
	cols = append(cols, "row_idx")
	return cols
}

func writeChromosomePair(engine *duckdb.Engine, featureDir, chr string, rows []row, keys []string) error {
	tmp, err := os.CreateTemp("", "decompose-*.csv")
	if err != nil {
		return &perrors.IOError{Path: tmp.Name(), Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := csv.NewWriter(tmp)
	cols := header(keys)
	if err := w.Write(cols); err != nil {
		tmp.Close()
		return &perrors.IOError{Path: tmpPath, Err: err}
	}
	for _, r := range rows {
		rec := make([]string, 0, len(cols))
		rec = append(rec, r.chr, r.fixed["source"], strconv.FormatInt(r.start, 10), strconv.FormatInt(r.end, 10), r.fixed["score"], r.fixed["strand"], r.fixed["frame"])
		for _, k := range keys {
			rec = append(rec, r.attrs[k])
		}
		rec = append(rec, strconv.Itoa(r.sourceLineOrder))
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return &perrors.IOError{Path: tmpPath, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return &perrors.IOError{Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &perrors.IOError{Path: tmpPath, Err: err}
	}

	startPath := filepath.Join(featureDir, chr+"_start.csv")
	endPath := filepath.Join(featureDir, chr+"_end.csv")

	if err := engine.SortDedupByStart(tmpPath, startPath); err != nil {
		return fmt.Errorf("decompose %s: %w", chr, err)
	}
	if err := engine.SortByEnd(startPath, endPath); err != nil {
		return fmt.Errorf("decompose %s: %w", chr, err)
	}
	return nil
}
