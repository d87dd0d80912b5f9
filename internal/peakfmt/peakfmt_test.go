package peakfmt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peakscout/peakscout/internal/perrors"
	"github.com/stretchr/testify/require"
)

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
}

func TestReadMACS2BEDShiftsBedOrigin(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.bed")
	writeLines(t, path, []string{
		"chr1\t99\t200\tpeak_1\t100\t.\t5.0\t10.0\t8.0\tpeak_1",
	})

	tbl, err := Read(path, ReadOptions{Type: MACS2BED})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	// BED is 0-based half-open; +1 shift makes both ends 1-based inclusive.
	require.Equal(t, int64(100), tbl.Start[0])
	require.Equal(t, int64(201), tbl.End[0])
	require.Equal(t, []string{"peak_1"}, tbl.Name)
	require.Equal(t, []string{"5.0"}, tbl.Col("signal"))
}

func TestReadMACS2BEDTruncatesShortRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.bed")
	writeLines(t, path, []string{
		"chr1\t99\t200\tpeak_1",
	})

	tbl, err := Read(path, ReadOptions{Type: MACS2BED})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, []string{"peak_1"}, tbl.Name)
	require.False(t, tbl.HasCol("score"))
}

func TestReadSEACR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.seacr.bed")
	writeLines(t, path, []string{
		"chr2\t499\t600\t12.5\t8.3\tchr2:500-600",
	})

	tbl, err := Read(path, ReadOptions{Type: SEACR})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, "chr2", tbl.Chr[0])
	require.Equal(t, int64(500), tbl.Start[0])
	require.Equal(t, int64(601), tbl.End[0])
	require.Equal(t, []string{"12.5"}, tbl.Name)
	require.Equal(t, []string{"chr2:500-600"}, tbl.Col("region"))
}

func TestReadBED6(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.bed6")
	writeLines(t, path, []string{
		"chr3\t9\t20\tregion_a\t0\t+",
	})

	tbl, err := Read(path, ReadOptions{Type: BED6})
	require.NoError(t, err)
	require.Equal(t, int64(10), tbl.Start[0])
	require.Equal(t, int64(21), tbl.End[0])
	require.Equal(t, []string{"region_a"}, tbl.Name)
	require.Equal(t, []string{"+"}, tbl.Col("strand"))
}

func macs2XLSLines(rows ...string) []string {
	lines := make([]string, 0, 22+1+len(rows))
	for i := 0; i < 22; i++ {
		lines = append(lines, "# comment")
	}
	lines = append(lines, "chr\tstart\tend\tlength\tabs_summit\tpileup\t-log10(pvalue)\tfold_enrichment\t-log10(qvalue)\tname")
	lines = append(lines, rows...)
	return lines
}

func TestReadMACS2XLSRenamesPValueColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.xls")
	writeLines(t, path, macs2XLSLines(
		"chr1\t1000\t2000\t1001\t1500\t20.0\t5.0\t3.0\t4.0\tpeak_1",
	))

	tbl, err := Read(path, ReadOptions{Type: MACS2XLS})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, int64(1000), tbl.Start[0])
	require.Equal(t, int64(2000), tbl.End[0])
	require.Equal(t, []string{"peak_1"}, tbl.Name)
	require.Equal(t, []string{"5.0"}, tbl.Col("neg_log10_pvalue"))
	require.Equal(t, []string{"4.0"}, tbl.Col("neg_log10_qvalue"))
	require.Equal(t, []string{"1500"}, tbl.Col("abs_summit"))
	// MACS2 xls is already 1-based; not subject to the BED-origin shift.
}

func TestReadMACS2XLSPeakSummitBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.xls")
	writeLines(t, path, macs2XLSLines(
		"chr1\t1000\t2000\t1001\t1500\t20.0\t5.0\t3.0\t4.0\tpeak_1",
	))

	tbl, err := Read(path, ReadOptions{Type: MACS2XLS, Boundary: PeakSummit})
	require.NoError(t, err)
	require.Equal(t, int64(1500), tbl.Start[0])
	require.Equal(t, int64(1500), tbl.End[0])
}

func TestReadMACS2XLSArtificialBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.xls")
	writeLines(t, path, macs2XLSLines(
		"chr1\t1000\t2000\t1001\t1500\t20.0\t5.0\t3.0\t4.0\tpeak_1",
	))

	tbl, err := Read(path, ReadOptions{Type: MACS2XLS, Boundary: ArtificialPeakBoundaries, BoundaryWidth: 250})
	require.NoError(t, err)
	require.Equal(t, int64(1250), tbl.Start[0])
	require.Equal(t, int64(1750), tbl.End[0])
}

func TestReadMACS2XLSArtificialBoundaryRejectsZeroWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.xls")
	writeLines(t, path, macs2XLSLines(
		"chr1\t1000\t2000\t1001\t1500\t20.0\t5.0\t3.0\t4.0\tpeak_1",
	))

	_, err := Read(path, ReadOptions{Type: MACS2XLS, Boundary: ArtificialPeakBoundaries})
	require.Error(t, err)
	var cfgErr *perrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestPeakSummitRequiresAbsSummitColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.bed")
	writeLines(t, path, []string{
		"chr1\t99\t200\tpeak_1\t100\t.\t5.0\t10.0\t8.0\tpeak_1",
	})

	_, err := Read(path, ReadOptions{Type: MACS2BED, Boundary: PeakSummit})
	require.Error(t, err)
	var inErr *perrors.InputError
	require.ErrorAs(t, err, &inErr)
}

func TestReadMACS2Consensus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "consensus.bed")
	lines := make([]string, 0, 25)
	for i := 0; i < 24; i++ {
		lines = append(lines, "# comment")
	}
	lines = append(lines, "chr\tstart\tend\tpeak_names\tnum_samples")
	lines = append(lines, "chr1\t99\t200\tpeak_1,peak_2\t2")
	writeLines(t, path, lines)

	tbl, err := Read(path, ReadOptions{Type: MACS2Consensus})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	require.Equal(t, int64(100), tbl.Start[0])
	require.Equal(t, int64(201), tbl.End[0])
	require.Equal(t, []string{"peak_1,peak_2"}, tbl.Name)
	require.Equal(t, []string{"2"}, tbl.Col("num_samples"))
}

func TestReadUnknownTypeIsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.bed")
	writeLines(t, path, []string{"chr1\t1\t2\tp\t0\t."})

	_, err := Read(path, ReadOptions{Type: Type("not_a_format")})
	require.Error(t, err)
	var cfgErr *perrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestUnknownBoundaryOptionIsConfigError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.bed6")
	writeLines(t, path, []string{"chr1\t1\t2\tp\t0\t+"})

	_, err := Read(path, ReadOptions{Type: BED6, Boundary: BoundaryOption("bogus")})
	require.Error(t, err)
	var cfgErr *perrors.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestReadRejectsEndBeforeStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks.bed6")
	writeLines(t, path, []string{"chr1\t100\t50\tp\t0\t+"})

	_, err := Read(path, ReadOptions{Type: BED6})
	require.Error(t, err)
	var inErr *perrors.InputError
	require.ErrorAs(t, err, &inErr)
}
