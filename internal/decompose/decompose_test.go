package decompose

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/peakscout/peakscout/internal/logging"
	"github.com/stretchr/testify/require"
)

func writeGTF(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.gtf")
	content := "#header1\n#header2\n#header3\n#header4\n#header5\n"
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readCSV(t *testing.T, path string) ([]string, [][]string) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows[0], rows[1:]
}

func TestDecomposeGroupsByFeatureAndChromosome(t *testing.T) {
	gtf := writeGTF(t,
		"chr1\tHAVANA\tgene\t100\t200\t.\t+\t.\tgene_id \"G1\"; gene_name \"Sox2\";",
		"chr1\tHAVANA\tgene\t50\t90\t.\t+\t.\tgene_id \"G2\"; gene_name \"Pou5f1\";",
		"chr2\tHAVANA\tgene\t10\t20\t.\t+\t.\tgene_id \"G3\"; gene_name \"Nanog\";",
		"chr1\tHAVANA\texon\t100\t150\t.\t+\t.\tgene_id \"G1\"; exon_number \"1\";",
	)
	outDir := t.TempDir()

	require.NoError(t, Run(logging.NoOp(), gtf, "testsp", outDir))

	geneChr1Start := filepath.Join(outDir, "testsp", "gene", "chr1_start.csv")
	geneChr2Start := filepath.Join(outDir, "testsp", "gene", "chr2_start.csv")
	exonChr1Start := filepath.Join(outDir, "testsp", "exon", "chr1_start.csv")

	require.FileExists(t, geneChr1Start)
	require.FileExists(t, geneChr2Start)
	require.FileExists(t, exonChr1Start)

	cols, rows := readCSV(t, geneChr1Start)
	require.Contains(t, cols, "gene_id")
	require.Contains(t, cols, "gene_name")
	require.Len(t, rows, 2)
	// sorted ascending by start: Pou5f1 (50) before Sox2 (100)
	startIdx := colIndex(cols, "start")
	require.Equal(t, "50", rows[0][startIdx])
	require.Equal(t, "100", rows[1][startIdx])
}

func TestDecomposeStartEndRoundTrip(t *testing.T) {
	gtf := writeGTF(t,
		"chr1\tHAVANA\tgene\t300\t400\t.\t+\t.\tgene_id \"G1\";",
		"chr1\tHAVANA\tgene\t100\t250\t.\t+\t.\tgene_id \"G2\";",
	)
	outDir := t.TempDir()
	require.NoError(t, Run(logging.NoOp(), gtf, "testsp", outDir))

	startCols, startRows := readCSV(t, filepath.Join(outDir, "testsp", "gene", "chr1_start.csv"))
	endCols, endRows := readCSV(t, filepath.Join(outDir, "testsp", "gene", "chr1_end.csv"))

	require.Len(t, startRows, 2)
	require.Len(t, endRows, 2)

	sIdx := colIndex(startCols, "start")
	eIdx := colIndex(endCols, "end")
	require.Equal(t, "100", startRows[0][sIdx])
	require.Equal(t, "300", startRows[1][sIdx])
	require.Equal(t, "250", endRows[0][eIdx])
	require.Equal(t, "400", endRows[1][eIdx])

	// both files enumerate the same gene_id set
	gIdxStart := colIndex(startCols, "gene_id")
	gIdxEnd := colIndex(endCols, "gene_id")
	gotStart := map[string]bool{}
	for _, r := range startRows {
		gotStart[r[gIdxStart]] = true
	}
	gotEnd := map[string]bool{}
	for _, r := range endRows {
		gotEnd[r[gIdxEnd]] = true
	}
	require.Equal(t, gotStart, gotEnd)
}

func TestDecomposeDedupesEqualStartKeepingFirst(t *testing.T) {
	gtf := writeGTF(t,
		"chr1\tHAVANA\tgene\t100\t150\t.\t+\t.\tgene_id \"FIRST\";",
		"chr1\tHAVANA\tgene\t100\t200\t.\t+\t.\tgene_id \"SECOND\";",
	)
	outDir := t.TempDir()
	require.NoError(t, Run(logging.NoOp(), gtf, "testsp", outDir))

	cols, rows := readCSV(t, filepath.Join(outDir, "testsp", "gene", "chr1_start.csv"))
	require.Len(t, rows, 1)
	require.Equal(t, "FIRST", rows[0][colIndex(cols, "gene_id")])
}

func TestDecomposeRejectsUnparseableAttribute(t *testing.T) {
	gtf := writeGTF(t, "chr1\tHAVANA\tgene\t100\t150\t.\t+\t.\tnovalue")
	outDir := t.TempDir()
	err := Run(logging.NoOp(), gtf, "testsp", outDir)
	require.Error(t, err)
}

func TestDecomposeRejectsEndBeforeStart(t *testing.T) {
	gtf := writeGTF(t, "chr1\tHAVANA\tgene\t200\t100\t.\t+\t.\tgene_id \"G1\";")
	outDir := t.TempDir()
	err := Run(logging.NoOp(), gtf, "testsp", outDir)
	require.Error(t, err)
}

func colIndex(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}
