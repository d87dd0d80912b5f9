package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGene2PeakPreRunERequiresFlags(t *testing.T) {
	cmd := newGene2PeakCmd()
	require.Error(t, cmd.PreRunE(cmd, nil))

	require.NoError(t, cmd.Flags().Set("peak_file", "peaks.xls"))
	require.NoError(t, cmd.Flags().Set("peak_type", "macs2_xls"))
	require.NoError(t, cmd.Flags().Set("species", "hg38"))
	require.Error(t, cmd.PreRunE(cmd, nil), "gene_file is still missing")

	require.NoError(t, cmd.Flags().Set("gene_file", "genes.txt"))
	require.NoError(t, cmd.PreRunE(cmd, nil))
}

func TestReadGeneNamesSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "genes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Sox2\n\nPou5f1\nNanog\n"), 0o644))

	names, err := readGeneNames(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Sox2", "Pou5f1", "Nanog"}, names)
}

func TestReadGeneNamesMissingFile(t *testing.T) {
	_, err := readGeneNames(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
