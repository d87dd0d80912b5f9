package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecomposePreRunERequiresFlags(t *testing.T) {
	cmd := newDecomposeCmd()
	require.Error(t, cmd.PreRunE(cmd, nil))

	require.NoError(t, cmd.Flags().Set("gtf_file", "annotation.gtf"))
	require.Error(t, cmd.PreRunE(cmd, nil), "species is still missing")

	require.NoError(t, cmd.Flags().Set("species", "hg38"))
	require.NoError(t, cmd.PreRunE(cmd, nil))
}
