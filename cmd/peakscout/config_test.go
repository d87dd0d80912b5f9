package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestRunConfigSetAndGet(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfgFile := filepath.Join(t.TempDir(), ".peakscout.yaml")
	viper.SetConfigFile(cfgFile)

	require.NoError(t, runConfigSet("refstore.bucket", "my-bucket"))
	require.Equal(t, "my-bucket", viper.Get("refstore.bucket"))

	require.NoError(t, runConfigGet("refstore.bucket"))
	require.Error(t, runConfigGet("does.not.exist"))
}

func TestRunConfigSetCoercesBooleans(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfgFile := filepath.Join(t.TempDir(), ".peakscout.yaml")
	viper.SetConfigFile(cfgFile)

	require.NoError(t, runConfigSet("verbose", "true"))
	require.Equal(t, true, viper.Get("verbose"))
}

func TestRunConfigSetRejectsUnknownKey(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfgFile := filepath.Join(t.TempDir(), ".peakscout.yaml")
	viper.SetConfigFile(cfgFile)

	require.Error(t, runConfigSet("not.a.real.key", "anything"))
}

func TestRunConfigSetValidatesSpecies(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfgFile := filepath.Join(t.TempDir(), ".peakscout.yaml")
	viper.SetConfigFile(cfgFile)

	require.Error(t, runConfigSet("species", "not-a-real-species"))

	require.NoError(t, runConfigSet("species", "hg38"))
	require.Equal(t, "hg38", viper.Get("species"))
}

func TestRunConfigSetCoercesNumericKeys(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfgFile := filepath.Join(t.TempDir(), ".peakscout.yaml")
	viper.SetConfigFile(cfgFile)

	require.Error(t, runConfigSet("num_features", "0"), "must be >= 1")
	require.NoError(t, runConfigSet("num_features", "3"))
	require.Equal(t, 3, viper.Get("num_features"))

	require.Error(t, runConfigSet("view_window", "1.5"), "must be in (0, 1)")
	require.NoError(t, runConfigSet("view_window", "0.2"))
	require.Equal(t, 0.2, viper.Get("view_window"))

	require.Error(t, runConfigSet("output_type", "xlsx"))
	require.NoError(t, runConfigSet("output_type", "csv"))
}

func TestRunConfigShowWithNoSettings(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	require.NoError(t, runConfigShow())
}
