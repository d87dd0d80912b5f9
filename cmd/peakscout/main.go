// Package main provides the peakscout command-line tool.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "peakscout",
		Short:   "peakscout: find the nearest genomic features to a set of intervals",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newDecomposeCmd())
	cmd.AddCommand(newPeak2GeneCmd())
	cmd.AddCommand(newGene2PeakCmd())
	cmd.AddCommand(newConfigCmd())
	return cmd
}

// userCacheDir returns ~/.peakscout/ref, creating it if necessary.
func userCacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".peakscout", "ref")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reference cache directory: %w", err)
	}
	return dir, nil
}

func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.SetConfigFile(filepath.Join(home, ".peakscout.yaml"))
	viper.SetConfigType("yaml")
	_ = viper.ReadInConfig()
}
