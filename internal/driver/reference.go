package driver

import (
	"os"
	"path/filepath"

	"github.com/peakscout/peakscout/internal/ivltable"
	"github.com/peakscout/peakscout/internal/nearest"
	"github.com/peakscout/peakscout/internal/perrors"
)

// loadReference loads the start/end reference pair for one
// (species, feature, chromosome). The second return value is false
// (with a nil error) when the reference files simply don't exist for
// this chromosome — the caller recovers that case per spec §7.
func loadReference(refDir, species, feature, chr string) (nearest.Reference, bool, error) {
	startPath := filepath.Join(refDir, species, feature, chr+"_start.csv")
	endPath := filepath.Join(refDir, species, feature, chr+"_end.csv")

	if !fileExists(startPath) || !fileExists(endPath) {
		return nearest.Reference{}, false, nil
	}

	starts, err := ivltable.LoadCSV(startPath)
	if err != nil {
		return nearest.Reference{}, false, err
	}
	ends, err := ivltable.LoadCSV(endPath)
	if err != nil {
		return nearest.Reference{}, false, err
	}
	return nearest.Reference{Starts: starts, Ends: ends}, true, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// referenceMissing wraps the recoverable case into the typed error
// callers may want to log/inspect, without forcing it onto the
// return path (most callers just treat "ok == false" as skip-and-warn).
func referenceMissing(species, feature, chr string) error {
	return &perrors.ReferenceMissingError{Species: species, Feature: feature, Chrom: chr, Err: os.ErrNotExist}
}
