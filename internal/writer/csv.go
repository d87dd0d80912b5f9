// Package writer writes an Interval Table's nearest-feature search
// results out to disk.
package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/peakscout/peakscout/internal/ivltable"
	"github.com/peakscout/peakscout/internal/perrors"
)

// OutputType selects the on-disk format for WriteTable.
type OutputType string

const (
	CSV  OutputType = "csv"
	XLSX OutputType = "xlsx"
)

// WriteTable writes t to outDir/outputName.<ext>. Only CSV is
// implemented; XLSX styling (alternating row fill, chr auto-filter,
// column auto-width) is out of core scope and returns a ConfigError
// rather than silently falling back to CSV.
func WriteTable(t *ivltable.Table, outDir, outputName string, outputType OutputType) (string, error) {
	switch outputType {
	case "", CSV:
		return writeCSV(t, outDir, outputName)
	case XLSX:
		return "", &perrors.ConfigError{Token: string(outputType), Msg: "xlsx output is not supported; use csv"}
	default:
		return "", &perrors.ConfigError{Token: string(outputType), Msg: "unknown output type"}
	}
}

func writeCSV(t *ivltable.Table, outDir, outputName string) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", &perrors.IOError{Path: outDir, Err: err}
	}

	path := filepath.Join(outDir, outputName+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", &perrors.IOError{Path: path, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"chr", "start", "end"}
	if t.HasName() {
		header = append(header, "name")
	}
	header = append(header, t.ColOrder...)
	if err := w.Write(header); err != nil {
		return "", &perrors.IOError{Path: path, Err: err}
	}

	row := make([]string, len(header))
	for i := 0; i < t.Len(); i++ {
		row[0] = t.Chr[i]
		row[1] = strconv.FormatInt(t.Start[i], 10)
		row[2] = strconv.FormatInt(t.End[i], 10)
		col := 3
		if t.HasName() {
			row[col] = t.Name[i]
			col++
		}
		for _, c := range t.ColOrder {
			row[col] = t.Cols[c][i]
			col++
		}
		if err := w.Write(row); err != nil {
			return "", &perrors.IOError{Path: path, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", &perrors.IOError{Path: path, Err: err}
	}

	return path, nil
}
