package ivltable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/peakscout/peakscout/internal/perrors"
)

// LoadCSV reads a decomposer-produced reference file (or any CSV with
// chr/start/end columns) into a Table. "chr"/"start"/"end" bind to
// the fixed columns; "name" (if present) binds to Name; everything
// else becomes a pass-through column, in header order.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("read header: %v", err)}
	}

	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[h] = i
	}
	chrI, ok1 := colIdx["chr"]
	startI, ok2 := colIdx["start"]
	endI, ok3 := colIdx["end"]
	if !ok1 || !ok2 || !ok3 {
		return nil, &perrors.InputError{Source: path, Msg: "missing required chr/start/end column"}
	}
	nameI, hasName := colIdx["name"]

	var extraCols []string
	for _, h := range header {
		if h == "chr" || h == "start" || h == "end" || h == "name" {
			continue
		}
		extraCols = append(extraCols, h)
	}

	t := New()
	if hasName {
		t.Name = []string{}
	}
	for _, c := range extraCols {
		t.SetCol(c, []string{})
	}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("read row: %v", err)}
		}

		start, err := strconv.ParseInt(rec[startI], 10, 64)
		if err != nil {
			return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("invalid start %q", rec[startI])}
		}
		end, err := strconv.ParseInt(rec[endI], 10, 64)
		if err != nil {
			return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("invalid end %q", rec[endI])}
		}

		t.Chr = append(t.Chr, rec[chrI])
		t.Start = append(t.Start, start)
		t.End = append(t.End, end)
		if hasName {
			t.Name = append(t.Name, rec[nameI])
		}
		for _, c := range extraCols {
			t.Cols[c] = append(t.Cols[c], rec[colIdx[c]])
		}
	}

	return t, nil
}
