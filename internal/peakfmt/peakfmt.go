// Package peakfmt reads peak-caller output formats (MACS2 xls,
// MACS2 BED/narrowPeak, MACS2 consensus BED, SEACR, BED6) and
// normalizes them into the Interval Table shape the core operates on.
package peakfmt

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/peakscout/peakscout/internal/ivltable"
	"github.com/peakscout/peakscout/internal/perrors"
)

// Type names a supported peak-caller output format.
type Type string

const (
	MACS2XLS       Type = "macs2_xls"
	MACS2BED       Type = "macs2_bed"
	MACS2Consensus Type = "macs2_consensus"
	SEACR          Type = "seacr"
	BED6           Type = "bed6"
)

var bedOrigin = map[Type]bool{
	MACS2BED:       true,
	MACS2Consensus: true,
	SEACR:          true,
	BED6:           true,
}

// BoundaryOption selects how a peak's start/end are derived.
type BoundaryOption string

const (
	NativePeakBoundaries     BoundaryOption = "native_peak_boundaries"
	PeakSummit               BoundaryOption = "peak_summit"
	ArtificialPeakBoundaries BoundaryOption = "artificial_peak_boundaries"
)

// ReadOptions configures Read.
type ReadOptions struct {
	Type     Type
	Boundary BoundaryOption
	BoundaryWidth int64 // required when Boundary == ArtificialPeakBoundaries
}

// Read parses a peak file of the given type and applies the boundary
// option, returning a normalized Interval Table (chr, start, end,
// name, plus caller-specific pass-through columns).
func Read(path string, opts ReadOptions) (*ivltable.Table, error) {
	var tbl *ivltable.Table
	var err error

	switch opts.Type {
	case MACS2XLS:
		tbl, err = readMACS2XLS(path)
	case MACS2BED:
		tbl, err = readDelimited(path, []string{"chr", "start", "end", "name", "score", "strand", "signal", "pvalue", "qvalue", "peak"}, 0)
	case MACS2Consensus:
		tbl, err = readMACS2Consensus(path)
	case SEACR:
		tbl, err = readDelimited(path, []string{"chr", "start", "end", "name", "max_signal", "region"}, 0)
	case BED6:
		tbl, err = readDelimited(path, []string{"chr", "start", "end", "name", "score", "strand"}, 0)
	default:
		return nil, &perrors.ConfigError{Token: string(opts.Type), Msg: "unknown peak type"}
	}
	if err != nil {
		return nil, err
	}

	if bedOrigin[opts.Type] {
		shiftBedOrigin(tbl)
	}

	if err := applyBoundary(tbl, opts); err != nil {
		return nil, err
	}

	return tbl, nil
}

// shiftBedOrigin applies the +1 BED-to-1-based-inclusive shift to
// start and end, per spec §6.
func shiftBedOrigin(t *ivltable.Table) {
	for i := range t.Start {
		t.Start[i]++
		t.End[i]++
	}
}

// applyBoundary mutates t's start/end according to opts.Boundary.
// peak_summit/artificial_peak_boundaries require an "abs_summit"
// pass-through column (MACS2 xls only).
func applyBoundary(t *ivltable.Table, opts ReadOptions) error {
	switch opts.Boundary {
	case "", NativePeakBoundaries:
		return nil
	case PeakSummit:
		return applySummit(t, 0)
	case ArtificialPeakBoundaries:
		if opts.BoundaryWidth <= 0 {
			return &perrors.ConfigError{Token: string(opts.Boundary), Msg: "boundary option requires a positive boundary width"}
		}
		return applySummit(t, opts.BoundaryWidth)
	default:
		return &perrors.ConfigError{Token: string(opts.Boundary), Msg: "unknown boundary option"}
	}
}

func applySummit(t *ivltable.Table, width int64) error {
	summits := t.Col("abs_summit")
	if summits == nil {
		return &perrors.InputError{Source: "peak file", Msg: "peak_summit/artificial_peak_boundaries require an abs_summit column (MACS2 xls only)"}
	}
	for i, s := range summits {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return &perrors.InputError{Source: "peak file", Msg: fmt.Sprintf("invalid abs_summit %q", s)}
		}
		t.Start[i] = v - width
		t.End[i] = v + width
	}
	return nil
}

// readDelimited reads a headerless tab-separated peak file with the
// given fixed column order, truncated to the file's actual width
// (spec §6's MACS2 BED/narrowPeak rule, reused for SEACR/BED6 which
// are always full-width).
func readDelimited(path string, colNames []string, skipLines int) (*ivltable.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	t := ivltable.New()
	t.Name = []string{}

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= skipLines {
			continue
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		cols := colNames
		if len(fields) < len(colNames) {
			cols = colNames[:len(fields)]
		}

		row, err := buildRow(path, lineNum, fields, cols)
		if err != nil {
			return nil, err
		}
		appendPeakRow(t, row, cols)
	}
	if err := scanner.Err(); err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}
	return t, nil
}

type peakRow struct {
	chr        string
	start, end int64
	name       string
	extra      map[string]string
}

func buildRow(path string, lineNum int, fields, cols []string) (peakRow, error) {
	idx := map[string]int{}
	for i, c := range cols {
		idx[c] = i
	}
	chrI, ok := idx["chr"]
	if !ok {
		return peakRow{}, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: missing chr column", lineNum)}
	}
	startI, ok := idx["start"]
	if !ok {
		return peakRow{}, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: missing start column", lineNum)}
	}
	endI, ok := idx["end"]
	if !ok {
		return peakRow{}, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: missing end column", lineNum)}
	}
	if chrI >= len(fields) || startI >= len(fields) || endI >= len(fields) {
		return peakRow{}, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: short row", lineNum)}
	}

	start, err := strconv.ParseInt(fields[startI], 10, 64)
	if err != nil {
		return peakRow{}, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: invalid start %q", lineNum, fields[startI])}
	}
	end, err := strconv.ParseInt(fields[endI], 10, 64)
	if err != nil {
		return peakRow{}, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: invalid end %q", lineNum, fields[endI])}
	}
	if end < start {
		return peakRow{}, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: end < start", lineNum)}
	}

	name := ""
	if i, ok := idx["name"]; ok && i < len(fields) {
		name = fields[i]
	}

	extra := make(map[string]string)
	for c, i := range idx {
		if c == "chr" || c == "start" || c == "end" || c == "name" || i >= len(fields) {
			continue
		}
		extra[c] = fields[i]
	}

	return peakRow{chr: fields[chrI], start: start, end: end, name: name, extra: extra}, nil
}

// readHeaderedDelimited reads a tab-separated file with a real header
// row after skipLines comment/blank lines, applying any column
// renames before building rows.
func readHeaderedDelimited(path string, skipLines int, renames map[string]string, nameCol string) (*ivltable.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	t := ivltable.New()
	t.Name = []string{}

	var cols []string
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= skipLines {
			continue
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")

		if cols == nil {
			cols = make([]string, len(fields))
			for i, h := range fields {
				if r, ok := renames[h]; ok {
					h = r
				}
				if h == nameCol {
					h = "name"
				}
				cols[i] = h
			}
			continue
		}

		row, err := buildRow(path, lineNum, fields, cols)
		if err != nil {
			return nil, err
		}
		appendPeakRow(t, row, cols)
	}
	if err := scanner.Err(); err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}
	return t, nil
}

func readMACS2XLS(path string) (*ivltable.Table, error) {
	return readHeaderedDelimited(path, 22, map[string]string{
		"-log10(pvalue)": "neg_log10_pvalue",
		"-log10(qvalue)": "neg_log10_qvalue",
	}, "")
}

func readMACS2Consensus(path string) (*ivltable.Table, error) {
	return readHeaderedDelimited(path, 24, nil, "peak_names")
}

func appendPeakRow(t *ivltable.Table, row peakRow, cols []string) {
	for _, c := range cols {
		if c == "chr" || c == "start" || c == "end" || c == "name" {
			continue
		}
		if !t.HasCol(c) {
			t.SetCol(c, make([]string, t.Len()))
		}
	}
	t.AppendRow(row.chr, row.start, row.end, row.name, row.extra)
}
