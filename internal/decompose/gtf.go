// Package decompose parses a GTF annotation file and splits it into
// per-(feature, chromosome) start- and end-sorted reference tables.
package decompose

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/peakscout/peakscout/internal/perrors"
)

// gtfColumns are the nine fixed GTF columns, in file order.
var gtfColumns = []string{"chr", "source", "feature", "start", "end", "score", "strand", "frame", "attribute"}

// row is one parsed GTF line: the fixed columns plus the exploded
// attribute key/value pairs.
type row struct {
	chr, feature    string
	start, end      int64
	fixed           map[string]string // source, score, strand, frame
	attrs           map[string]string
	sourceLineOrder int
}

// parseGTF reads a GTF file (optionally gzipped), skipping the first
// 5 header lines, and returns every data row grouped by feature.
func parseGTF(path string) (map[string][]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, &perrors.IOError{Path: path, Err: err}
		}
		defer gz.Close()
		r = gz
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 4*1024*1024)

	byFeature := make(map[string][]row)
	lineNum := 0
	order := 0
	for scanner.Scan() {
		lineNum++
		if lineNum <= 5 {
			continue
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(gtfColumns) {
			return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: expected %d columns, got %d", lineNum, len(gtfColumns), len(fields))}
		}

		start, err := strconv.ParseInt(fields[3], 10, 64)
		if err != nil {
			return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: invalid start %q", lineNum, fields[3])}
		}
		end, err := strconv.ParseInt(fields[4], 10, 64)
		if err != nil {
			return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: invalid end %q", lineNum, fields[4])}
		}
		if end < start {
			return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: end < start", lineNum)}
		}

		attrs, err := explodeAttributes(fields[8])
		if err != nil {
			return nil, &perrors.InputError{Source: path, Msg: fmt.Sprintf("line %d: %v", lineNum, err)}
		}

		feature := fields[2]
		byFeature[feature] = append(byFeature[feature], row{
			chr:     fields[0],
			feature: feature,
			start:   start,
			end:     end,
			fixed: map[string]string{
				"source": fields[1],
				"score":  fields[5],
				"strand": fields[6],
				"frame":  fields[7],
			},
			attrs:           attrs,
			sourceLineOrder: order,
		})
		order++
	}
	if err := scanner.Err(); err != nil {
		return nil, &perrors.IOError{Path: path, Err: err}
	}

	return byFeature, nil
}

// explodeAttributes parses GTF's "key \"value\"; key \"value\"; ..."
// attribute column into a flat map, mirroring decompose_ref.py's
// split_jumble: fields are separated by "; " and each key/value pair
// by the first space.
func explodeAttributes(attrStr string) (map[string]string, error) {
	attrs := make(map[string]string)
	for _, pair := range strings.Split(attrStr, "; ") {
		pair = strings.TrimSuffix(strings.TrimSpace(pair), ";")
		if pair == "" {
			continue
		}
		idx := strings.Index(pair, " ")
		if idx == -1 {
			return nil, fmt.Errorf("unparseable attribute token %q", pair)
		}
		key := pair[:idx]
		value := strings.Trim(strings.TrimSpace(pair[idx+1:]), `"`)
		attrs[key] = value
	}
	return attrs, nil
}

// unionKeys returns the sorted union of attribute keys across a group
// of rows, so every row of the exploded table gets the same columns.
func unionKeys(rows []row) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range rows {
		for k := range r.attrs {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}
