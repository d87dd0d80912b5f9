package ivltable

import (
	"strings"

	"github.com/peakscout/peakscout/internal/perrors"
)

// NormalizeChrom canonicalizes a chromosome key by prefixing "chr" if
// absent. It rejects keys containing whitespace or that differ by
// case after normalization, per spec.md's chromosome-key-normalization
// design note.
func NormalizeChrom(raw string) (string, error) {
	if strings.ContainsAny(raw, " \t\n\r") {
		return "", &perrors.InputError{Source: raw, Msg: "chromosome name contains whitespace"}
	}
	norm := raw
	if !strings.HasPrefix(strings.ToLower(norm), "chr") {
		norm = "chr" + norm
	}
	if strings.ToLower(norm) != norm && norm != canonicalCase(norm) {
		return "", &perrors.InputError{Source: raw, Msg: "chromosome name has inconsistent casing"}
	}
	return norm, nil
}

// canonicalCase lowercases the "chr" prefix only, leaving the
// chromosome identifier (1, X, Y, M, ...) as given — GENCODE/UCSC
// naming is case-sensitive on the suffix ("chrX", not "chrx").
func canonicalCase(s string) string {
	if len(s) < 3 {
		return s
	}
	return "chr" + s[3:]
}

// Partition groups t by (normalized) chromosome and returns, for each
// chromosome, a table sorted ascending by Start.
func Partition(t *Table) (map[string]*Table, error) {
	buckets := make(map[string][]int)
	order := make([]string, 0)
	for i, raw := range t.Chr {
		chrom, err := NormalizeChrom(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := buckets[chrom]; !ok {
			order = append(order, chrom)
		}
		buckets[chrom] = append(buckets[chrom], i)
	}

	out := make(map[string]*Table, len(buckets))
	for _, chrom := range order {
		sub := t.reorder(buckets[chrom])
		for i := range sub.Chr {
			sub.Chr[i] = chrom
		}
		out[chrom] = sub.SortByStart()
	}
	return out, nil
}
