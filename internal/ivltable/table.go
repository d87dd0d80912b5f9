// Package ivltable implements the Interval Table: the in-memory
// row-store shared by peaks, genes, and reference features. Start and
// End are held as contiguous int64 slices so binary search and the
// nearest-feature two-pointer scan (internal/nearest) can index them
// directly, without per-row boxing.
package ivltable

import "sort"

// Table is a struct-of-arrays row store. Chr, Start, and End are
// always present and the same length; Name is optional (nil when the
// table has no name column). Cols holds arbitrary pass-through or
// attribute-derived string columns, keyed by column name, with
// ColOrder preserving the order columns were added in for output.
type Table struct {
	Chr      []string
	Start    []int64
	End      []int64
	Name     []string // nil if the table carries no name column
	Cols     map[string][]string
	ColOrder []string
}

// New returns an empty table ready to be appended to.
func New() *Table {
	return &Table{Cols: make(map[string][]string)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Start)
}

// HasName reports whether the table carries a Name column.
func (t *Table) HasName() bool {
	return t.Name != nil
}

// Col returns the named pass-through column, or nil if absent.
func (t *Table) Col(name string) []string {
	return t.Cols[name]
}

// HasCol reports whether the named pass-through column exists.
func (t *Table) HasCol(name string) bool {
	_, ok := t.Cols[name]
	return ok
}

// SetCol adds or replaces a pass-through column. vals must have
// length Len(). New column names are appended to ColOrder.
func (t *Table) SetCol(name string, vals []string) {
	if t.Cols == nil {
		t.Cols = make(map[string][]string)
	}
	if _, exists := t.Cols[name]; !exists {
		t.ColOrder = append(t.ColOrder, name)
	}
	t.Cols[name] = vals
}

// Clone returns a deep copy of t.
func (t *Table) Clone() *Table {
	out := &Table{
		Chr:   append([]string(nil), t.Chr...),
		Start: append([]int64(nil), t.Start...),
		End:   append([]int64(nil), t.End...),
	}
	if t.Name != nil {
		out.Name = append([]string(nil), t.Name...)
	}
	if len(t.Cols) > 0 {
		out.Cols = make(map[string][]string, len(t.Cols))
		out.ColOrder = append([]string(nil), t.ColOrder...)
		for k, v := range t.Cols {
			out.Cols[k] = append([]string(nil), v...)
		}
	} else {
		out.Cols = make(map[string][]string)
	}
	return out
}

// Select returns a new table retaining only chr/start/end (and name,
// if present) plus the requested pass-through columns, in the order
// given. Columns not present on t are silently skipped.
func (t *Table) Select(cols ...string) *Table {
	out := &Table{
		Chr:   append([]string(nil), t.Chr...),
		Start: append([]int64(nil), t.Start...),
		End:   append([]int64(nil), t.End...),
		Cols:  make(map[string][]string),
	}
	if t.Name != nil {
		out.Name = append([]string(nil), t.Name...)
	}
	for _, c := range cols {
		if v, ok := t.Cols[c]; ok {
			out.SetCol(c, append([]string(nil), v...))
		}
	}
	return out
}

// AppendRow appends a single row to t. extra maps column name to
// value for every pass-through column t already tracks via ColOrder;
// missing keys are recorded as empty strings.
func (t *Table) AppendRow(chr string, start, end int64, name string, extra map[string]string) {
	t.Chr = append(t.Chr, chr)
	t.Start = append(t.Start, start)
	t.End = append(t.End, end)
	if t.Name != nil || name != "" {
		if t.Name == nil {
			t.Name = make([]string, len(t.Chr)-1, len(t.Chr))
		}
		t.Name = append(t.Name, name)
	}
	if t.Cols == nil {
		t.Cols = make(map[string][]string)
	}
	for _, col := range t.ColOrder {
		t.Cols[col] = append(t.Cols[col], extra[col])
	}
	for col, val := range extra {
		if !t.HasCol(col) {
			// Backfill a new column discovered mid-load: pad prior rows empty.
			padded := make([]string, len(t.Chr)-1, len(t.Chr))
			t.ColOrder = append(t.ColOrder, col)
			t.Cols[col] = append(padded, val)
		}
	}
}

// gatherStr returns col reordered according to idx (col[idx[i]] at
// position i).
func gatherStr(idx []int, col []string) []string {
	if col == nil {
		return nil
	}
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = col[j]
	}
	return out
}

func gatherInt(idx []int, col []int64) []int64 {
	out := make([]int64, len(idx))
	for i, j := range idx {
		out[i] = col[j]
	}
	return out
}

// reorder returns a new table with all columns permuted by idx.
func (t *Table) reorder(idx []int) *Table {
	out := &Table{
		Chr:   gatherStr(idx, t.Chr),
		Start: gatherInt(idx, t.Start),
		End:   gatherInt(idx, t.End),
		Name:  gatherStr(idx, t.Name),
	}
	if len(t.Cols) > 0 {
		out.Cols = make(map[string][]string, len(t.Cols))
		out.ColOrder = append([]string(nil), t.ColOrder...)
		for k, v := range t.Cols {
			out.Cols[k] = gatherStr(idx, v)
		}
	} else {
		out.Cols = make(map[string][]string)
	}
	return out
}

func identity(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// SortByStart returns a new table with rows in non-decreasing Start
// order. The sort is stable: rows with equal Start keep their
// relative input order.
func (t *Table) SortByStart() *Table {
	idx := identity(t.Len())
	sort.SliceStable(idx, func(i, j int) bool {
		return t.Start[idx[i]] < t.Start[idx[j]]
	})
	return t.reorder(idx)
}

// SortByEnd returns a new table with rows in non-decreasing End
// order.
func (t *Table) SortByEnd() *Table {
	idx := identity(t.Len())
	sort.SliceStable(idx, func(i, j int) bool {
		return t.End[idx[i]] < t.End[idx[j]]
	})
	return t.reorder(idx)
}

// SortBy returns a new table with rows ordered by the given stable
// less function, which compares rows by their index into t.
func (t *Table) SortBy(less func(i, j int) bool) *Table {
	idx := identity(t.Len())
	sort.SliceStable(idx, func(i, j int) bool { return less(idx[i], idx[j]) })
	return t.reorder(idx)
}

// Concat appends the rows of tables (in order) into one table. All
// non-nil tables must share the same Name-presence and pass-through
// column set, which holds for driver output since every chromosome's
// search shares the same Options.
func Concat(tables ...*Table) *Table {
	out := New()
	for _, t := range tables {
		if t == nil || t.Len() == 0 {
			continue
		}
		out.Chr = append(out.Chr, t.Chr...)
		out.Start = append(out.Start, t.Start...)
		out.End = append(out.End, t.End...)
		if t.Name != nil {
			out.Name = append(out.Name, t.Name...)
		}
		for _, c := range t.ColOrder {
			if !out.HasCol(c) {
				out.ColOrder = append(out.ColOrder, c)
				out.Cols[c] = make([]string, len(out.Chr)-t.Len())
			}
			out.Cols[c] = append(out.Cols[c], t.Cols[c]...)
		}
	}
	return out
}

// DedupByStart assumes t is already sorted by Start and returns a
// new table with only the first row for each distinct Start value.
func (t *Table) DedupByStart() *Table {
	if t.Len() == 0 {
		return t.Clone()
	}
	idx := make([]int, 0, t.Len())
	idx = append(idx, 0)
	for i := 1; i < t.Len(); i++ {
		if t.Start[i] != t.Start[idx[len(idx)-1]] {
			idx = append(idx, i)
		}
	}
	return t.reorder(idx)
}
