package duckdb

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb"
)

// Engine is a throwaway in-memory DuckDB connection used to sort and
// deduplicate CSV files without loading them into Go structures. It
// backs the GTF decomposer's start/end file generation.
type Engine struct {
	db *sql.DB
}

// NewEngine opens a fresh in-memory DuckDB instance.
func NewEngine() (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Engine{db: db}, nil
}

// Close releases the underlying connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// SortDedupByStart reads srcCSV, keeps the first row for each distinct
// start value (ties broken by original row order via row_idx), sorts
// ascending by start, and writes the result to dstCSV.
func (e *Engine) SortDedupByStart(srcCSV, dstCSV string) error {
	const q = `COPY (
		SELECT * EXCLUDE (row_idx) FROM (
			SELECT DISTINCT ON (start) * FROM read_csv_auto(?, header=true)
			ORDER BY start, row_idx
		)
	) TO ? (HEADER, DELIMITER ',')`
	if _, err := e.db.Exec(q, srcCSV, dstCSV); err != nil {
		return fmt.Errorf("sort/dedup by start: %w", err)
	}
	return nil
}

// SortByEnd reads srcCSV (already start-sorted and deduplicated) and
// writes it back out sorted ascending by end, with no further
// deduplication.
func (e *Engine) SortByEnd(srcCSV, dstCSV string) error {
	const q = `COPY (
		SELECT * FROM read_csv_auto(?, header=true) ORDER BY "end"
	) TO ? (HEADER, DELIMITER ',')`
	if _, err := e.db.Exec(q, srcCSV, dstCSV); err != nil {
		return fmt.Errorf("sort by end: %w", err)
	}
	return nil
}
