package learning

import "github.com/jaminalder/tictactoe-ai/internal/domain"

// Row holds one value estimate per cell index.
type Row [domain.Size]float64

// Max returns the largest value in the row.
func (r *Row) Max() float64 {
    m := r[0]
    for _, v := range r[1:] {
        if v > m {
            m = v
        }
    }
    return m
}

// Table maps board keys to value rows. Rows are created on first read and
// never removed. A Table is not safe for concurrent use; it has one writer.
type Table struct {
    rows map[domain.Key]*Row
}

// NewTable returns an empty table.
func NewTable() *Table {
    return &Table{rows: make(map[domain.Key]*Row)}
}

// Get returns the row for key, creating a zeroed one if the key is new.
// Repeated calls return the same row.
func (t *Table) Get(key domain.Key) *Row {
    row, ok := t.rows[key]
    if !ok {
        row = new(Row)
        t.rows[key] = row
    }
    return row
}

// Set stores value at index in the row for key.
func (t *Table) Set(key domain.Key, index int, value float64) {
    t.Get(key)[index] = value
}

// Len returns the number of materialized rows.
func (t *Table) Len() int { return len(t.rows) }

// Each calls fn with a copy of every row. Iteration order is unspecified.
func (t *Table) Each(fn func(domain.Key, Row)) {
    for k, row := range t.rows {
        fn(k, *row)
    }
}
