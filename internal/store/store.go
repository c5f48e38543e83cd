package store

import "context"

// Row is one table row keyed by column name. Values are raw cell strings;
// typed decoding happens in the repositories.
type Row map[string]string

// Sentinel fills cells for columns the stored table does not carry.
const Sentinel = "-"

// Table names a logical table and its canonical column order.
type Table struct {
	Name    string
	Columns []string
}

// The four tables the ledger lives in.
var (
	TableRoster = Table{
		Name:    "roster",
		Columns: []string{"name", "package_size", "remaining_lessons", "last_activity", "status", "payment_status", "notes"},
	}
	TableTransactions = Table{
		Name:    "transactions",
		Columns: []string{"date", "month", "student", "amount", "memo", "kind"},
	}
	TableActivityLog = Table{
		Name:    "activity_log",
		Columns: []string{"date", "time", "student", "action", "detail"},
	}
	TableSchedule = Table{
		Name:    "schedule",
		Columns: []string{"time_slot", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
	}
)

// TableStore is the persistence collaborator: a table-oriented store with
// full-table read, full-table overwrite, and single-row append. Rows are
// addressed by position, so student mutations write the whole roster back.
//
// The store exposes no locking primitive. Two sessions mutating the same
// student race as lost updates: whichever write-back lands last wins and
// the other is silently discarded. Callers must not assume otherwise.
type TableStore interface {
	// ReadTable returns the ordered rows of the table, with missing
	// columns filled with Sentinel. A table that does not exist yet
	// yields an empty slice, not an error.
	ReadTable(ctx context.Context, table Table) ([]Row, error)
	// OverwriteTable replaces the entire table contents.
	OverwriteTable(ctx context.Context, table Table, rows []Row) error
	// AppendRow appends one row, creating the table with a header row
	// on first write.
	AppendRow(ctx context.Context, table Table, row Row) error
}

// Normalize fills missing columns with Sentinel and drops unknown keys so
// every row carries exactly the table's columns.
func Normalize(table Table, row Row) Row {
	out := make(Row, len(table.Columns))
	for _, col := range table.Columns {
		if v, ok := row[col]; ok && v != "" {
			out[col] = v
		} else {
			out[col] = Sentinel
		}
	}
	return out
}
