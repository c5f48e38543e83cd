package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Postgres is a TableStore keeping each logical table as positional rows
// in one relation. It deliberately preserves the sheet model (ordered
// rows, full-table overwrite) rather than normalising into entity tables,
// so both backends stay interchangeable behind TableStore.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the backing relation when missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sheet_rows (
		sheet TEXT NOT NULL,
		pos BIGINT NOT NULL,
		cells JSONB NOT NULL,
		PRIMARY KEY (sheet, pos)
	)`)
	if err != nil {
		return fmt.Errorf("ensure sheet_rows schema: %w", err)
	}
	return nil
}

// ReadTable implements TableStore.
func (s *Postgres) ReadTable(ctx context.Context, table Table) ([]Row, error) {
	var payloads [][]byte
	err := s.db.SelectContext(ctx, &payloads,
		"SELECT cells FROM sheet_rows WHERE sheet = $1 ORDER BY pos", table.Name)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", table.Name, err)
	}

	rows := make([]Row, 0, len(payloads))
	for _, payload := range payloads {
		row := Row{}
		if err := json.Unmarshal(payload, &row); err != nil {
			return nil, fmt.Errorf("decode row of %s: %w", table.Name, err)
		}
		rows = append(rows, Normalize(table, row))
	}
	return rows, nil
}

// OverwriteTable implements TableStore.
func (s *Postgres) OverwriteTable(ctx context.Context, table Table, rows []Row) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin overwrite of %s: %w", table.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM sheet_rows WHERE sheet = $1", table.Name); err != nil {
		return fmt.Errorf("clear table %s: %w", table.Name, err)
	}
	for i, row := range rows {
		payload, err := json.Marshal(Normalize(table, row))
		if err != nil {
			return fmt.Errorf("encode row %d of %s: %w", i+1, table.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO sheet_rows (sheet, pos, cells) VALUES ($1, $2, $3)",
			table.Name, i+1, payload); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+1, table.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit overwrite of %s: %w", table.Name, err)
	}
	return nil
}

// AppendRow implements TableStore.
func (s *Postgres) AppendRow(ctx context.Context, table Table, row Row) error {
	payload, err := json.Marshal(Normalize(table, row))
	if err != nil {
		return fmt.Errorf("encode row of %s: %w", table.Name, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sheet_rows (sheet, pos, cells)
		 SELECT $1, COALESCE(MAX(pos), 0) + 1, $2 FROM sheet_rows WHERE sheet = $1`,
		table.Name, payload); err != nil {
		return fmt.Errorf("append row to %s: %w", table.Name, err)
	}
	return nil
}
