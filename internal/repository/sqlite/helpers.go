package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToInt64Ptr converts sql.NullInt64 to *int64
func nullToInt64Ptr(ni sql.NullInt64) *int64 {
	if ni.Valid {
		v := ni.Int64
		return &v
	}
	return nil
}

// ============================================================================
// Insert Helpers
// ============================================================================

// execInserted runs an INSERT ... ON CONFLICT DO NOTHING and reports whether
// a row was created
func (r *Repository) execInserted(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// insertUnique inserts value into the single-column lookup table. Empty
// values are not stored and report false.
func (r *Repository) insertUnique(ctx context.Context, table, column, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?) ON CONFLICT DO NOTHING", table, column)
	inserted, err := r.execInserted(ctx, query, value)
	if err != nil {
		return false, fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return inserted, nil
}

// lookupID returns the id of the row matching query, or an invalid
// NullInt64 when there is none
func (r *Repository) lookupID(ctx context.Context, query string, args ...any) (sql.NullInt64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.NullInt64{}, nil
	}
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}

// optionalID looks up a lookup-table id for an optional value
func (r *Repository) optionalID(ctx context.Context, table, column string, value *string) (sql.NullInt64, error) {
	if value == nil || *value == "" {
		return sql.NullInt64{}, nil
	}
	return r.lookupID(ctx, fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", table, column), *value)
}
