// Package repository contains data access logic separated from HTTP handlers.
// This file defines TableRepo, the single gateway every entity goes through.
// Each method runs exactly one parameterised statement on a connection taken
// from the pool for the duration of the call.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/tourism-gateway/internal/model"
)

// TableRepo executes CRUD statements against the entity tables.
type TableRepo struct {
	db *sqlx.DB // db is the underlying connection pool
}

// NewTableRepo constructs a TableRepo with the provided DB handle.
func NewTableRepo(db *sqlx.DB) *TableRepo {
	return &TableRepo{db: db}
}

// withConn acquires one pooled connection, runs fn on it and releases the
// connection on every path. Errors other than ErrNotFound are wrapped in a
// DBError.
func (r *TableRepo) withConn(ctx context.Context, op string, e model.Entity, fn func(*sqlx.Conn) error) error {
	conn, err := r.db.Connx(ctx)
	if err != nil {
		return &DBError{Op: op, Table: e.Name, Err: err}
	}
	defer conn.Close()

	if err := fn(conn); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &DBError{Op: op, Table: e.Name, Err: err}
	}
	return nil
}

// Get fetches the row whose primary key equals id. A missing row yields
// (nil, nil).
func (r *TableRepo) Get(ctx context.Context, e model.Entity, id string) (*model.Row, error) {
	// table and key come from the entity registry, only the id is user input
	q := fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", e.Name, e.Key)
	var row *model.Row
	err := r.withConn(ctx, "get", e, func(conn *sqlx.Conn) error {
		rows, err := conn.QueryxContext(ctx, q, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err := scanRows(rows, 1) // primary key lookup, one row at most
		if err != nil {
			return err
		}
		if len(out) > 0 {
			row = &out[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// List returns every row of the entity's table.
func (r *TableRepo) List(ctx context.Context, e model.Entity) ([]model.Row, error) {
	q := "SELECT * FROM " + e.Name
	out := []model.Row{}
	err := r.withConn(ctx, "list", e, func(conn *sqlx.Conn) error {
		rows, err := conn.QueryxContext(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = scanRows(rows, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Insert adds one row built from a. It returns the generated key when the
// driver reports one.
func (r *TableRepo) Insert(ctx context.Context, e model.Entity, a model.Assignment) (int64, error) {
	// one "?" per bound column, e.g. "?, ?, ?"
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(a.Columns)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", e.Name, strings.Join(a.Columns, ", "), placeholders)
	var id int64
	err := r.withConn(ctx, "insert", e, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, q, a.Args...)
		if err != nil {
			return err
		}
		id, _ = res.LastInsertId() // zero when the driver cannot report it
		return nil
	})
	return id, err
}

// Update overwrites the columns in a on the row with the given id and
// returns the number of rows affected. Zero is not an error.
func (r *TableRepo) Update(ctx context.Context, e model.Entity, id string, a model.Assignment) (int64, error) {
	sets := make([]string, len(a.Columns))
	for i, c := range a.Columns {
		sets[i] = c + " = ?"
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", e.Name, strings.Join(sets, ", "), e.Key)
	// SET values first, then the id for the WHERE clause
	args := append(append(make([]any, 0, len(a.Args)+1), a.Args...), id)

	var n int64
	err := r.withConn(ctx, "update", e, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// Delete removes the row with the given id. It returns ErrNotFound when no
// row was affected.
func (r *TableRepo) Delete(ctx context.Context, e model.Entity, id string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", e.Name, e.Key)
	return r.withConn(ctx, "delete", e, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, q, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// scanRows reads rows with their column types. limit <= 0 reads all rows.
func scanRows(rows *sqlx.Rows, limit int) ([]model.Row, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	cols := make([]model.Column, len(types))
	for i, t := range types {
		cols[i] = model.Column{Name: t.Name(), Type: t.DatabaseTypeName()}
	}

	out := []model.Row{} // non-nil so an empty table encodes as []
	for rows.Next() {
		vals, err := rows.SliceScan() // driver values, encoded later per column type
		if err != nil {
			return nil, err
		}
		out = append(out, model.Row{Columns: cols, Values: vals})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
