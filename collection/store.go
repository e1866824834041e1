package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// EntityStore is the CRUD contract every entity kind implements.
//
// GetByID returns the zero entity when no row matches. Add writes the
// generated key back into e. Update and Delete are keyed by e's identifier
// and are no-ops when the row is absent. Every database fault is returned as
// a *StorageError.
type EntityStore[T any] interface {
	GetAll(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id int64) (T, error)
	Add(ctx context.Context, e *T) error
	Update(ctx context.Context, e *T) error
	Delete(ctx context.Context, e *T) error
}

// Find wraps GetByID with an explicit presence flag.
func Find[T interface{ IsZero() bool }](ctx context.Context, s EntityStore[T], id int64) (T, bool, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return e, false, err
	}
	return e, !e.IsZero(), nil
}

// mapping describes how one entity kind maps onto its table. columns and the
// slices returned by values and fields exclude id and share one order.
type mapping[T any] struct {
	table   string
	columns []string
	id      func(e *T) *int64
	values  func(e *T) []any
	fields  func(e *T) []any
}

func (m mapping[T]) scanTargets(e *T) []any {
	return append([]any{m.id(e)}, m.fields(e)...)
}

// sqlStore implements EntityStore for any mapping.
type sqlStore[T any] struct {
	db *Database
	m  mapping[T]
}

func (s *sqlStore[T]) selectFrom() string {
	return fmt.Sprintf("SELECT %s,%s FROM %s", s.db.quote("id"), s.db.quoteAll(s.m.columns), s.db.quote(s.m.table))
}

func (s *sqlStore[T]) GetAll(ctx context.Context) ([]T, error) {
	return s.list(ctx, "get all", s.selectFrom())
}

func (s *sqlStore[T]) GetByID(ctx context.Context, id int64) (T, error) {
	return s.first(ctx, "get by id", s.selectFrom()+" WHERE id=?", id)
}

func (s *sqlStore[T]) Add(ctx context.Context, e *T) error {
	id, err := s.db.insert(ctx, s.m.table, s.m.columns, s.m.values(e))
	if err != nil {
		return storageErr("add", s.m.table, err)
	}
	*s.m.id(e) = id
	return nil
}

func (s *sqlStore[T]) Update(ctx context.Context, e *T) error {
	set := make([]string, len(s.m.columns))
	for i, col := range s.m.columns {
		set[i] = s.db.quote(col) + "=?"
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id=?", s.db.quote(s.m.table), strings.Join(set, ","))
	args := append(s.m.values(e), *s.m.id(e))
	if _, err := s.db.exec(ctx, query, args...); err != nil {
		return storageErr("update", s.m.table, err)
	}
	return nil
}

func (s *sqlStore[T]) Delete(ctx context.Context, e *T) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id=?", s.db.quote(s.m.table))
	if _, err := s.db.exec(ctx, query, *s.m.id(e)); err != nil {
		return storageErr("delete", s.m.table, err)
	}
	return nil
}

// first returns the first matching row or the zero entity.
func (s *sqlStore[T]) first(ctx context.Context, op, query string, args ...any) (T, error) {
	var e T
	err := s.db.queryRow(ctx, query, args...).Scan(s.m.scanTargets(&e)...)
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, nil
	}
	if err != nil {
		var zero T
		return zero, storageErr(op, s.m.table, err)
	}
	return e, nil
}

func (s *sqlStore[T]) list(ctx context.Context, op, query string, args ...any) ([]T, error) {
	rows, err := s.db.query(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, s.m.table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var e T
		if err := rows.Scan(s.m.scanTargets(&e)...); err != nil {
			return nil, storageErr(op, s.m.table, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, s.m.table, err)
	}
	return out, nil
}
