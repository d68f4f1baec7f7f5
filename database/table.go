package database

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Page bounds a list query. Callers clamp the values before building one.
type Page struct {
	Limit  int
	Offset int
}

// table holds the single-row operations every repo shares. key is the column that
// identifies a row (id for most tables, key for settings).
type table[T any] struct {
	db  *gorm.DB
	key string
}

func (t table[T]) where(ctx context.Context, key any) *gorm.DB {
	return t.db.WithContext(ctx).Where(clause.Eq{Column: clause.Column{Name: t.key}, Value: key})
}

// FindByKey returns the row or gorm.ErrRecordNotFound.
func (t table[T]) FindByKey(ctx context.Context, key any) (*T, error) {
	var row T
	if err := t.where(ctx, key).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (t table[T]) Add(ctx context.Context, row *T) error {
	return t.db.WithContext(ctx).Create(row).Error
}

// Update writes only the given columns and returns the row as stored afterwards, or
// nil when no row has that key.
func (t table[T]) Update(ctx context.Context, key any, fields map[string]any) (*T, error) {
	if err := t.where(ctx, key).Model(new(T)).Updates(fields).Error; err != nil {
		return nil, err
	}
	row, err := t.FindByKey(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return row, err
}

// Delete removes the row. A key that matches nothing is not an error.
func (t table[T]) Delete(ctx context.Context, key any) error {
	return t.where(ctx, key).Delete(new(T)).Error
}

// list counts the filtered rows, then returns one ordered page of them. A zero Limit
// returns every row.
func (t table[T]) list(ctx context.Context, filter func(*gorm.DB) *gorm.DB, order string, page Page) ([]T, int64, error) {
	q := t.db.WithContext(ctx).Model(new(T))
	if filter != nil {
		q = filter(q)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order(order)
	if page.Limit > 0 {
		q = q.Limit(page.Limit).Offset(page.Offset)
	}

	rows := []T{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, total, nil
}

// search matches query as a case-insensitive substring of any of columns.
func search(q *gorm.DB, query string, columns ...string) *gorm.DB {
	if query == "" {
		return q
	}
	pattern := "%" + strings.ToLower(query) + "%"
	exprs := make([]clause.Expression, 0, len(columns))
	for _, col := range columns {
		exprs = append(exprs, clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{clause.Column{Name: col}, pattern}})
	}
	return q.Where(clause.Or(exprs...))
}
