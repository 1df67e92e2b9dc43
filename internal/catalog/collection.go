package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type document[T any] interface {
	*T
	meta() *Meta
}

// Collection stores one kind of catalog document as JSON. Listing filters
// run on json_extract over the stored document.
type Collection[T any, P document[T]] struct {
	store   *Store
	table   string
	search  []string
	filters map[string]string
	orderBy string
}

func newCollection[T any, P document[T]](s *Store, table string, search []string, filters map[string]string, orderPrefix string) *Collection[T, P] {
	return &Collection[T, P]{
		store:   s,
		table:   table,
		search:  search,
		filters: filters,
		orderBy: orderPrefix + "created_at, rowid",
	}
}

// Filters returns the filter names List understands.
func (c *Collection[T, P]) Filters() []string {
	out := make([]string, 0, len(c.filters))
	for name := range c.filters {
		out = append(out, name)
	}
	return out
}

// List returns the documents matching f in display order.
func (c *Collection[T, P]) List(ctx context.Context, f Filter) ([]T, error) {
	var (
		where []string
		args  []any
	)
	for name, value := range f.Fields {
		field, ok := c.filters[name]
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		where = append(where, "lower(json_extract(data, ?)) = lower(?)")
		args = append(args, "$."+field, strings.TrimSpace(value))
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		var ors []string
		for _, field := range c.search {
			ors = append(ors, "lower(json_extract(data, ?)) LIKE ?")
			args = append(args, "$."+field, "%"+q+"%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	if f.Featured {
		where = append(where, "json_extract(data, '$.featured') = 1")
	}

	query := "SELECT data FROM " + c.table
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + c.orderBy

	rows, err := c.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.table, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		var item T
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.table, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Get returns the document with id.
func (c *Collection[T, P]) Get(ctx context.Context, id string) (*T, error) {
	var data string
	err := c.store.db.QueryRowContext(ctx, "SELECT data FROM "+c.table+" WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", c.table, id, err)
	}
	var item T
	if err := json.Unmarshal([]byte(data), &item); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", c.table, id, err)
	}
	return &item, nil
}

// Create validates item, assigns its ID and timestamps and stores it.
func (c *Collection[T, P]) Create(ctx context.Context, item P) error {
	if err := c.store.validate.Struct(item); err != nil {
		return err
	}

	m := item.meta()
	m.ID = uuid.NewString()
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.table, err)
	}
	if _, err := c.store.db.ExecContext(ctx,
		"INSERT INTO "+c.table+" (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)",
		m.ID, string(data), formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	); err != nil {
		return fmt.Errorf("insert %s: %w", c.table, err)
	}
	return nil
}

// Update replaces the document with id. The creation time is preserved.
func (c *Collection[T, P]) Update(ctx context.Context, id string, item P) error {
	if err := c.store.validate.Struct(item); err != nil {
		return err
	}

	var created string
	err := c.store.db.QueryRowContext(ctx, "SELECT created_at FROM "+c.table+" WHERE id = ?", id).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s %s: %w", c.table, id, err)
	}

	m := item.meta()
	m.ID = id
	m.CreatedAt = parseTime(created)
	m.UpdatedAt = now()

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.table, err)
	}
	if _, err := c.store.db.ExecContext(ctx,
		"UPDATE "+c.table+" SET data = ?, updated_at = ? WHERE id = ?",
		string(data), formatTime(m.UpdatedAt), id,
	); err != nil {
		return fmt.Errorf("update %s %s: %w", c.table, id, err)
	}
	return nil
}

// Delete removes the document with id.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	res, err := c.store.db.ExecContext(ctx, "DELETE FROM "+c.table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.table, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
