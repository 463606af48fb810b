package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erazemk/narocila/internal/model"
)

const itemColumns = `id, name, description, price, stock`

// ListItems returns a page of items in insertion order.
func (s *Store) ListItems(ctx context.Context, limit, offset int) ([]model.Item, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT `+itemColumns+` FROM items ORDER BY id LIMIT ? OFFSET ?`),
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// CreateItem inserts a new item and returns it with its assigned id.
func (s *Store) CreateItem(ctx context.Context, in model.ItemInput) (*model.Item, error) {
	id, err := s.insert(ctx, s.db,
		`INSERT INTO items (name, description, price, stock) VALUES (?, ?, ?, ?)`,
		in.Name, in.Description, in.Price, in.Stock,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return s.GetItem(ctx, id)
}

// GetItem returns an item by ID, or ErrNotFound.
func (s *Store) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return s.getItem(ctx, s.db, id, "")
}

func (s *Store) getItem(ctx context.Context, q querier, id int64, lock string) (*model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = ?`
	if lock != "" {
		query += " " + lock
	}

	item, err := scanItem(q.QueryRowContext(ctx, s.dialect.Rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// UpdateItem replaces every mutable field of an item. Fields the caller
// leaves out are cleared, not preserved.
func (s *Store) UpdateItem(ctx context.Context, id int64, in model.ItemInput) (*model.Item, error) {
	err := s.exec(ctx, s.db,
		`UPDATE items SET name = ?, description = ?, price = ?, stock = ? WHERE id = ?`,
		in.Name, in.Description, in.Price, in.Stock, id,
	)
	if errors.Is(err, ErrNotFound) {
		// MySQL reports zero affected rows when nothing changed.
		if _, getErr := s.GetItem(ctx, id); getErr != nil {
			return nil, getErr
		}
	} else if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	return s.GetItem(ctx, id)
}

// DeleteItem hard-deletes an item. Order items referencing it are left as they are.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	err := s.exec(ctx, s.db, `DELETE FROM items WHERE id = ?`, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("deleting item: %w", err)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var description sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &description, &item.Price, &item.Stock); err != nil {
		return nil, err
	}
	if description.Valid {
		item.Description = &description.String
	}
	return item, nil
}
