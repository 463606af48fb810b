package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/narocila/internal/db"
	"github.com/erazemk/narocila/internal/model"
)

// ItemRepository reads and writes catalog items.
type ItemRepository interface {
	ListItems(ctx context.Context, limit, offset int) ([]model.Item, error)
	CreateItem(ctx context.Context, in model.ItemInput) (*model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	UpdateItem(ctx context.Context, id int64, in model.ItemInput) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// OrderRepository reads and writes orders together with their order items.
type OrderRepository interface {
	ListOrders(ctx context.Context, limit, offset int) ([]model.Order, error)
	CreateOrder(ctx context.Context, customerID string, lines []model.OrderLine) (*model.Order, error)
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the SQL implementation of ItemRepository and OrderRepository.
type Store struct {
	db      *sql.DB
	dialect db.Dialect
}

var (
	_ ItemRepository  = (*Store)(nil)
	_ OrderRepository = (*Store)(nil)
)

// New returns a Store backed by database, issuing queries in the given dialect.
func New(database *sql.DB, dialect db.Dialect) *Store {
	return &Store{db: database, dialect: dialect}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction bound to ctx. The transaction is
// committed only if fn returns nil and is rolled back on every other path,
// including context cancellation.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// insert executes an INSERT and returns the id of the new row.
func (s *Store) insert(ctx context.Context, q querier, query string, args ...any) (int64, error) {
	if s.dialect.ReturningID {
		var id int64
		err := q.QueryRowContext(ctx, s.dialect.Rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}

	result, err := q.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// exec executes a statement and fails with ErrNotFound if it touched no rows.
func (s *Store) exec(ctx context.Context, q querier, query string, args ...any) error {
	result, err := q.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
