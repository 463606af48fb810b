package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidQuantity is returned for order lines with a quantity below one.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// ItemNotFoundError reports an order line that references a missing item.
type ItemNotFoundError struct {
	ItemID int64
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("Item %d not found", e.ItemID)
}

func (e *ItemNotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError reports an order line asking for more units than are in stock.
type InsufficientStockError struct {
	ItemID    int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for item %d", e.ItemID)
}
