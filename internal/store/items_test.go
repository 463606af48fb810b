package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/narocila/internal/db"
	"github.com/erazemk/narocila/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, dialect := db.NewTestDB(t)
	return New(database, dialect)
}

func strPtr(s string) *string { return &s }

func TestCreateAndGetItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateItem(ctx, model.ItemInput{
		Name:        "Laptop",
		Description: strPtr("Dell XPS 15"),
		Price:       1299.5,
		Stock:       7,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := s.GetItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, "Laptop", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "Dell XPS 15", *got.Description)
	assert.Equal(t, 1299.5, got.Price)
	assert.Equal(t, 7, got.Stock)
}

func TestCreateItemWithoutDescription(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, model.ItemInput{Name: "Cable", Price: 3, Stock: 1})
	require.NoError(t, err)
	assert.Nil(t, item.Description)
}

func TestGetItemNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetItem(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListItemsPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.CreateItem(ctx, model.ItemInput{Name: string(rune('A' + i)), Price: 1, Stock: 1})
		require.NoError(t, err)
	}

	all, err := s.ListItems(ctx, 20, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID, "items must come back in insertion order")
	}

	page, err := s.ListItems(ctx, 2, 3)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "D", page[0].Name)
	assert.Equal(t, "E", page[1].Name)

	empty, err := s.ListItems(ctx, 10, 50)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUpdateItemReplacesAllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, model.ItemInput{
		Name: "Widget", Description: strPtr("old description"), Price: 5, Stock: 10,
	})
	require.NoError(t, err)

	updated, err := s.UpdateItem(ctx, item.ID, model.ItemInput{Name: "Widget v2", Price: 6, Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, "Widget v2", updated.Name)
	assert.Nil(t, updated.Description, "omitted description must not survive an update")
	assert.Equal(t, 6.0, updated.Price)
	assert.Equal(t, 4, updated.Stock)
}

func TestUpdateItemNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateItem(context.Background(), 99, model.ItemInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, model.ItemInput{Name: "Delete Me", Price: 1, Stock: 1})
	require.NoError(t, err)

	require.NoError(t, s.DeleteItem(ctx, item.ID))
	assert.ErrorIs(t, s.DeleteItem(ctx, item.ID), ErrNotFound)

	_, err = s.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteItemReferencedByOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item, err := s.CreateItem(ctx, model.ItemInput{Name: "Widget", Price: 2, Stock: 5})
	require.NoError(t, err)
	order, err := s.CreateOrder(ctx, "c1", []model.OrderLine{{ItemID: item.ID, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteItem(ctx, item.ID))

	got, err := s.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, item.ID, got.Items[0].ItemID, "order item keeps the dangling reference")
}
