// Package seed inserts demo data for local runs.
package seed

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/erazemk/narocila/internal/model"
	"github.com/erazemk/narocila/internal/store"
)

const demoCustomer = "customer1"

// Demo creates three items and one order for demoCustomer. The order goes
// through CreateOrder, so item stock reflects it.
func Demo(ctx context.Context, items store.ItemRepository, orders store.OrderRepository) error {
	prices := []float64{10.99, 20.99, 15.99}
	stocks := []int{100, 50, 75}

	created := make([]*model.Item, 0, len(prices))
	for i := range prices {
		desc := fmt.Sprintf("Description %d", i+1)
		item, err := items.CreateItem(ctx, model.ItemInput{
			Name:        fmt.Sprintf("Item %d", i+1),
			Description: &desc,
			Price:       prices[i],
			Stock:       stocks[i],
		})
		if err != nil {
			return fmt.Errorf("creating demo item %d: %w", i+1, err)
		}
		created = append(created, item)
	}

	order, err := orders.CreateOrder(ctx, demoCustomer, []model.OrderLine{
		{ItemID: created[0].ID, Quantity: 2},
		{ItemID: created[1].ID, Quantity: 1},
	})
	if err != nil {
		return fmt.Errorf("creating demo order: %w", err)
	}

	log.WithFields(log.Fields{"items": len(created), "order_id": order.ID}).Info("demo data created")
	return nil
}

// IfEmpty runs Demo only when there are no items yet. It reports whether
// anything was inserted.
func IfEmpty(ctx context.Context, items store.ItemRepository, orders store.OrderRepository) (bool, error) {
	existing, err := items.ListItems(ctx, 1, 0)
	if err != nil {
		return false, fmt.Errorf("checking for items: %w", err)
	}
	if len(existing) > 0 {
		return false, nil
	}
	if err := Demo(ctx, items, orders); err != nil {
		return false, err
	}
	return true, nil
}
