package model

// Item is a catalog entry with a price and the number of units available for ordering.
type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// ItemInput carries every mutable field of an item. Updates replace all of them.
type ItemInput struct {
	Name        string
	Description *string
	Price       float64
	Stock       int
}
