package entity

// Product is the slice of the catalog service response the checkout flow
// needs to snapshot into an order item.
type Product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
