package domain

type CartLine struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"qty"`
}

// LineItem is a cart line joined with its product.
type LineItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}
