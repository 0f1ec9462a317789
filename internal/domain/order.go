package domain

import "time"

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCard || m == PaymentCash
}

// String representation (for logging)
func (m PaymentMethod) String() string {
	return string(m)
}

type OrderItem struct {
	ProductID string `json:"id"`
	Quantity  int    `json:"qty"`
}

// Order is an immutable record of a committed checkout.
type Order struct {
	ID              string        `json:"id"`
	CustomerName    string        `json:"name"`
	CustomerEmail   string        `json:"email"`
	CustomerAddress string        `json:"address"`
	PaymentMethod   PaymentMethod `json:"method"`
	Items           []OrderItem   `json:"items"`
	Total           float64       `json:"total"`
	Timestamp       time.Time     `json:"date"`
}
