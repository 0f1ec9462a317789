package domain

import "errors"

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrValidation            = errors.New("validation failed")
	ErrInvalidPaymentDetails = errors.New("invalid payment details")
	ErrStoreRead             = errors.New("malformed stored data")
	ErrDataSourceUnreachable = errors.New("data source unreachable")

	ErrEmptyCart     = errors.New("cart is empty, nothing to checkout")
	ErrNotInCart     = errors.New("product is not in the cart")
	ErrOrderNotFound = errors.New("order not found")
)
