package source

import (
	"context"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Source is the read-only origin of the initial catalog.
type Source interface {
	Fetch(ctx context.Context) ([]domain.Product, error)
}

// New returns an HTTPSource for http(s) locations and a FileSource otherwise.
func New(location string) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, nil)
	}
	return NewFileSource(location)
}
