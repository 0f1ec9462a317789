package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"golang.org/x/text/collate"
)

// Query filters and sorts the catalog. It never mutates state, so equal
// filters over an unchanged catalog give equal results.
func (s *Service) Query(f domain.Filters) []domain.Product {
	text := strings.ToLower(strings.TrimSpace(f.Text))

	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if text != "" &&
			!strings.Contains(strings.ToLower(p.Title), text) &&
			!strings.Contains(strings.ToLower(p.Description), text) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	switch f.Sort {
	case domain.SortPriceAsc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case domain.SortNameAsc:
		// collators keep internal buffers, so one per query
		c := collate.New(s.lang)
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return c.CompareString(a.Title, b.Title)
		})
	}

	return out
}
