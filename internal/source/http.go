package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"
)

const maxCatalogBytes = 10 << 20

// HTTPSource fetches the catalog from a remote JSON document.
type HTTPSource struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]domain.Product]
	sfg     singleflight.Group // collapses concurrent fetches
}

func NewHTTPSource(url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{
		url:    url,
		client: client,
		breaker: gobreaker.NewCircuitBreaker[[]domain.Product](gobreaker.Settings{
			Name:        "catalog-source",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

func (h *HTTPSource) Fetch(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := h.sfg.Do(h.url, func() (interface{}, error) {
		return h.breaker.Execute(func() ([]domain.Product, error) {
			return h.get(ctx)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataSourceUnreachable, err)
	}

	products := v.([]domain.Product)
	out := make([]domain.Product, len(products))
	copy(out, products)
	return out, nil
}

func (h *HTTPSource) get(ctx context.Context) ([]domain.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", h.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", h.url, resp.StatusCode)
	}

	var products []domain.Product
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogBytes)).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return products, nil
}
