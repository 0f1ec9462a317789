package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type Key string

const (
	KeyProducts Key = "pf:products"
	KeyCart     Key = "pf:cart"
	KeyOrders   Key = "pf:orders"
)

var ErrNotFound = errors.New("key not found")

// Store is a durable key-value store holding whole snapshots.
// Consumers define this interface, not the backends.
type Store interface {
	// Load returns ErrNotFound when nothing was saved under key.
	Load(ctx context.Context, key Key) ([]byte, error)
	Save(ctx context.Context, key Key, value []byte) error
	Close() error
}

// LoadJSON decodes the snapshot stored under key into v.
// Bytes that do not decode are reported as domain.ErrStoreRead so callers
// can fall back to their initial state.
func LoadJSON(ctx context.Context, s Store, key Key, v any) error {
	data, err := s.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: key %s: %v", domain.ErrStoreRead, key, err)
	}
	return nil
}

func SaveJSON(ctx context.Context, s Store, key Key, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	return s.Save(ctx, key, data)
}
