package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pkgredis "github.com/richrisemansion/ebook-pop/pkg/redis"
)

// cartTTL keeps abandoned carts around long enough for a customer to come
// back, without accumulating forever.
const cartTTL = 7 * 24 * time.Hour

// store is the slice of the Redis client the keeper needs.
type store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(namespace, sessionID string) string
}

// Keeper persists carts as JSON blobs keyed by session.
type Keeper struct {
	store store
}

// NewKeeper builds a cart keeper over the Redis client.
func NewKeeper(store store) (*Keeper, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	return &Keeper{store: store}, nil
}

// Load returns the session's cart, or an empty cart when none is stored.
func (k *Keeper) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	raw, err := k.store.Get(ctx, k.store.CartKey(Namespace, sessionID))
	if err != nil {
		if pkgredis.IsNil(err) {
			return &Cart{}, nil
		}
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	var loaded Cart
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return &loaded, nil
}

// Save writes the cart back, refreshing its TTL.
func (k *Keeper) Save(ctx context.Context, sessionID string, cart *Cart) error {
	if sessionID == "" {
		return fmt.Errorf("session id required")
	}
	if cart == nil {
		return fmt.Errorf("cart required")
	}

	encoded, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := k.store.Set(ctx, k.store.CartKey(Namespace, sessionID), string(encoded), cartTTL); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

// Drop removes the session's cart entirely.
func (k *Keeper) Drop(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session id required")
	}
	if err := k.store.Del(ctx, k.store.CartKey(Namespace, sessionID)); err != nil {
		return fmt.Errorf("dropping cart: %w", err)
	}
	return nil
}
