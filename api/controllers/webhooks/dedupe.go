package webhooks

import (
	"context"
	"time"
)

type dedupeStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// CallbackGuard drops gateway callbacks already seen inside the dedupe
// window. The conditional order update is what keeps duplicates correct;
// the guard just spares the lookup and the log noise on gateway retries.
type CallbackGuard struct {
	Store dedupeStore
	TTL   time.Duration
}

// FirstDelivery records the transaction id and reports whether this is
// the first time it was seen in the window. A missing store, an empty
// id, or a store error all pass the callback through.
func (g *CallbackGuard) FirstDelivery(ctx context.Context, gateway, txnID string) bool {
	if g == nil || g.Store == nil || txnID == "" {
		return true
	}
	key := g.Store.IdempotencyKey("callback:"+gateway, txnID)
	first, err := g.Store.SetNX(ctx, key, 1, g.TTL)
	if err != nil {
		return true
	}
	return first
}
