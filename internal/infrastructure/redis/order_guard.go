package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

var _ inventory.OrderGuard = (*OrderGuard)(nil)

const defaultGuardTTL = 72 * time.Hour

// OrderGuard marca pedidos ya descontados con SET NX + TTL.
type OrderGuard struct {
	client goredis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewOrderGuard construye la guardia; ttl <= 0 usa 72h.
func NewOrderGuard(client goredis.Cmdable, ttl time.Duration) *OrderGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &OrderGuard{client: client, ttl: ttl, prefix: "stock-ledger:order-deduction"}
}

func (g *OrderGuard) key(companyID, orderID string) string {
	return fmt.Sprintf("%s:%s:%s", g.prefix, companyID, orderID)
}

// Acquire devuelve false si el pedido ya estaba marcado.
func (g *OrderGuard) Acquire(ctx context.Context, companyID, orderID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(companyID, orderID), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: marcar pedido: %w", err)
	}
	return ok, nil
}

// Release borra la marca para permitir un reintento.
func (g *OrderGuard) Release(ctx context.Context, companyID, orderID string) error {
	if err := g.client.Del(ctx, g.key(companyID, orderID)).Err(); err != nil {
		return fmt.Errorf("redis: liberar pedido: %w", err)
	}
	return nil
}
