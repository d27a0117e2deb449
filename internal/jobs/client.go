package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

// Client encola tareas en Redis.
type Client struct {
	client *asynq.Client
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueOrderCompleted encola el descuento del pedido y devuelve el ID de la tarea.
// Un pedido ya encolado devuelve el mismo ID sin error.
func (c *Client) EnqueueOrderCompleted(ctx context.Context, p OrderCompletedPayload) (string, error) {
	task, err := NewOrderCompletedTask(p)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return orderTaskID(p.CompanyID, p.OrderID), nil
		}
		return "", fmt.Errorf("encolar pedido %s: %w", p.OrderID, err)
	}
	return info.ID, nil
}

// EnqueueLowStock encola una evaluación de stock bajo inmediata.
func (c *Client) EnqueueLowStock(ctx context.Context, companyID string) (string, error) {
	task, err := NewLowStockTask(companyID)
	if err != nil {
		return "", err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return "", fmt.Errorf("encolar evaluación: %w", err)
	}
	return info.ID, nil
}

// Close libera la conexión.
func (c *Client) Close() error {
	return c.client.Close()
}
