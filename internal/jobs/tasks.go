// Package jobs define las tareas asynq del libro de stock: evaluación de stock bajo
// y descuento de insumos por pedido completado.
package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

const (
	// QueueDefault cola para tareas programadas.
	QueueDefault = "default"
	// QueueCritical cola para descuentos de pedidos; se atiende primero.
	QueueCritical = "critical"

	// TaskLowStockEvaluate evalúa stock bajo de una empresa.
	TaskLowStockEvaluate = "lowstock:evaluate"
	// TaskOrderCompleted descuenta los insumos de un pedido pagado.
	TaskOrderCompleted = "order:completed"
)

// LowStockPayload empresa a evaluar.
type LowStockPayload struct {
	CompanyID string `json:"company_id"`
}

// NewLowStockTask construye la tarea de evaluación.
func NewLowStockTask(companyID string) (*asynq.Task, error) {
	if companyID == "" {
		return nil, fmt.Errorf("jobs: company_id vacío")
	}
	body, err := json.Marshal(LowStockPayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockEvaluate, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}

// OrderItemPayload línea del pedido.
type OrderItemPayload struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// OrderCompletedPayload evento de pedido pagado con el contexto de quien lo reportó.
type OrderCompletedPayload struct {
	CompanyID   string             `json:"company_id"`
	UserID      string             `json:"user_id,omitempty"`
	OrderID     string             `json:"order_id"`
	BranchID    string             `json:"branch_id,omitempty"`
	CompletedAt time.Time          `json:"completed_at"`
	Items       []OrderItemPayload `json:"items"`
}

// Order convierte el payload en la entidad que recibe el caso de uso.
func (p OrderCompletedPayload) Order() entity.Order {
	items := make([]entity.OrderItem, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, entity.OrderItem{MenuItemID: it.MenuItemID, Name: it.Name, Quantity: it.Quantity})
	}
	return entity.Order{ID: p.OrderID, BranchID: p.BranchID, Items: items, CompletedAt: p.CompletedAt}
}

// NewOrderCompletedTask construye la tarea. El TaskID por (empresa, pedido) hace que asynq
// rechace un segundo encolado del mismo pedido mientras el primero siga retenido.
func NewOrderCompletedTask(p OrderCompletedPayload) (*asynq.Task, error) {
	if p.CompanyID == "" || p.OrderID == "" {
		return nil, fmt.Errorf("jobs: company_id y order_id son requeridos")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCompleted, body,
		asynq.Queue(QueueCritical),
		asynq.TaskID(orderTaskID(p.CompanyID, p.OrderID)),
		asynq.MaxRetry(5),
		asynq.Retention(24*time.Hour),
	), nil
}

func orderTaskID(companyID, orderID string) string {
	return "order:" + companyID + ":" + orderID
}
