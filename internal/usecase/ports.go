package usecase

import (
	"context"

	"github.com/K-Gaydukov/marketplace/internal/entity"
)

// OrderFilter narrows List. Nil UserID means all owners; empty Status
// means any status.
type OrderFilter struct {
	UserID *int64
	Status entity.OrderStatus
}

type PageRequest struct {
	Page int
	Size int
}

type OrderPage struct {
	Orders        []entity.Order
	Page          int
	Size          int
	TotalElements int64
	TotalPages    int
	Last          bool
}

type OrderRepo interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	List(ctx context.Context, f OrderFilter, p PageRequest) (*OrderPage, error)
	Update(ctx context.Context, o *entity.Order) error
	Delete(ctx context.Context, id int64) error
	InsertItem(ctx context.Context, it *entity.OrderItem) error
	UpdateItem(ctx context.Context, it *entity.OrderItem) error
	DeleteItem(ctx context.Context, itemID int64) error
	DeleteItemsByOrder(ctx context.Context, orderID int64) error
}

// CatalogGateway is the remote catalog boundary. GetProduct forwards the
// caller's bearer token; AdjustStock authenticates as this service
// (negative delta reserves, positive releases).
type CatalogGateway interface {
	GetProduct(ctx context.Context, id int64, bearer string) (*entity.Product, error)
	AdjustStock(ctx context.Context, id int64, delta int) (*entity.Product, error)
}

type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type OrderCache interface {
	SetStatus(ctx context.Context, orderID int64, status string) error
	GetStatus(ctx context.Context, orderID int64) (string, bool, error)
}

// OrderQueue carries order.created to the fulfillment queue.
type OrderQueue interface {
	PublishCreated(ctx context.Context, msg OrderCreatedMsg) error
}

// EventStream carries order.status.changed to the event log.
type EventStream interface {
	PublishStatusChanged(ctx context.Context, msg OrderStatusChangedMsg) error
}
