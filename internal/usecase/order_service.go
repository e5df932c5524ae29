package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/K-Gaydukov/marketplace/internal/apperr"
	"github.com/K-Gaydukov/marketplace/internal/entity"
	"github.com/K-Gaydukov/marketplace/internal/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemRequest is a requested order line. On item update a zero ProductID
// means "keep the current product".
type ItemRequest struct {
	ProductID int64
	Quantity  int
}

type ListQuery struct {
	Status string
	UserID *int64
	Page   int
	Size   int
}

// OrderService orchestrates every state-changing order operation: the
// access checks, the status gate, the stock-reservation saga against the
// catalog, persistence and total recomputation.
type OrderService struct {
	repo    OrderRepo
	catalog CatalogGateway
	idem    IdempotencyStore
	cache   OrderCache
	queue   OrderQueue
	stream  EventStream
}

func NewOrderService(repo OrderRepo, catalog CatalogGateway, idem IdempotencyStore,
	cache OrderCache, queue OrderQueue, stream EventStream) *OrderService {
	return &OrderService{repo: repo, catalog: catalog, idem: idem, cache: cache, queue: queue, stream: stream}
}

// reservation remembers an applied stock adjustment so a later failure
// in the same operation can compensate it.
type reservation struct {
	productID int64
	quantity  int
	itemID    int64
}

// CreateOrder reserves stock for every requested item and persists the
// order with snapshotted prices. A failure part-way releases the already
// reserved items in reverse order and removes the partial order.
func (s *OrderService) CreateOrder(ctx context.Context, p entity.Principal, items []ItemRequest, idemKey string) (*entity.Order, error) {
	if p.Kind != entity.PrincipalUser {
		return nil, apperr.AccessDenied("service identity cannot own orders")
	}
	if len(items) == 0 {
		return nil, apperr.Validation("order must have at least one item")
	}

	scope := strconv.FormatInt(p.UserID, 10)
	if idemKey != "" {
		// Fast path: idempotency recall
		if id, ok, _ := s.idem.Recall(ctx, scope, idemKey); ok {
			orderID, err := strconv.ParseInt(id, 10, 64)
			if err == nil {
				return s.repo.GetByID(ctx, orderID)
			}
		}
		ok, err := s.idem.TryLock(ctx, scope, idemKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Conflict("duplicate idempotency key")
		}
	}

	now := time.Now()
	order := &entity.Order{
		UserID:      p.UserID,
		UserName:    p.FullName,
		Status:      entity.StatusNew,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	applied, err := s.reserveItems(ctx, order, items, p.Token)
	if err != nil {
		s.compensate(ctx, applied)
		_ = s.repo.DeleteItemsByOrder(ctx, order.ID)
		_ = s.repo.Delete(ctx, order.ID)
		return nil, err
	}

	order.RecomputeTotal()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	if idemKey != "" {
		_ = s.idem.Remember(ctx, scope, idemKey, strconv.FormatInt(order.ID, 10))
	}

	if err := s.queue.PublishCreated(ctx, OrderCreatedMsg{
		EventID:     uuid.NewString(),
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount.String(),
		CreatedAt:   order.CreatedAt,
	}); err != nil {
		logging.FromCtx(ctx).Warn("publish order.created failed", "order_id", order.ID, "err", err)
	}

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, p entity.Principal, id int64) (*entity.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(order, p, ModeRead) {
		return nil, apperr.AccessDenied("access denied: not your order")
	}
	return order, nil
}

// ListOrders is selection, not access denial: users always see their own
// orders; admins may filter by owner and default to all orders.
func (s *OrderService) ListOrders(ctx context.Context, p entity.Principal, q ListQuery) (*OrderPage, error) {
	var f OrderFilter
	if q.Status != "" {
		st, err := entity.ParseOrderStatus(q.Status)
		if err != nil {
			return nil, err
		}
		f.Status = st
	}
	if p.IsAdmin() {
		f.UserID = q.UserID
	} else {
		uid := p.UserID
		f.UserID = &uid
	}
	return s.repo.List(ctx, f, PageRequest{Page: q.Page, Size: q.Size})
}

// UpdateOrder replaces the order's item set wholesale: every existing
// reservation is released, then the new items are validated and reserved
// exactly as in CreateOrder.
func (s *OrderService) UpdateOrder(ctx context.Context, p entity.Principal, id int64, items []ItemRequest) (*entity.Order, error) {
	if len(items) == 0 {
		return nil, apperr.Validation("order must have at least one item")
	}
	order, err := s.mutableOrder(ctx, p, id, "update")
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		if _, err := s.catalog.AdjustStock(ctx, order.Items[i].ProductID, order.Items[i].Quantity); err != nil {
			return nil, err
		}
	}
	if err := s.repo.DeleteItemsByOrder(ctx, order.ID); err != nil {
		return nil, err
	}
	order.Items = nil

	applied, err := s.reserveItems(ctx, order, items, p.Token)
	if err != nil {
		// Old items are already gone; unwind the new reservations and
		// leave the order empty rather than half-replaced.
		s.compensate(ctx, applied)
		_ = s.repo.DeleteItemsByOrder(ctx, order.ID)
		order.Items = nil
		order.RecomputeTotal()
		order.UpdatedAt = time.Now()
		_ = s.repo.Update(ctx, order)
		return nil, err
	}

	order.RecomputeTotal()
	order.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, p entity.Principal, id int64) error {
	order, err := s.mutableOrder(ctx, p, id, "delete")
	if err != nil {
		return err
	}
	for i := range order.Items {
		if _, err := s.catalog.AdjustStock(ctx, order.Items[i].ProductID, order.Items[i].Quantity); err != nil {
			return err
		}
	}
	if err := s.repo.DeleteItemsByOrder(ctx, order.ID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, order.ID)
}

// UpdateStatus is admin-only: ownership alone is not enough.
func (s *OrderService) UpdateStatus(ctx context.Context, p entity.Principal, id int64, status string) (*entity.Order, error) {
	if !p.IsAdmin() {
		return nil, apperr.AccessDenied("only admins can update order status")
	}
	st, err := entity.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Status = st
	order.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	if err := s.cache.SetStatus(ctx, order.ID, string(st)); err != nil {
		logging.FromCtx(ctx).Warn("status cache set failed", "order_id", order.ID, "err", err)
	}
	if err := s.stream.PublishStatusChanged(ctx, OrderStatusChangedMsg{
		EventID:   uuid.NewString(),
		OrderID:   order.ID,
		Status:    string(st),
		ChangedAt: order.UpdatedAt,
	}); err != nil {
		logging.FromCtx(ctx).Warn("publish status.changed failed", "order_id", order.ID, "err", err)
	}
	return order, nil
}

func (s *OrderService) AddOrderItem(ctx context.Context, p entity.Principal, orderID int64, req ItemRequest) (*entity.Order, error) {
	order, err := s.mutableOrder(ctx, p, orderID, "add items to")
	if err != nil {
		return nil, err
	}
	item, err := s.reserveOne(ctx, order.ID, req.ProductID, req.Quantity, p.Token)
	if err != nil {
		return nil, err
	}
	order.Items = append(order.Items, *item)
	order.RecomputeTotal()
	order.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderItem releases the item's current reservation before
// reserving the new quantity. The ordering matters: reserving first can
// spuriously fail on tight stock.
func (s *OrderService) UpdateOrderItem(ctx context.Context, p entity.Principal, orderID, itemID int64, req ItemRequest) (*entity.Order, error) {
	order, err := s.mutableOrder(ctx, p, orderID, "update items in")
	if err != nil {
		return nil, err
	}
	item, _ := order.ItemByID(itemID)
	if item == nil {
		return nil, apperr.NotFound("item with id %d not found in order %d", itemID, orderID)
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}

	productID := item.ProductID
	if req.ProductID != 0 {
		productID = req.ProductID
	}

	if _, err := s.catalog.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, productID, p.Token)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperr.Validation("product %d is inactive", product.ID)
	}
	if product.Stock < req.Quantity {
		return nil, apperr.Validation("insufficient stock for product %d", product.ID)
	}
	if _, err := s.catalog.AdjustStock(ctx, product.ID, -req.Quantity); err != nil {
		return nil, err
	}

	item.ProductID = product.ID
	item.ProductName = product.Name
	item.ProductPrice = product.Price
	item.Quantity = req.Quantity
	item.LineTotal = product.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	order.RecomputeTotal()
	order.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) DeleteOrderItem(ctx context.Context, p entity.Principal, orderID, itemID int64) (*entity.Order, error) {
	order, err := s.mutableOrder(ctx, p, orderID, "delete items from")
	if err != nil {
		return nil, err
	}
	item, idx := order.ItemByID(itemID)
	if item == nil {
		return nil, apperr.NotFound("item with id %d not found in order %d", itemID, orderID)
	}

	if _, err := s.catalog.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return nil, err
	}
	order.RemoveItemAt(idx)
	order.RecomputeTotal()
	order.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// mutableOrder loads an order and runs the guards shared by every
// item-level mutation: ownership/role, then the NEW-only status gate.
func (s *OrderService) mutableOrder(ctx context.Context, p entity.Principal, id int64, verb string) (*entity.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(order, p, ModeMutate) {
		return nil, apperr.AccessDenied("access denied: not your order")
	}
	if !order.ItemsMutable() {
		return nil, apperr.Validation("can only %s orders with status NEW", verb)
	}
	return order, nil
}

// reserveItems runs the reservation saga for a batch: validate, snapshot,
// persist, reserve, one item at a time so each reservation observes the
// previous ones. Returns what was applied so the caller can compensate.
func (s *OrderService) reserveItems(ctx context.Context, order *entity.Order, items []ItemRequest, bearer string) ([]reservation, error) {
	applied := make([]reservation, 0, len(items))
	for _, req := range items {
		item, err := s.reserveOne(ctx, order.ID, req.ProductID, req.Quantity, bearer)
		if err != nil {
			return applied, err
		}
		order.Items = append(order.Items, *item)
		applied = append(applied, reservation{productID: item.ProductID, quantity: item.Quantity, itemID: item.ID})
	}
	return applied, nil
}

// reserveOne validates and reserves a single line: snapshot of name and
// price is taken here and never refreshed afterwards.
func (s *OrderService) reserveOne(ctx context.Context, orderID, productID int64, quantity int, bearer string) (*entity.OrderItem, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}
	product, err := s.catalog.GetProduct(ctx, productID, bearer)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, apperr.Validation("product %d is inactive", product.ID)
	}
	if product.Stock < quantity {
		return nil, apperr.Validation("insufficient stock for product %d", product.ID)
	}

	item := &entity.OrderItem{
		OrderID:      orderID,
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPrice: product.Price,
		Quantity:     quantity,
		LineTotal:    product.Price.Mul(decimal.NewFromInt(int64(quantity))),
	}
	if err := s.repo.InsertItem(ctx, item); err != nil {
		return nil, err
	}
	if _, err := s.catalog.AdjustStock(ctx, product.ID, -quantity); err != nil {
		_ = s.repo.DeleteItem(ctx, item.ID)
		return nil, err
	}
	return item, nil
}

// compensate releases applied reservations in reverse order. Best-effort:
// a failed release is logged, never retried.
func (s *OrderService) compensate(ctx context.Context, applied []reservation) {
	for i := len(applied) - 1; i >= 0; i-- {
		r := applied[i]
		if _, err := s.catalog.AdjustStock(ctx, r.productID, r.quantity); err != nil {
			logging.FromCtx(ctx).Error("compensating stock release failed",
				"product_id", r.productID, "quantity", r.quantity, "err", err)
		}
	}
}
