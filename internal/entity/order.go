package entity

import (
	"time"

	"github.com/K-Gaydukov/marketplace/internal/apperr"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusNew       OrderStatus = "NEW"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus rejects anything outside the closed enum.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusNew, StatusConfirmed, StatusCompleted, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", apperr.Validation("unknown order status %q", s)
}

type Order struct {
	ID          int64
	UserID      int64
	UserName    string // display name snapshotted at creation
	Status      OrderStatus
	TotalAmount decimal.Decimal
	Items       []OrderItem
	ItemCount   int // populated on list reads; elsewhere use len(Items)
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderItem snapshots product name and unit price at reservation time;
// they are never refreshed from the catalog afterwards.
type OrderItem struct {
	ID           int64
	OrderID      int64
	ProductID    int64
	ProductName  string
	ProductPrice decimal.Decimal
	Quantity     int
	LineTotal    decimal.Decimal
}

// ItemsMutable reports whether item-level changes (add/update/delete,
// full replace, order delete) are still allowed.
func (o *Order) ItemsMutable() bool { return o.Status == StatusNew }

// RecomputeTotal folds the current item set into TotalAmount. Always a
// full fold; incremental accumulation drifts when items churn.
func (o *Order) RecomputeTotal() {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].LineTotal)
	}
	o.TotalAmount = total
}

// ItemByID returns the item and its index, or nil/-1.
func (o *Order) ItemByID(itemID int64) (*OrderItem, int) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], i
		}
	}
	return nil, -1
}

func (o *Order) RemoveItemAt(i int) {
	o.Items = append(o.Items[:i], o.Items[i+1:]...)
}
