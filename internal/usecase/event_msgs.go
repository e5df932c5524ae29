package usecase

import "time"

type OrderCreatedMsg struct {
	EventID     string    `json:"event_id"`
	OrderID     int64     `json:"order_id"`
	UserID      int64     `json:"user_id"`
	TotalAmount string    `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderStatusChangedMsg struct {
	EventID   string    `json:"event_id"`
	OrderID   int64     `json:"order_id"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
}
