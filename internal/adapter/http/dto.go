package http

import (
	"time"

	"github.com/K-Gaydukov/marketplace/internal/entity"
	"github.com/K-Gaydukov/marketplace/internal/usecase"
	"github.com/shopspring/decimal"
)

type orderItemReq struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type orderReq struct {
	Items []orderItemReq `json:"items" binding:"required"`
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

type OrderItemResp struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
}

type OrderResp struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	UserName    string          `json:"userFio"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Items       []OrderItemResp `json:"items"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type OrderSummaryResp struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type PageResp struct {
	Content       []OrderSummaryResp `json:"content"`
	Page          int                `json:"page"`
	Size          int                `json:"size"`
	TotalElements int64              `json:"totalElements"`
	TotalPages    int                `json:"totalPages"`
	Last          bool               `json:"last"`
}

func toItemReqs(items []orderItemReq) []usecase.ItemRequest {
	out := make([]usecase.ItemRequest, 0, len(items))
	for _, it := range items {
		out = append(out, usecase.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func toOrderResp(o *entity.Order) OrderResp {
	items := make([]OrderItemResp, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		items = append(items, OrderItemResp{
			ID:           it.ID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			LineTotal:    it.LineTotal,
		})
	}
	return OrderResp{
		ID:          o.ID,
		UserID:      o.UserID,
		UserName:    o.UserName,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		Items:       items,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func toPageResp(p *usecase.OrderPage) PageResp {
	content := make([]OrderSummaryResp, 0, len(p.Orders))
	for i := range p.Orders {
		o := &p.Orders[i]
		content = append(content, OrderSummaryResp{
			ID:          o.ID,
			UserID:      o.UserID,
			Status:      string(o.Status),
			TotalAmount: o.TotalAmount,
			ItemCount:   o.ItemCount,
			CreatedAt:   o.CreatedAt,
		})
	}
	return PageResp{
		Content:       content,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Last:          p.Last,
	}
}
