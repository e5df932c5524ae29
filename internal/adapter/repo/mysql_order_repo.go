package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/K-Gaydukov/marketplace/internal/apperr"
	"github.com/K-Gaydukov/marketplace/internal/entity"
	"github.com/K-Gaydukov/marketplace/internal/usecase"
)

const defaultPageSize = 20

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

func (r *MySQLOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO orders (user_id,user_name,status,total_amount,version,created_at,updated_at)
VALUES (?,?,?,?,0,?,?)
`, o.UserID, o.UserName, string(o.Status), o.TotalAmount, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	o.ID, err = res.LastInsertId()
	return err
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id,user_id,user_name,status,total_amount,version,created_at,updated_at
FROM orders WHERE id=?`, id)

	var o entity.Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.UserName, &status, &o.TotalAmount, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("order with id %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	o.Status = entity.OrderStatus(status)

	if err := r.loadItems(ctx, &o); err != nil {
		return nil, err
	}
	o.ItemCount = len(o.Items)
	return &o, nil
}

func (r *MySQLOrderRepo) loadItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT id,order_id,product_id,product_name,product_price,quantity,line_total
FROM order_items WHERE order_id=? ORDER BY id`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.ProductPrice, &it.Quantity, &it.LineTotal); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *MySQLOrderRepo) List(ctx context.Context, f usecase.OrderFilter, p usecase.PageRequest) (*usecase.OrderPage, error) {
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Page < 0 {
		p.Page = 0
	}

	var conds []string
	var args []any
	if f.UserID != nil {
		conds = append(conds, "o.user_id=?")
		args = append(args, *f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "o.status=?")
		args = append(args, string(f.Status))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders o"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := `
SELECT o.id,o.user_id,o.user_name,o.status,o.total_amount,o.version,o.created_at,o.updated_at,
       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id=o.id) AS item_count
FROM orders o` + where + `
ORDER BY o.created_at DESC, o.id DESC LIMIT ? OFFSET ?`
	args = append(args, p.Size, p.Page*p.Size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.UserName, &status, &o.TotalAmount,
			&o.Version, &o.CreatedAt, &o.UpdatedAt, &o.ItemCount); err != nil {
			return nil, err
		}
		o.Status = entity.OrderStatus(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int((total + int64(p.Size) - 1) / int64(p.Size))
	return &usecase.OrderPage{
		Orders:        orders,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          p.Page >= totalPages-1,
	}, nil
}

// Update writes the order row and bumps its version. There is no
// compare-and-set: concurrent mutations of the same order interleave
// with last-write-wins at the row level (accepted, see DESIGN.md).
func (r *MySQLOrderRepo) Update(ctx context.Context, o *entity.Order) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status=?, total_amount=?, updated_at=?, version=version+1
WHERE id=?`, string(o.Status), o.TotalAmount, o.UpdatedAt, o.ID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("order with id %d not found", o.ID)
	}
	o.Version++
	return nil
}

func (r *MySQLOrderRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id=?`, id)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperr.NotFound("order with id %d not found", id)
	}
	return nil
}

func (r *MySQLOrderRepo) InsertItem(ctx context.Context, it *entity.OrderItem) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO order_items (order_id,product_id,product_name,product_price,quantity,line_total)
VALUES (?,?,?,?,?,?)
`, it.OrderID, it.ProductID, it.ProductName, it.ProductPrice, it.Quantity, it.LineTotal)
	if err != nil {
		return err
	}
	it.ID, err = res.LastInsertId()
	return err
}

func (r *MySQLOrderRepo) UpdateItem(ctx context.Context, it *entity.OrderItem) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE order_items
SET product_id=?, product_name=?, product_price=?, quantity=?, line_total=?
WHERE id=?`, it.ProductID, it.ProductName, it.ProductPrice, it.Quantity, it.LineTotal, it.ID)
	return err
}

func (r *MySQLOrderRepo) DeleteItem(ctx context.Context, itemID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE id=?`, itemID)
	return err
}

func (r *MySQLOrderRepo) DeleteItemsByOrder(ctx context.Context, orderID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id=?`, orderID)
	return err
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
