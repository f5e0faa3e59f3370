package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/greenleaf/plant-store-api/internal/model"
)

type DashboardStats struct {
	TotalOrders     int
	PendingOrders   int
	DeliveredOrders int
	TotalRevenue    decimal.Decimal
}

type OrderRepository interface {
	// Place persists the order and decrements stock for every line inside a
	// single transaction. Either the whole order commits or nothing does.
	Place(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	ListAll(ctx context.Context, limit int) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	Stats(ctx context.Context) (*DashboardStats, error)
}

type pgOrderRepo struct {
	pool      *pgxpool.Pool
	plantRepo PlantRepository
}

func NewOrderRepository(pool *pgxpool.Pool, plantRepo PlantRepository) OrderRepository {
	return &pgOrderRepo{pool: pool, plantRepo: plantRepo}
}

func (r *pgOrderRepo) Place(ctx context.Context, order *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, is_guest_order, email, first_name, last_name, phone,
			street, city, postal_code, country, total_price, status, delivery_status,
			paid_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.IsGuestOrder,
		order.DeliveryInfo.Email, order.DeliveryInfo.FirstName, order.DeliveryInfo.LastName,
		order.DeliveryInfo.Phone, order.DeliveryInfo.Address.Street, order.DeliveryInfo.Address.City,
		order.DeliveryInfo.Address.PostalCode, order.DeliveryInfo.Address.Country,
		order.TotalPrice, order.Status, order.DeliveryStatus, order.PaidAt,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Lines {
		order.Lines[i].ID = uuid.New()
		order.Lines[i].OrderID = order.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO order_lines (id, order_id, line_no, plant_id, name, quantity, unit_price, image)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			order.Lines[i].ID, order.ID, i, order.Lines[i].PlantID, order.Lines[i].Name,
			order.Lines[i].Quantity, order.Lines[i].UnitPrice, order.Lines[i].Image,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}

		if err = r.plantRepo.DecrementStock(ctx, tx, order.Lines[i].PlantID, order.Lines[i].Quantity); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

const orderColumns = `id, user_id, is_guest_order, email, first_name, last_name, phone,
	street, city, postal_code, country, total_price, status, delivery_status,
	delivery_driver, delivery_notes, paid_at, delivered_at, created_at, updated_at`

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *pgOrderRepo) loadLines(ctx context.Context, order *model.Order) error {
	// line_no preserves submission order; line ids are random and carry none.
	rows, err := r.pool.Query(ctx,
		`SELECT id, plant_id, name, quantity, unit_price, image
		 FROM order_lines WHERE order_id = $1 ORDER BY line_no`, order.ID,
	)
	if err != nil {
		return fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.PlantID, &l.Name, &l.Quantity, &l.UnitPrice, &l.Image); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		l.OrderID = order.ID
		order.Lines = append(order.Lines, l)
	}
	return rows.Err()
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *pgOrderRepo) ListAll(ctx context.Context, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	if limit > 0 {
		return r.list(ctx, query+` LIMIT $1`, limit)
	}
	return r.list(ctx, query)
}

func (r *pgOrderRepo) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *pgOrderRepo) Update(ctx context.Context, order *model.Order) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE orders SET status=$2, delivery_status=$3, delivery_driver=$4,
			delivery_notes=$5, delivered_at=$6, updated_at=NOW()
		 WHERE id=$1 RETURNING updated_at`,
		order.ID, order.Status, order.DeliveryStatus, order.DeliveryDriver,
		order.DeliveryNotes, order.DeliveredAt,
	).Scan(&order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
				COUNT(*) FILTER (WHERE status = 'pending'),
				COUNT(*) FILTER (WHERE status = 'delivered'),
				COALESCE(SUM(total_price) FILTER (WHERE status <> 'cancelled'), 0)
		 FROM orders`,
	).Scan(&stats.TotalOrders, &stats.PendingOrders, &stats.DeliveredOrders, &stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return stats, nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	order := &model.Order{}
	err := row.Scan(
		&order.ID, &order.UserID, &order.IsGuestOrder,
		&order.DeliveryInfo.Email, &order.DeliveryInfo.FirstName, &order.DeliveryInfo.LastName,
		&order.DeliveryInfo.Phone, &order.DeliveryInfo.Address.Street, &order.DeliveryInfo.Address.City,
		&order.DeliveryInfo.Address.PostalCode, &order.DeliveryInfo.Address.Country,
		&order.TotalPrice, &order.Status, &order.DeliveryStatus,
		&order.DeliveryDriver, &order.DeliveryNotes,
		&order.PaidAt, &order.DeliveredAt, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}
