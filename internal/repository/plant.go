package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/greenleaf/plant-store-api/internal/model"
)

// InsufficientStockError is returned when a decrement would take a plant's
// stock negative. It carries enough detail for the caller to report which
// line failed.
type InsufficientStockError struct {
	PlantID   uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for plant %s: available %d, requested %d",
		e.PlantID, e.Available, e.Requested)
}

type PlantRepository interface {
	Create(ctx context.Context, plant *model.Plant) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Plant, error)
	List(ctx context.Context, filter model.PlantFilter) ([]model.Plant, error)
	Update(ctx context.Context, plant *model.Plant) error
	Delete(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, tx pgx.Tx, plantID uuid.UUID, quantity int) error
}

type pgPlantRepo struct{ pool *pgxpool.Pool }

func NewPlantRepository(pool *pgxpool.Pool) PlantRepository {
	return &pgPlantRepo{pool: pool}
}

const plantColumns = `id, name, description, price, currency, category, size, stock,
	images, featured, on_promotion, promotion_price, care_guide, created_at, updated_at`

func (r *pgPlantRepo) Create(ctx context.Context, plant *model.Plant) error {
	plant.ID = uuid.New()
	if plant.Currency == "" {
		plant.Currency = "TND"
	}
	query := `INSERT INTO plants (id, name, description, price, currency, category, size, stock,
				images, featured, on_promotion, promotion_price, care_guide, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		plant.ID, plant.Name, plant.Description, plant.Price, plant.Currency,
		plant.Category, plant.Size, plant.Stock, plant.Images, plant.Featured,
		plant.OnPromotion, nullDecimal(plant.PromotionPrice), plant.CareGuide,
	).Scan(&plant.CreatedAt, &plant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create plant: %w", err)
	}
	return nil
}

func (r *pgPlantRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Plant, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+plantColumns+` FROM plants WHERE id = $1`, id)
	p, err := scanPlant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plant: %w", err)
	}
	return p, nil
}

func (r *pgPlantRepo) List(ctx context.Context, filter model.PlantFilter) ([]model.Plant, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Size != "" {
		conds = append(conds, "size = "+arg(filter.Size))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*filter.MaxPrice))
	}
	if filter.Search != "" {
		p := arg(filter.Search)
		conds = append(conds, fmt.Sprintf("(name ILIKE '%%' || %s || '%%' OR description ILIKE '%%' || %s || '%%')", p, p))
	}
	if filter.Featured != nil {
		conds = append(conds, "featured = "+arg(*filter.Featured))
	}
	if filter.OnPromotion != nil {
		conds = append(conds, "on_promotion = "+arg(*filter.OnPromotion))
	}

	query := `SELECT ` + plantColumns + ` FROM plants`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	defer rows.Close()

	var plants []model.Plant
	for rows.Next() {
		p, err := scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plant: %w", err)
		}
		plants = append(plants, *p)
	}
	return plants, rows.Err()
}

func (r *pgPlantRepo) Update(ctx context.Context, plant *model.Plant) error {
	query := `UPDATE plants SET name=$2, description=$3, price=$4, currency=$5, category=$6,
				size=$7, stock=$8, images=$9, featured=$10, on_promotion=$11,
				promotion_price=$12, care_guide=$13, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		plant.ID, plant.Name, plant.Description, plant.Price, plant.Currency,
		plant.Category, plant.Size, plant.Stock, plant.Images, plant.Featured,
		plant.OnPromotion, nullDecimal(plant.PromotionPrice), plant.CareGuide,
	).Scan(&plant.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("update plant: %w", err)
	}
	return nil
}

func (r *pgPlantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM plants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DecrementStock performs the atomic conditional decrement that guards against
// overselling: the WHERE clause refuses the update when stock would go negative.
func (r *pgPlantRepo) DecrementStock(ctx context.Context, tx pgx.Tx, plantID uuid.UUID, quantity int) error {
	ct, err := tx.Exec(ctx,
		`UPDATE plants SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
		plantID, quantity,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		var available int
		if err := tx.QueryRow(ctx, `SELECT stock FROM plants WHERE id = $1`, plantID).Scan(&available); err != nil {
			available = 0
		}
		return &InsufficientStockError{PlantID: plantID, Available: available, Requested: quantity}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlant(row rowScanner) (*model.Plant, error) {
	p := &model.Plant{}
	var promo decimal.NullDecimal
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Currency, &p.Category, &p.Size,
		&p.Stock, &p.Images, &p.Featured, &p.OnPromotion, &promo, &p.CareGuide,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if promo.Valid {
		p.PromotionPrice = &promo.Decimal
	}
	return p, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
