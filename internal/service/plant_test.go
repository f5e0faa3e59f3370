package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/model"
	"github.com/greenleaf/plant-store-api/internal/repository"
)

type mockPlantRepo struct {
	mu         sync.Mutex
	plants     map[uuid.UUID]*model.Plant
	lastFilter model.PlantFilter
}

func newMockPlantRepo() *mockPlantRepo {
	return &mockPlantRepo{plants: make(map[uuid.UUID]*model.Plant)}
}

func (m *mockPlantRepo) Create(_ context.Context, plant *model.Plant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	plant.ID = uuid.New()
	if plant.Currency == "" {
		plant.Currency = "TND"
	}
	cp := *plant
	m.plants[plant.ID] = &cp
	return nil
}

func (m *mockPlantRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plants[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *mockPlantRepo) List(_ context.Context, filter model.PlantFilter) ([]model.Plant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFilter = filter
	var out []model.Plant
	for _, p := range m.plants {
		if filter.Featured != nil && p.Featured != *filter.Featured {
			continue
		}
		if filter.OnPromotion != nil && p.OnPromotion != *filter.OnPromotion {
			continue
		}
		out = append(out, *p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *mockPlantRepo) Update(_ context.Context, plant *model.Plant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *plant
	m.plants[plant.ID] = &cp
	return nil
}

func (m *mockPlantRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.plants, id)
	return nil
}

func (m *mockPlantRepo) DecrementStock(_ context.Context, _ pgx.Tx, plantID uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decrementLocked(plantID, quantity)
}

func (m *mockPlantRepo) decrementLocked(plantID uuid.UUID, quantity int) error {
	p, ok := m.plants[plantID]
	if !ok || p.Stock < quantity {
		available := 0
		if ok {
			available = p.Stock
		}
		return &repository.InsufficientStockError{PlantID: plantID, Available: available, Requested: quantity}
	}
	p.Stock -= quantity
	return nil
}

func (m *mockPlantRepo) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plants[id].Stock
}

func dec(f float64) *decimal.Decimal {
	d := decimal.NewFromFloat(f)
	return &d
}

func TestPlantService_Create(t *testing.T) {
	repo := newMockPlantRepo()
	svc := NewPlantService(repo, nil)

	plant, err := svc.Create(context.Background(), dto.CreatePlantRequest{
		Name:        "Monstera",
		Description: "Grande plante d'intérieur",
		Price:       decimal.NewFromFloat(45),
		Category:    model.CategoryIndoor,
		Size:        model.SizeLarge,
		Stock:       10,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, plant.ID)
	assert.Equal(t, "TND", plant.Currency)
	assert.Equal(t, 10, plant.Stock)
}

func TestPlantService_Create_PromotionPriceAboveBase(t *testing.T) {
	svc := NewPlantService(newMockPlantRepo(), nil)

	_, err := svc.Create(context.Background(), dto.CreatePlantRequest{
		Name:           "Ficus",
		Description:    "d",
		Price:          decimal.NewFromFloat(30),
		Category:       model.CategoryIndoor,
		Size:           model.SizeMedium,
		OnPromotion:    true,
		PromotionPrice: dec(35),
	})
	assert.ErrorIs(t, err, ErrPromotionPriceHigh)
}

func TestPlantService_Create_PromotionPriceCheckedWithoutFlag(t *testing.T) {
	svc := NewPlantService(newMockPlantRepo(), nil)

	// The stored promotion price must be valid even while the promotion is off.
	_, err := svc.Create(context.Background(), dto.CreatePlantRequest{
		Name:           "Ficus",
		Description:    "d",
		Price:          decimal.NewFromFloat(30),
		Category:       model.CategoryIndoor,
		Size:           model.SizeMedium,
		OnPromotion:    false,
		PromotionPrice: dec(40),
	})
	assert.ErrorIs(t, err, ErrPromotionPriceHigh)
}

func TestPlantService_GetByID_NotFound(t *testing.T) {
	svc := NewPlantService(newMockPlantRepo(), nil)
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPlantNotFound)
}

func TestPlantService_Update_PartialPatch(t *testing.T) {
	repo := newMockPlantRepo()
	svc := NewPlantService(repo, nil)

	plant, err := svc.Create(context.Background(), dto.CreatePlantRequest{
		Name:        "Olivier",
		Description: "Arbre méditerranéen",
		Price:       decimal.NewFromFloat(80),
		Category:    model.CategoryTree,
		Size:        model.SizeLarge,
		Stock:       5,
	})
	require.NoError(t, err)

	name := "Olivier centenaire"
	stock := 3
	updated, err := svc.Update(context.Background(), plant.ID, dto.UpdatePlantRequest{
		Name:  &name,
		Stock: &stock,
	})
	require.NoError(t, err)

	assert.Equal(t, "Olivier centenaire", updated.Name)
	assert.Equal(t, 3, updated.Stock)
	assert.Equal(t, "Arbre méditerranéen", updated.Description)
	assert.True(t, updated.Price.Equal(decimal.NewFromFloat(80)))
}

func TestPlantService_Update_PromotionPriceAboveNewBase(t *testing.T) {
	repo := newMockPlantRepo()
	svc := NewPlantService(repo, nil)

	plant, err := svc.Create(context.Background(), dto.CreatePlantRequest{
		Name:        "Cactus",
		Description: "d",
		Price:       decimal.NewFromFloat(50),
		Category:    model.CategorySucculent,
		Size:        model.SizeSmall,
	})
	require.NoError(t, err)

	price := decimal.NewFromFloat(20)
	_, err = svc.Update(context.Background(), plant.ID, dto.UpdatePlantRequest{
		Price:          &price,
		PromotionPrice: dec(25),
	})
	assert.ErrorIs(t, err, ErrPromotionPriceHigh)
}

func TestPlantService_Update_NotFound(t *testing.T) {
	svc := NewPlantService(newMockPlantRepo(), nil)
	name := "x"
	_, err := svc.Update(context.Background(), uuid.New(), dto.UpdatePlantRequest{Name: &name})
	assert.ErrorIs(t, err, ErrPlantNotFound)
}

func TestPlantService_Featured_LimitsResults(t *testing.T) {
	repo := newMockPlantRepo()
	svc := NewPlantService(repo, nil)

	for i := 0; i < 10; i++ {
		_, err := svc.Create(context.Background(), dto.CreatePlantRequest{
			Name:        "Plante vedette",
			Description: "d",
			Price:       decimal.NewFromFloat(10),
			Category:    model.CategoryIndoor,
			Size:        model.SizeSmall,
			Featured:    true,
		})
		require.NoError(t, err)
	}

	plants, err := svc.Featured(context.Background())
	require.NoError(t, err)
	assert.Len(t, plants, 6)
	require.NotNil(t, repo.lastFilter.Featured)
	assert.True(t, *repo.lastFilter.Featured)
	assert.Equal(t, 6, repo.lastFilter.Limit)
}

func TestPlantService_Promotions_FiltersByFlag(t *testing.T) {
	repo := newMockPlantRepo()
	svc := NewPlantService(repo, nil)

	_, err := svc.Create(context.Background(), dto.CreatePlantRequest{
		Name: "En promo", Description: "d", Price: decimal.NewFromFloat(30),
		Category: model.CategoryFlower, Size: model.SizeSmall,
		OnPromotion: true, PromotionPrice: dec(20),
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), dto.CreatePlantRequest{
		Name: "Plein tarif", Description: "d", Price: decimal.NewFromFloat(30),
		Category: model.CategoryFlower, Size: model.SizeSmall,
	})
	require.NoError(t, err)

	plants, err := svc.Promotions(context.Background())
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, "En promo", plants[0].Name)
}
