package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/model"
	"github.com/greenleaf/plant-store-api/internal/repository"
)

const (
	plantCacheTTL      = 60 * time.Second
	featuredCacheKey   = "plants:featured"
	promotionsCacheKey = "plants:promotions"
	featuredLimit      = 6
)

type PlantService struct {
	plantRepo   repository.PlantRepository
	redisClient *redis.Client
}

func NewPlantService(plantRepo repository.PlantRepository, redisClient *redis.Client) *PlantService {
	return &PlantService{plantRepo: plantRepo, redisClient: redisClient}
}

func (s *PlantService) Create(ctx context.Context, req dto.CreatePlantRequest) (*model.Plant, error) {
	if err := checkPromotionPrice(req.PromotionPrice, req.Price); err != nil {
		return nil, err
	}

	plant := &model.Plant{
		Name:           req.Name,
		Description:    req.Description,
		Price:          req.Price,
		Currency:       req.Currency,
		Category:       req.Category,
		Size:           req.Size,
		Stock:          req.Stock,
		Images:         req.Images,
		Featured:       req.Featured,
		OnPromotion:    req.OnPromotion,
		PromotionPrice: req.PromotionPrice,
		CareGuide:      req.CareGuide,
	}
	if err := s.plantRepo.Create(ctx, plant); err != nil {
		return nil, fmt.Errorf("create plant: %w", err)
	}
	s.invalidateLists(ctx)
	return plant, nil
}

func (s *PlantService) GetByID(ctx context.Context, id uuid.UUID) (*model.Plant, error) {
	cacheKey := "plant:" + id.String()

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			plant := &model.Plant{}
			if json.Unmarshal([]byte(cached), plant) == nil {
				return plant, nil
			}
		}
	}

	plant, err := s.plantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plant: %w", err)
	}
	if plant == nil {
		return nil, ErrPlantNotFound
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(plant); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, plantCacheTTL)
		}
	}
	return plant, nil
}

func (s *PlantService) List(ctx context.Context, filter model.PlantFilter) ([]model.Plant, error) {
	return s.plantRepo.List(ctx, filter)
}

func (s *PlantService) Featured(ctx context.Context) ([]model.Plant, error) {
	return s.cachedList(ctx, featuredCacheKey, func() model.PlantFilter {
		featured := true
		return model.PlantFilter{Featured: &featured, Limit: featuredLimit}
	})
}

func (s *PlantService) Promotions(ctx context.Context) ([]model.Plant, error) {
	return s.cachedList(ctx, promotionsCacheKey, func() model.PlantFilter {
		promo := true
		return model.PlantFilter{OnPromotion: &promo}
	})
}

func (s *PlantService) cachedList(ctx context.Context, key string, filter func() model.PlantFilter) ([]model.Plant, error) {
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, key).Result(); err == nil {
			var plants []model.Plant
			if json.Unmarshal([]byte(cached), &plants) == nil {
				return plants, nil
			}
		}
	}

	plants, err := s.plantRepo.List(ctx, filter())
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}

	if s.redisClient != nil {
		if data, err := json.Marshal(plants); err == nil {
			s.redisClient.Set(ctx, key, data, plantCacheTTL)
		}
	}
	return plants, nil
}

func (s *PlantService) Update(ctx context.Context, id uuid.UUID, req dto.UpdatePlantRequest) (*model.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get plant: %w", err)
	}
	if plant == nil {
		return nil, ErrPlantNotFound
	}

	if req.Name != nil {
		plant.Name = *req.Name
	}
	if req.Description != nil {
		plant.Description = *req.Description
	}
	if req.Price != nil {
		plant.Price = *req.Price
	}
	if req.Currency != nil {
		plant.Currency = *req.Currency
	}
	if req.Category != nil {
		plant.Category = *req.Category
	}
	if req.Size != nil {
		plant.Size = *req.Size
	}
	if req.Stock != nil {
		plant.Stock = *req.Stock
	}
	if req.Images != nil {
		plant.Images = req.Images
	}
	if req.Featured != nil {
		plant.Featured = *req.Featured
	}
	if req.OnPromotion != nil {
		plant.OnPromotion = *req.OnPromotion
	}
	if req.PromotionPrice != nil {
		plant.PromotionPrice = req.PromotionPrice
	}
	if req.CareGuide != nil {
		plant.CareGuide = req.CareGuide
	}

	if err := checkPromotionPrice(plant.PromotionPrice, plant.Price); err != nil {
		return nil, err
	}

	if err := s.plantRepo.Update(ctx, plant); err != nil {
		return nil, fmt.Errorf("update plant: %w", err)
	}

	s.InvalidatePlant(ctx, id)
	return plant, nil
}

func (s *PlantService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.plantRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete plant: %w", err)
	}
	s.InvalidatePlant(ctx, id)
	return nil
}

// InvalidatePlant drops every cache entry that may reflect the plant's state.
// Stock decrements during checkout go through here too.
func (s *PlantService) InvalidatePlant(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "plant:"+id.String(), featuredCacheKey, promotionsCacheKey)
	}
}

func (s *PlantService) invalidateLists(ctx context.Context) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, featuredCacheKey, promotionsCacheKey)
	}
}

// A promotion price above the base price is rejected regardless of whether the
// promotion flag is currently set.
func checkPromotionPrice(promo *decimal.Decimal, base decimal.Decimal) error {
	if promo != nil && promo.GreaterThan(base) {
		return ErrPromotionPriceHigh
	}
	return nil
}
