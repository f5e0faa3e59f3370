package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenleaf/plant-store-api/internal/ai"
	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/model"
	"github.com/greenleaf/plant-store-api/internal/service"
)

type PlantHandler struct {
	plantService *service.PlantService
	generator    *ai.Generator
}

func NewPlantHandler(plantService *service.PlantService, generator *ai.Generator) *PlantHandler {
	return &PlantHandler{plantService: plantService, generator: generator}
}

func (h *PlantHandler) List(c *gin.Context) {
	var req dto.ListPlantsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	filter := model.PlantFilter{
		Category: model.Category(req.Category),
		Size:     model.Size(req.Size),
		Search:   req.Search,
	}
	if req.MinPrice != "" {
		min, err := decimal.NewFromString(req.MinPrice)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid minPrice")
			return
		}
		filter.MinPrice = &min
	}
	if req.MaxPrice != "" {
		max, err := decimal.NewFromString(req.MaxPrice)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid maxPrice")
			return
		}
		filter.MaxPrice = &max
	}

	plants, err := h.plantService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, toPlantResponses(plants), len(plants))
}

func (h *PlantHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid plant ID")
		return
	}

	plant, err := h.plantService.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toPlantResponse(plant))
}

func (h *PlantHandler) Featured(c *gin.Context) {
	plants, err := h.plantService.Featured(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, toPlantResponses(plants), len(plants))
}

func (h *PlantHandler) Promotions(c *gin.Context) {
	plants, err := h.plantService.Promotions(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondList(c, toPlantResponses(plants), len(plants))
}

func (h *PlantHandler) Create(c *gin.Context) {
	var req dto.CreatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	plant, err := h.plantService.Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, toPlantResponse(plant))
}

func (h *PlantHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid plant ID")
		return
	}

	var req dto.UpdatePlantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	plant, err := h.plantService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, toPlantResponse(plant))
}

func (h *PlantHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid plant ID")
		return
	}

	if err := h.plantService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "plant deleted successfully")
}

// GenerateInfo drafts a description, price recommendation, and care guide for
// admin tooling. The generator degrades to static fallback data on upstream
// failure, so an error here means the request itself could not run.
func (h *PlantHandler) GenerateInfo(c *gin.Context) {
	var req dto.GenerateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	info, err := h.generator.GenerateInfo(c.Request.Context(), req.PlantName, req.Category, req.Size)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to generate plant info")
		return
	}
	respondOK(c, http.StatusOK, info)
}

func toPlantResponse(p *model.Plant) dto.PlantResponse {
	return dto.PlantResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Currency:       p.Currency,
		Category:       p.Category,
		Size:           p.Size,
		Stock:          p.Stock,
		Available:      p.Available(),
		Images:         p.Images,
		Featured:       p.Featured,
		OnPromotion:    p.OnPromotion,
		PromotionPrice: p.PromotionPrice,
		CareGuide:      p.CareGuide,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toPlantResponses(plants []model.Plant) []dto.PlantResponse {
	out := make([]dto.PlantResponse, 0, len(plants))
	for i := range plants {
		out = append(out, toPlantResponse(&plants[i]))
	}
	return out
}
