package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/greenleaf/plant-store-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID            uuid.UUID      `json:"id"`
	Email         string         `json:"email"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Phone         string         `json:"phone,omitempty"`
	Address       *model.Address `json:"address,omitempty"`
	Role          model.Role     `json:"role"`
	EmailVerified bool           `json:"email_verified"`
}

type UpdateProfileRequest struct {
	FirstName *string        `json:"first_name"`
	LastName  *string        `json:"last_name"`
	Phone     *string        `json:"phone"`
	Address   *model.Address `json:"address"`
}

// --- Plant ---

type CreatePlantRequest struct {
	Name           string           `json:"name" binding:"required,max=100"`
	Description    string           `json:"description" binding:"required,max=1000"`
	Price          decimal.Decimal  `json:"price" binding:"required"`
	Currency       string           `json:"currency" binding:"omitempty,oneof=TND EUR USD"`
	Category       model.Category   `json:"category" binding:"required,oneof=indoor outdoor succulent flower tree herb other"`
	Size           model.Size       `json:"size" binding:"required,oneof=small medium large"`
	Stock          int              `json:"stock" binding:"min=0"`
	Images         []string         `json:"images"`
	Featured       bool             `json:"featured"`
	OnPromotion    bool             `json:"on_promotion"`
	PromotionPrice *decimal.Decimal `json:"promotion_price"`
	CareGuide      *model.CareGuide `json:"care_guide"`
}

type UpdatePlantRequest struct {
	Name           *string          `json:"name" binding:"omitempty,max=100"`
	Description    *string          `json:"description" binding:"omitempty,max=1000"`
	Price          *decimal.Decimal `json:"price"`
	Currency       *string          `json:"currency" binding:"omitempty,oneof=TND EUR USD"`
	Category       *model.Category  `json:"category" binding:"omitempty,oneof=indoor outdoor succulent flower tree herb other"`
	Size           *model.Size      `json:"size" binding:"omitempty,oneof=small medium large"`
	Stock          *int             `json:"stock" binding:"omitempty,min=0"`
	Images         []string         `json:"images"`
	Featured       *bool            `json:"featured"`
	OnPromotion    *bool            `json:"on_promotion"`
	PromotionPrice *decimal.Decimal `json:"promotion_price"`
	CareGuide      *model.CareGuide `json:"care_guide"`
}

type ListPlantsRequest struct {
	Category string `form:"category" binding:"omitempty,oneof=indoor outdoor succulent flower tree herb other"`
	Size     string `form:"size" binding:"omitempty,oneof=small medium large"`
	MinPrice string `form:"minPrice"`
	MaxPrice string `form:"maxPrice"`
	Search   string `form:"search"`
}

type PlantResponse struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	Currency       string           `json:"currency"`
	Category       model.Category   `json:"category"`
	Size           model.Size       `json:"size"`
	Stock          int              `json:"stock"`
	Available      bool             `json:"available"`
	Images         []string         `json:"images"`
	Featured       bool             `json:"featured"`
	OnPromotion    bool             `json:"on_promotion"`
	PromotionPrice *decimal.Decimal `json:"promotion_price,omitempty"`
	CareGuide      *model.CareGuide `json:"care_guide,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// --- AI copy generation ---

type GenerateInfoRequest struct {
	PlantName string         `json:"plant_name" binding:"required"`
	Category  model.Category `json:"category" binding:"required,oneof=indoor outdoor succulent flower tree herb other"`
	Size      model.Size     `json:"size" binding:"required,oneof=small medium large"`
}

type PriceRecommendation struct {
	RecommendedPrice decimal.Decimal `json:"recommended_price"`
	MinPrice         decimal.Decimal `json:"min_price"`
	MaxPrice         decimal.Decimal `json:"max_price"`
	Explanation      string          `json:"explanation"`
	Currency         string          `json:"currency"`
}

type GenerateInfoResponse struct {
	Description         string              `json:"description"`
	PriceRecommendation PriceRecommendation `json:"price_recommendation"`
	CareGuide           model.CareGuide     `json:"care_guide"`
}

// --- Order ---

// Client-submitted prices are deliberately absent here: the server resolves
// unit prices from the catalog and never trusts the cart.
type OrderLineRequest struct {
	PlantID  uuid.UUID `json:"plant_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	Lines        []OrderLineRequest `json:"lines"`
	DeliveryInfo model.DeliveryInfo `json:"delivery_info"`
}

type OrderLineResponse struct {
	PlantID   uuid.UUID       `json:"plant_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Image     string          `json:"image,omitempty"`
}

type OrderResponse struct {
	ID             uuid.UUID            `json:"id"`
	UserID         *uuid.UUID           `json:"user_id,omitempty"`
	IsGuestOrder   bool                 `json:"is_guest_order"`
	Lines          []OrderLineResponse  `json:"lines"`
	DeliveryInfo   model.DeliveryInfo   `json:"delivery_info"`
	TotalPrice     decimal.Decimal      `json:"total_price"`
	Status         model.OrderStatus    `json:"status"`
	DeliveryStatus model.DeliveryStatus `json:"delivery_status"`
	DeliveryDriver string               `json:"delivery_driver,omitempty"`
	DeliveryNotes  string               `json:"delivery_notes,omitempty"`
	PaidAt         *time.Time           `json:"paid_at,omitempty"`
	DeliveredAt    *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required,oneof=pending preparing shipped delivered cancelled"`
}

type UpdateDeliveryRequest struct {
	DeliveryStatus model.DeliveryStatus `json:"delivery_status" binding:"omitempty,oneof=not-assigned assigned in-transit delivered"`
	DeliveryDriver *string              `json:"delivery_driver"`
	DeliveryNotes  *string              `json:"delivery_notes"`
}

// --- Admin dashboard ---

type DashboardResponse struct {
	TotalOrders     int             `json:"total_orders"`
	PendingOrders   int             `json:"pending_orders"`
	DeliveredOrders int             `json:"delivered_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	RecentOrders    []OrderResponse `json:"recent_orders"`
}
