package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryIndoor    Category = "indoor"
	CategoryOutdoor   Category = "outdoor"
	CategorySucculent Category = "succulent"
	CategoryFlower    Category = "flower"
	CategoryTree      Category = "tree"
	CategoryHerb      Category = "herb"
	CategoryOther     Category = "other"
)

type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type DeliveryStatus string

const (
	DeliveryNotAssigned DeliveryStatus = "not-assigned"
	DeliveryAssigned    DeliveryStatus = "assigned"
	DeliveryInTransit   DeliveryStatus = "in-transit"
	DeliveryDelivered   DeliveryStatus = "delivered"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type WateringGuide struct {
	Frequency string `json:"frequency"`
	Amount    string `json:"amount"`
}

type SunlightGuide struct {
	Exposure string `json:"exposure"`
	Duration string `json:"duration"`
}

type TemperatureGuide struct {
	Ideal string `json:"ideal"`
	Min   string `json:"min"`
	Max   string `json:"max"`
}

type CareGuide struct {
	Watering    WateringGuide    `json:"watering"`
	Sunlight    SunlightGuide    `json:"sunlight"`
	Temperature TemperatureGuide `json:"temperature"`
	Soil        string           `json:"soil"`
	Fertilizer  string           `json:"fertilizer"`
	Tips        []string         `json:"tips"`
}

type Plant struct {
	ID             uuid.UUID
	Name           string
	Description    string
	Price          decimal.Decimal
	Currency       string
	Category       Category
	Size           Size
	Stock          int
	Images         []string
	Featured       bool
	OnPromotion    bool
	PromotionPrice *decimal.Decimal
	CareGuide      *CareGuide
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Available reports whether the plant can currently be ordered.
func (p *Plant) Available() bool { return p.Stock > 0 }

// PlantFilter holds catalog listing criteria. Zero values mean "no constraint".
type PlantFilter struct {
	Category    Category
	Size        Size
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Search      string
	Featured    *bool
	OnPromotion *bool
	Limit       int
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type DeliveryInfo struct {
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     string  `json:"phone"`
	Address   Address `json:"address"`
}

// OrderLine is an immutable snapshot of a plant at purchase time. It is never
// re-derived from the live catalog after the order is created.
type OrderLine struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	PlantID   uuid.UUID
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Image     string
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID             uuid.UUID
	UserID         *uuid.UUID
	IsGuestOrder   bool
	Lines          []OrderLine
	DeliveryInfo   DeliveryInfo
	TotalPrice     decimal.Decimal
	Status         OrderStatus
	DeliveryStatus DeliveryStatus
	DeliveryDriver string
	DeliveryNotes  string
	PaidAt         *time.Time
	DeliveredAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type User struct {
	ID                uuid.UUID
	Email             string
	Password          string
	FirstName         string
	LastName          string
	Phone             string
	Address           *Address
	Role              Role
	EmailVerified     bool
	VerificationToken string
	VerificationExp   *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type MailKind string

const (
	MailOrderConfirmation MailKind = "order-confirmation"
	MailEmailVerification MailKind = "email-verification"
	MailWelcome           MailKind = "welcome"
)

// MailMessage is what gets published to the notification queue. ID is assigned
// at publish time and keys worker-side idempotency.
type MailMessage struct {
	ID        uuid.UUID  `json:"id"`
	Kind      MailKind   `json:"kind"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Token     string     `json:"token,omitempty"`
}
