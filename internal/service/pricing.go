package service

import (
	"github.com/shopspring/decimal"

	"github.com/greenleaf/plant-store-api/internal/model"
)

// ResolveUnitPrice returns the authoritative unit price for a plant: the
// promotion price when a promotion is active and one is set, the base price
// otherwise. This is the single source of truth for pricing; client-submitted
// prices are never consulted.
func ResolveUnitPrice(p *model.Plant) decimal.Decimal {
	if p.OnPromotion && p.PromotionPrice != nil {
		return *p.PromotionPrice
	}
	return p.Price
}
