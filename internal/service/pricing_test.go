package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/greenleaf/plant-store-api/internal/model"
)

func TestResolveUnitPrice(t *testing.T) {
	base := decimal.NewFromFloat(40)
	promo := decimal.NewFromFloat(25)

	tests := []struct {
		name  string
		plant model.Plant
		want  decimal.Decimal
	}{
		{
			name:  "base price",
			plant: model.Plant{Price: base},
			want:  base,
		},
		{
			name:  "active promotion",
			plant: model.Plant{Price: base, OnPromotion: true, PromotionPrice: &promo},
			want:  promo,
		},
		{
			name:  "promotion flag without price",
			plant: model.Plant{Price: base, OnPromotion: true},
			want:  base,
		},
		{
			name:  "promotion price with flag off",
			plant: model.Plant{Price: base, PromotionPrice: &promo},
			want:  base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveUnitPrice(&tt.plant)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
