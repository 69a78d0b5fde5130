package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		sel       Selection
		wantUnit  float64
		wantTotal float64
	}{
		{
			name:      "default draft without artwork",
			sel:       Selection{Material: MaterialHDPE, Width: 12, Height: 15, Quantity: 5000},
			wantUnit:  0.11,
			wantTotal: 550,
		},
		{
			name:      "default draft with artwork",
			sel:       Selection{Material: MaterialHDPE, Width: 12, Height: 15, HasArtwork: true, Quantity: 5000},
			wantUnit:  0.14,
			wantTotal: 700,
		},
		{
			name:      "biodegradable large bag",
			sel:       Selection{Material: MaterialBiodegradable, Width: 20, Height: 30, Quantity: 10000},
			wantUnit:  0.35,
			wantTotal: 3500,
		},
		{
			name:      "ldpe",
			sel:       Selection{Material: MaterialLDPE, Width: 10, Height: 10, Quantity: 6000},
			wantUnit:  0.075,
			wantTotal: 450,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Calculate(tt.sel)
			assert.InDelta(t, tt.wantUnit, q.UnitPrice, 1e-9)
			assert.InDelta(t, tt.wantTotal, q.Total, 1e-6)
			assert.False(t, q.UnknownMaterial)
			assert.Equal(t, tt.sel.Quantity, q.Quantity)
		})
	}
}

func TestCalculate_UnknownMaterialCostsNothing(t *testing.T) {
	unknown := Calculate(Selection{Material: "Kevlar", Width: 12, Height: 15, Quantity: 5000})
	zero := Calculate(Selection{Material: "", Width: 12, Height: 15, Quantity: 5000})

	assert.True(t, unknown.UnknownMaterial)
	assert.Equal(t, 0.0, unknown.MaterialCost)
	assert.Equal(t, zero.Total, unknown.Total)
	assert.InDelta(t, 450, unknown.Total, 1e-6)
}

func TestCalculate_NoRounding(t *testing.T) {
	q := Calculate(Selection{Material: MaterialLDPE, Width: 7, Height: 9, HasArtwork: true, Quantity: 5001})

	cost, width, height, qty := 0.025, 7.0, 9.0, 5001.0
	unit := cost + width*height*DimensionRate + ArtworkSurcharge
	assert.Equal(t, unit*qty, q.Total)
}

func TestCalculate_Monotonic(t *testing.T) {
	base := Selection{Material: MaterialPP, Width: 12, Height: 15, Quantity: 5000}
	prev := Total(base)

	for w := 13; w <= 40; w++ {
		s := base
		s.Width = w
		cur := Total(s)
		assert.GreaterOrEqual(t, cur, prev, "width %d", w)
		prev = cur
	}

	prev = Total(base)
	for h := 16; h <= 40; h++ {
		s := base
		s.Height = h
		cur := Total(s)
		assert.GreaterOrEqual(t, cur, prev, "height %d", h)
		prev = cur
	}

	prev = Total(base)
	for q := 6000; q <= 50000; q += 1000 {
		s := base
		s.Quantity = q
		cur := Total(s)
		assert.GreaterOrEqual(t, cur, prev, "quantity %d", q)
		prev = cur
	}
}

func TestMaterialCost(t *testing.T) {
	for _, m := range Materials() {
		cost, ok := MaterialCost(m)
		assert.True(t, ok, string(m))
		assert.Greater(t, cost, 0.0)
	}

	_, ok := MaterialCost("Paper")
	assert.False(t, ok)
}
