package pricing

// Material identifies a bag film. The zero value is not a valid material.
type Material string

const (
	MaterialHDPE          Material = "HDPE"
	MaterialLDPE          Material = "LDPE"
	MaterialPP            Material = "PP"
	MaterialBiodegradable Material = "Biodegradable"
)

const (
	// DimensionRate is charged per square inch of bag face.
	DimensionRate = 0.0005
	// ArtworkSurcharge is added per bag when custom artwork is printed.
	ArtworkSurcharge = 0.03
)

var materialCosts = map[Material]float64{
	MaterialHDPE:          0.02,
	MaterialLDPE:          0.025,
	MaterialPP:            0.03,
	MaterialBiodegradable: 0.05,
}

// Materials lists the priced materials in display order.
func Materials() []Material {
	return []Material{MaterialHDPE, MaterialLDPE, MaterialPP, MaterialBiodegradable}
}

// MaterialCost returns the per-bag cost of m. Unknown materials cost 0 and
// report ok=false so callers can flag them; the quote itself never fails.
func MaterialCost(m Material) (cost float64, ok bool) {
	cost, ok = materialCosts[m]
	return cost, ok
}

// Selection is the subset of a draft order that affects price.
type Selection struct {
	Material   Material
	Width      int
	Height     int
	HasArtwork bool
	Quantity   int
}

// Quote is the price breakdown for a Selection. Values are not rounded.
type Quote struct {
	MaterialCost    float64 `json:"material_cost"`
	DimensionCost   float64 `json:"dimension_cost"`
	ArtworkCost     float64 `json:"artwork_cost"`
	UnitPrice       float64 `json:"unit_price"`
	Quantity        int     `json:"quantity"`
	Total           float64 `json:"total"`
	UnknownMaterial bool    `json:"unknown_material,omitempty"`
}

// Calculate prices a selection.
func Calculate(s Selection) Quote {
	materialCost, known := MaterialCost(s.Material)
	dimensionCost := float64(s.Width) * float64(s.Height) * DimensionRate
	artworkCost := 0.0
	if s.HasArtwork {
		artworkCost = ArtworkSurcharge
	}

	unit := materialCost + dimensionCost + artworkCost
	return Quote{
		MaterialCost:    materialCost,
		DimensionCost:   dimensionCost,
		ArtworkCost:     artworkCost,
		UnitPrice:       unit,
		Quantity:        s.Quantity,
		Total:           unit * float64(s.Quantity),
		UnknownMaterial: !known,
	}
}

// Total is shorthand for Calculate(s).Total.
func Total(s Selection) float64 {
	return Calculate(s).Total
}
