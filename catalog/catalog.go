package catalog

import "github.com/maxwellzeha/jonduplastics/pricing"

// Category is the catalogue grouping a product is listed under.
type Category string

const (
	CategoryNylon    Category = "Nylon"
	CategoryShopping Category = "Shopping"
	CategoryCustom   Category = "Custom"
)

const (
	BagTypeNylon    = "Nylon Bag"
	BagTypeShopping = "Shopping Bag"
	BagTypeEco      = "Eco-Friendly Bag"
)

const (
	HandleDieCut = "Die-cut"
	HandleLoop   = "Loop Handle"
	HandlePatch  = "Patch Handle"
	HandleRope   = "Rope Handle"
)

const (
	// MinOrderQuantity is the smallest quantity accepted for a custom order.
	MinOrderQuantity = 5000
	// QuantityStep is the increment offered by quantity inputs.
	QuantityStep = 1000

	DefaultColor = "#FFFFFF"
)

// Product is a catalogue entry.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Category    Category `json:"category"`
	Price       float64  `json:"price"`
	BagType     string   `json:"bag_type"`
}

var products = []Product{
	{
		ID:          1,
		Name:        "Heavy-Duty Nylon T-Shirt Bags",
		Description: "Durable and reusable, perfect for retail and grocery stores. High-density polyethylene.",
		ImageURL:    "https://i.postimg.cc/52tfgR98/images.jpg",
		Category:    CategoryNylon,
		Price:       0.10,
	},
	{
		ID:          2,
		Name:        "Custom Printed Shopping Bags",
		Description: "Promote your brand with our high-quality, custom-printed shopping bags. Available in various sizes.",
		ImageURL:    "https://i.postimg.cc/L4BRppnz/unnamed.png",
		Category:    CategoryShopping,
		Price:       0.25,
	},
	{
		ID:          3,
		Name:        "Eco-Friendly Biodegradable Bags",
		Description: "A sustainable choice for your business. Made from compostable materials without sacrificing strength.",
		ImageURL:    "https://i.postimg.cc/9QBqRS8T/images.jpg",
		Category:    CategoryCustom,
		Price:       0.18,
	},
	{
		ID:          4,
		Name:        "Clear Polypropylene Bags",
		Description: "High-clarity bags perfect for showcasing products. FDA approved for food contact.",
		ImageURL:    "https://i.postimg.cc/V6mG93m8/download.jpg",
		Category:    CategoryNylon,
		Price:       0.08,
	},
	{
		ID:          5,
		Name:        "Luxury Paper Shopping Totes",
		Description: "Elegant and sturdy paper bags with rope handles, ideal for high-end retail and boutiques.",
		ImageURL:    "https://i.postimg.cc/Kz0NPj0P/download.jpg",
		Category:    CategoryShopping,
		Price:       0.75,
	},
	{
		ID:          6,
		Name:        "Industrial Grade Gusseted Bags",
		Description: "Extra-large and tough bags for industrial use, box liners, and waste disposal.",
		ImageURL:    "https://i.postimg.cc/Xv7xp98j/images.jpg",
		Category:    CategoryNylon,
		Price:       0.35,
	},
}

// Products returns a copy of the catalogue with bag types filled in.
func Products() []Product {
	out := make([]Product, len(products))
	for i, p := range products {
		p.BagType = BagTypeFor(p.Category)
		out[i] = p
	}
	return out
}

// FindProduct looks a product up by id.
func FindProduct(id int) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			p.BagType = BagTypeFor(p.Category)
			return p, true
		}
	}
	return Product{}, false
}

// BagTypeFor maps a product category onto the configurator's bag type.
// Unknown categories fall back to the default bag type.
func BagTypeFor(c Category) string {
	switch c {
	case CategoryShopping:
		return BagTypeShopping
	case CategoryCustom:
		return BagTypeEco
	default:
		return BagTypeNylon
	}
}

// BagTypes lists the configurable bag types.
func BagTypes() []string {
	return []string{BagTypeNylon, BagTypeShopping, BagTypeEco}
}

// Handles lists the configurable handle types.
func Handles() []string {
	return []string{HandleDieCut, HandleLoop, HandlePatch, HandleRope}
}

func IsBagType(s string) bool { return contains(BagTypes(), s) }

func IsHandle(s string) bool { return contains(Handles(), s) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Defaults are the values a fresh draft starts from.
type Defaults struct {
	BagType    string           `json:"bag_type"`
	Material   pricing.Material `json:"material"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Color      string           `json:"color"`
	HandleType string           `json:"handle_type"`
	Quantity   int              `json:"quantity"`
}

func DraftDefaults() Defaults {
	return Defaults{
		BagType:    BagTypeNylon,
		Material:   pricing.MaterialHDPE,
		Width:      12,
		Height:     15,
		Color:      DefaultColor,
		HandleType: HandleDieCut,
		Quantity:   MinOrderQuantity,
	}
}

// MaterialOption pairs a material with its per-bag cost for display.
type MaterialOption struct {
	Material pricing.Material `json:"material"`
	UnitCost float64          `json:"unit_cost"`
}

// Options describes everything a configurator needs to render its inputs.
type Options struct {
	BagTypes         []string         `json:"bag_types"`
	Materials        []MaterialOption `json:"materials"`
	Handles          []string         `json:"handles"`
	Defaults         Defaults         `json:"defaults"`
	MinOrderQuantity int              `json:"min_order_quantity"`
	QuantityStep     int              `json:"quantity_step"`
	DimensionRate    float64          `json:"dimension_rate"`
	ArtworkSurcharge float64          `json:"artwork_surcharge"`
}

func ConfiguratorOptions() Options {
	materials := make([]MaterialOption, 0, len(pricing.Materials()))
	for _, m := range pricing.Materials() {
		cost, _ := pricing.MaterialCost(m)
		materials = append(materials, MaterialOption{Material: m, UnitCost: cost})
	}
	return Options{
		BagTypes:         BagTypes(),
		Materials:        materials,
		Handles:          Handles(),
		Defaults:         DraftDefaults(),
		MinOrderQuantity: MinOrderQuantity,
		QuantityStep:     QuantityStep,
		DimensionRate:    pricing.DimensionRate,
		ArtworkSurcharge: pricing.ArtworkSurcharge,
	}
}
