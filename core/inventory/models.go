package inventory

import (
	"time"

	"github.com/plangrid/matcast/core"
)

// Item is stock of one material in a warehouse, keyed by material code.
type Item struct {
	MaterialCode string    `json:"material_code" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Category     string    `json:"category" bson:"category"`
	Unit         string    `json:"unit" bson:"unit"`
	MinStock     float64   `json:"min_stock" bson:"min_stock"`
	MaxStock     float64   `json:"max_stock" bson:"max_stock"`
	Quantity     float64   `json:"quantity" bson:"quantity"`
	Available    float64   `json:"available" bson:"available"`
	Reserved     float64   `json:"reserved" bson:"reserved"`
	InTransit    float64   `json:"in_transit" bson:"in_transit"`
	Warehouse    string    `json:"warehouse" bson:"warehouse"`
	CreatedBy    string    `json:"created_by" bson:"created_by"`
	UpdatedBy    string    `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"` // UTC
}

// Material is a forecastable material as exposed to the order form.
type Material struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type NewItem struct {
	MaterialCode string  `json:"material_code" validate:"required,alphanum_"`
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	MinStock     float64 `json:"min_stock" validate:"omitempty,gte=0"`
	MaxStock     float64 `json:"max_stock" validate:"omitempty,gte=0"`
	Quantity     float64 `json:"quantity" validate:"omitempty,gte=0"`
	Available    float64 `json:"available" validate:"omitempty,gte=0"`
	Reserved     float64 `json:"reserved" validate:"omitempty,gte=0"`
	InTransit    float64 `json:"in_transit" validate:"omitempty,gte=0"`
	Warehouse    string  `json:"warehouse"`
}

func (ni *NewItem) Validate() error {
	ni.MaterialCode = core.CleanString(ni.MaterialCode, true /* lower */)
	ni.Name = core.CleanString(ni.Name)
	return core.Validate.Struct(ni)
}

type UpdateItem struct {
	Quantity  *float64 `json:"quantity" validate:"omitempty,gte=0"`
	MinStock  *float64 `json:"min_stock" validate:"omitempty,gte=0"`
	MaxStock  *float64 `json:"max_stock" validate:"omitempty,gte=0"`
	Available *float64 `json:"available" validate:"omitempty,gte=0"`
	Reserved  *float64 `json:"reserved" validate:"omitempty,gte=0"`
	InTransit *float64 `json:"in_transit" validate:"omitempty,gte=0"`
	Warehouse *string  `json:"warehouse"`
}

func (ui *UpdateItem) Validate() error {
	return core.Validate.Struct(ui)
}

type catalogEntry struct {
	code      string
	name      string
	category  string
	unit      string
	minStock  float64
	maxStock  float64
	quantity  float64
	available float64
	reserved  float64
	inTransit float64
}

// Stock catalog matching the materials the predictor is trained on.
var seedCatalog = []catalogEntry{
	{"steel_tons", "Steel (Tons)", "Structural Materials", "tons", 20, 100, 50, 45, 3, 2},
	{"copper_tons", "Copper (Tons)", "Conductors", "tons", 2, 10, 5, 4, 1, 0},
	{"cement_tons", "Cement (Tons)", "Construction Materials", "tons", 15, 50, 30, 28, 2, 0},
	{"aluminum_tons", "Aluminum (Tons)", "Conductors", "tons", 1, 8, 4, 3, 1, 0},
	{"insulators_count", "Insulators", "Electrical Equipment", "pieces", 30, 100, 65, 60, 3, 2},
	{"conductors_tons", "Conductors (Tons)", "Conductors", "tons", 15, 50, 25, 22, 2, 1},
	{"transformers_count", "Transformers", "Electrical Equipment", "pieces", 1, 5, 3, 2, 1, 0},
	{"switchgears_count", "Switchgears", "Electrical Equipment", "pieces", 3, 8, 5, 4, 1, 0},
	{"cables_count", "Cables", "Conductors", "pieces", 4, 10, 7, 6, 1, 0},
	{"protective_relays_count", "Protective Relays", "Protection Equipment", "pieces", 2, 8, 4, 3, 1, 0},
	{"oil_tons", "Transformer Oil (Tons)", "Electrical Equipment", "tons", 2, 5, 3, 2, 1, 0},
	{"foundation_concrete_tons", "Foundation Concrete (Tons)", "Construction Materials", "tons", 10, 30, 20, 18, 2, 0},
}

const defaultWarehouse = "Main Warehouse"

// SeedItems returns the initial material catalog attributed to username.
func SeedItems(username string) []Item {
	now := time.Now().UTC()
	items := make([]Item, 0, len(seedCatalog))
	for _, c := range seedCatalog {
		items = append(items, Item{
			MaterialCode: c.code,
			Name:         c.name,
			Category:     c.category,
			Unit:         c.unit,
			MinStock:     c.minStock,
			MaxStock:     c.maxStock,
			Quantity:     c.quantity,
			Available:    c.available,
			Reserved:     c.reserved,
			InTransit:    c.inTransit,
			Warehouse:    defaultWarehouse,
			CreatedBy:    username,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return items
}
