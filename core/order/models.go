package order

import (
	"time"

	"github.com/plangrid/matcast/core"
)

// Statuses
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// Market unit prices per material.
var materialPrices = map[string]float64{
	"Steel Tower":       45000,
	"Conductor Cable":   850,
	"Insulator":         1200,
	"Power Transformer": 2500000,
	"Switchgear":        180000,
	"Circuit Breaker":   95000,
	"Cable Tray":        350,
	"Lightning Arrester": 8500,
	"Surge Arrester":    12000,
	"Busbar":            2800,
}

const defaultUnitPrice = 1000

// Dealer price adjustments simulating market conditions.
var dealerAdjustments = map[string]float64{
	"Power Tech Solutions":     1.05,
	"Grid Equipment Ltd":       0.98,
	"Electrical Components Co": 1.02,
}

// UnitPrice returns the market price for material adjusted for dealer.
func UnitPrice(material, dealer string) float64 {
	price, ok := materialPrices[material]
	if !ok {
		price = defaultUnitPrice
	}
	if adj, ok := dealerAdjustments[dealer]; ok {
		price *= adj
	}
	return price
}

type Order struct {
	ID               string    `json:"order_id" bson:"_id"`
	ProjectID        string    `json:"project_id" bson:"project_id"`
	Material         string    `json:"material" bson:"material"`
	Dealer           string    `json:"dealer" bson:"dealer"`
	Quantity         float64   `json:"quantity" bson:"quantity"`
	UnitPrice        float64   `json:"unit_price" bson:"unit_price"`
	TotalPrice       float64   `json:"total_price" bson:"total_price"`
	ExpectedDelivery string    `json:"expected_delivery" bson:"expected_delivery"`
	Status           string    `json:"status" bson:"status"`
	CreatedBy        string    `json:"created_by" bson:"created_by"`
	UpdatedBy        string    `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"` // UTC
}

// Counts summarizes a user's accessible orders for the dashboard.
type Counts struct {
	Pending int
	Total   int
}

type NewOrder struct {
	ProjectID        string  `json:"project_id" validate:"required"`
	Material         string  `json:"material" validate:"required"`
	Dealer           string  `json:"dealer"`
	Quantity         float64 `json:"quantity" validate:"required,gt=0"`
	ExpectedDelivery string  `json:"expected_delivery"`
}

func (no *NewOrder) Validate() error {
	no.ProjectID = core.CleanString(no.ProjectID)
	no.Material = core.CleanString(no.Material)
	no.Dealer = core.CleanString(no.Dealer)
	return core.Validate.Struct(no)
}

type UpdateOrder struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED DELIVERED CANCELLED"`
}

func (uo *UpdateOrder) Validate() error {
	return core.Validate.Struct(uo)
}
