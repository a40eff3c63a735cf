// internal/models/quote.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Quote struct {
	BaseModel
	OrderID    uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	SupplierID uuid.UUID `json:"supplier_id" gorm:"type:uuid;not null;index"`

	// Cost components; missing components are stored as 0
	BasePrice    float64 `json:"base_price" gorm:"not null"`
	MaterialCost float64 `json:"material_cost" gorm:"default:0"`
	LaborCost    float64 `json:"labor_cost" gorm:"default:0"`
	ShippingCost float64 `json:"shipping_cost" gorm:"default:0"`
	TaxAmount    float64 `json:"tax_amount" gorm:"default:0"`

	// Derived, recomputed whenever a component or the factor changes
	Total         float64 `json:"total" gorm:"not null"`
	PricingFactor float64 `json:"pricing_factor" gorm:"not null;default:1"`
	AdjustedPrice float64 `json:"adjusted_price" gorm:"not null"`

	Status          QuoteStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	RevisionNumber  int         `json:"revision_number" gorm:"default:1"`
	ParentQuoteID   *uuid.UUID  `json:"parent_quote_id" gorm:"type:uuid"`
	ValidUntil      *time.Time  `json:"valid_until"`
	Notes           string      `json:"notes" gorm:"type:text"`
	RejectionReason string      `json:"rejection_reason" gorm:"type:text"`
	AcceptedAt      *time.Time  `json:"accepted_at"`
	AcceptedBy      *uuid.UUID  `json:"accepted_by" gorm:"type:uuid"`

	// Relationships
	Order       Order  `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Supplier    User   `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	ParentQuote *Quote `json:"parent_quote,omitempty" gorm:"foreignKey:ParentQuoteID"`
}

// Recalculate rebuilds the derived fields from the cost components and the
// pricing factor. Total and adjusted price are never set independently.
func (q *Quote) Recalculate() {
	q.Total = q.BasePrice + q.MaterialCost + q.LaborCost + q.ShippingCost + q.TaxAmount
	if q.PricingFactor <= 0 {
		q.PricingFactor = 1.0
	}
	q.AdjustedPrice = q.Total * q.PricingFactor
}
