// internal/models/pricing_factor.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PricingFactor is one markup rule. Scoping columns hold a concrete value
// or the "general" wildcard; nil bounds are unbounded. Rules are only ever
// deactivated, never deleted.
type PricingFactor struct {
	BaseModel
	Name   string  `json:"name" gorm:"size:255;not null"`
	Factor float64 `json:"factor" gorm:"not null"`

	SupplierID *uuid.UUID `json:"supplier_id" gorm:"type:uuid;index"`
	Category   string     `json:"category" gorm:"size:100;not null;default:'general'"`
	Material   string     `json:"material" gorm:"size:100;not null;default:'general'"`
	Urgency    string     `json:"urgency" gorm:"size:20;not null;default:'general'"`

	MinOrderValue *float64 `json:"min_order_value"`
	MaxOrderValue *float64 `json:"max_order_value"`

	ValidFrom  time.Time  `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	IsActive  bool `json:"is_active" gorm:"default:true;index"`
	IsDefault bool `json:"is_default" gorm:"default:false;index"`

	CreatedBy *uuid.UUID `json:"created_by" gorm:"type:uuid"`

	// Relationships
	Supplier *User `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

// MatchesOrder reports whether the rule's scoping dimensions and value range
// apply to the given order attributes. Supplier scoping and the default flag
// are handled by the resolver's candidate queries, not here.
func (p *PricingFactor) MatchesOrder(category, material string, urgency UrgencyLevel, orderValue float64) bool {
	if p.Category != PricingScopeGeneral && p.Category != category {
		return false
	}
	if p.Material != PricingScopeGeneral && p.Material != material {
		return false
	}
	if p.Urgency != PricingScopeGeneral && p.Urgency != string(urgency) {
		return false
	}
	if p.MinOrderValue != nil && orderValue < *p.MinOrderValue {
		return false
	}
	if p.MaxOrderValue != nil && orderValue > *p.MaxOrderValue {
		return false
	}
	return true
}

// Specificity counts the non-wildcard scoping dimensions weighted so that
// category beats material beats urgency, matching the resolver's tie-break.
func (p *PricingFactor) Specificity() int {
	score := 0
	if p.Category != PricingScopeGeneral {
		score += 4
	}
	if p.Material != PricingScopeGeneral {
		score += 2
	}
	if p.Urgency != PricingScopeGeneral {
		score += 1
	}
	return score
}
