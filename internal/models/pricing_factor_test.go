// internal/models/pricing_factor_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesOrderWildcards(t *testing.T) {
	rule := &PricingFactor{
		Category: PricingScopeGeneral,
		Material: PricingScopeGeneral,
		Urgency:  PricingScopeGeneral,
	}
	assert.True(t, rule.MatchesOrder("crown", "zirconia", UrgencyUrgent, 500))
	assert.True(t, rule.MatchesOrder("bridge", "ceramic", UrgencyStandard, 0))
}

func TestMatchesOrderScopedDimensions(t *testing.T) {
	rule := &PricingFactor{
		Category: "crown",
		Material: PricingScopeGeneral,
		Urgency:  string(UrgencyUrgent),
	}
	assert.True(t, rule.MatchesOrder("crown", "zirconia", UrgencyUrgent, 500))
	assert.False(t, rule.MatchesOrder("bridge", "zirconia", UrgencyUrgent, 500))
	assert.False(t, rule.MatchesOrder("crown", "zirconia", UrgencyStandard, 500))
}

func TestMatchesOrderValueBounds(t *testing.T) {
	min, max := 100.0, 1000.0
	rule := &PricingFactor{
		Category:      PricingScopeGeneral,
		Material:      PricingScopeGeneral,
		Urgency:       PricingScopeGeneral,
		MinOrderValue: &min,
		MaxOrderValue: &max,
	}
	assert.False(t, rule.MatchesOrder("crown", "zirconia", UrgencyStandard, 99))
	assert.True(t, rule.MatchesOrder("crown", "zirconia", UrgencyStandard, 100))
	assert.True(t, rule.MatchesOrder("crown", "zirconia", UrgencyStandard, 1000))
	assert.False(t, rule.MatchesOrder("crown", "zirconia", UrgencyStandard, 1001))
}

func TestSpecificityOrdering(t *testing.T) {
	categoryOnly := &PricingFactor{Category: "crown", Material: PricingScopeGeneral, Urgency: PricingScopeGeneral}
	materialAndUrgency := &PricingFactor{Category: PricingScopeGeneral, Material: "zirconia", Urgency: string(UrgencyUrgent)}
	everything := &PricingFactor{Category: "crown", Material: "zirconia", Urgency: string(UrgencyUrgent)}
	nothing := &PricingFactor{Category: PricingScopeGeneral, Material: PricingScopeGeneral, Urgency: PricingScopeGeneral}

	// category alone outranks material+urgency combined
	assert.Greater(t, categoryOnly.Specificity(), materialAndUrgency.Specificity())
	assert.Greater(t, everything.Specificity(), categoryOnly.Specificity())
	assert.Equal(t, 0, nothing.Specificity())
}
