// internal/services/pricing_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/models"
)

func TestResolveReturnsOneWithoutRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	factor, err := svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyStandard, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.0, factor)
}

func TestResolveFallsBackToDefaultRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	createTestFactor(t, db, &models.PricingFactor{
		Name:      "platform default",
		Factor:    1.2,
		IsDefault: true,
	})

	factor, err := svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyStandard, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.2, factor)
}

func TestResolveSupplierRuleBeatsDefault(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	createTestFactor(t, db, &models.PricingFactor{
		Name:      "platform default",
		Factor:    1.2,
		IsDefault: true,
	})
	createTestFactor(t, db, &models.PricingFactor{
		Name:       "supplier markup",
		Factor:     1.5,
		SupplierID: &supplier.ID,
	})

	factor, err := svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyStandard, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.5, factor)
}

func TestResolveMostSpecificRuleWins(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	createTestFactor(t, db, &models.PricingFactor{
		Name:       "catch-all",
		Factor:     1.1,
		SupplierID: &supplier.ID,
	})
	createTestFactor(t, db, &models.PricingFactor{
		Name:       "urgency only",
		Factor:     1.3,
		SupplierID: &supplier.ID,
		Urgency:    string(models.UrgencyUrgent),
	})
	createTestFactor(t, db, &models.PricingFactor{
		Name:       "category scoped",
		Factor:     1.6,
		SupplierID: &supplier.ID,
		Category:   "crown",
	})
	createTestFactor(t, db, &models.PricingFactor{
		Name:       "category and material",
		Factor:     1.9,
		SupplierID: &supplier.ID,
		Category:   "crown",
		Material:   "zirconia",
	})

	factor, err := svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyUrgent, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.9, factor)
}

func TestResolveCategoryOutranksMaterialAndUrgency(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	// material+urgency scores 3, category alone scores 4
	createTestFactor(t, db, &models.PricingFactor{
		Name:       "material and urgency",
		Factor:     1.4,
		SupplierID: &supplier.ID,
		Material:   "zirconia",
		Urgency:    string(models.UrgencyUrgent),
	})
	createTestFactor(t, db, &models.PricingFactor{
		Name:       "category only",
		Factor:     1.7,
		SupplierID: &supplier.ID,
		Category:   "crown",
	})

	factor, err := svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyUrgent, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.7, factor)
}

func TestResolveNewestWinsOnSpecificityTie(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	older := createTestFactor(t, db, &models.PricingFactor{
		Name:       "older crown markup",
		Factor:     1.3,
		SupplierID: &supplier.ID,
		Category:   "crown",
	})
	require.NoError(t, db.Model(older).Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	createTestFactor(t, db, &models.PricingFactor{
		Name:       "newer crown markup",
		Factor:     1.8,
		SupplierID: &supplier.ID,
		Category:   "crown",
	})

	factor, err := svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyStandard, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.8, factor)
}

func TestResolveSkipsInactiveAndExpiredRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	retired := createTestFactor(t, db, &models.PricingFactor{
		Name:       "retired markup",
		Factor:     2.0,
		SupplierID: &supplier.ID,
	})
	require.NoError(t, db.Model(retired).Update("is_active", false).Error)

	past := time.Now().Add(-time.Minute)
	expired := createTestFactor(t, db, &models.PricingFactor{
		Name:       "expired markup",
		Factor:     3.0,
		SupplierID: &supplier.ID,
	})
	require.NoError(t, db.Model(expired).Update("valid_until", past).Error)

	factor, err := svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyStandard, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.0, factor)
}

func TestResolveRespectsOrderValueBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	supplier := createTestUser(t, db, models.UserRoleSupplier)

	min, max := 1000.0, 5000.0
	createTestFactor(t, db, &models.PricingFactor{
		Name:          "bulk discount band",
		Factor:        1.25,
		SupplierID:    &supplier.ID,
		MinOrderValue: &min,
		MaxOrderValue: &max,
	})

	factor, err := svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyStandard, 500)
	require.NoError(t, err)
	assert.Equal(t, 1.0, factor, "below the band")

	factor, err = svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyStandard, 2500)
	require.NoError(t, err)
	assert.Equal(t, 1.25, factor, "inside the band")

	factor, err = svc.Resolve(supplier.ID, "crown", "zirconia", models.UrgencyStandard, 9000)
	require.NoError(t, err)
	assert.Equal(t, 1.0, factor, "above the band")
}

func TestCreateFactorRejectsOutOfRangeMultiplier(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	admin := createTestUser(t, db, models.UserRoleAdmin)

	_, err := svc.CreateFactor(admin.ID, &CreatePricingFactorRequest{
		Name:   "too low",
		Factor: 0.5,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.From(err).Code)

	_, err = svc.CreateFactor(admin.ID, &CreatePricingFactorRequest{
		Name:   "too high",
		Factor: 15,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.From(err).Code)
}

func TestCreateFactorNormalizesEmptyScopes(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	admin := createTestUser(t, db, models.UserRoleAdmin)

	factor, err := svc.CreateFactor(admin.ID, &CreatePricingFactorRequest{
		Name:   "bare rule",
		Factor: 1.5,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PricingScopeGeneral, factor.Category)
	assert.Equal(t, models.PricingScopeGeneral, factor.Material)
	assert.Equal(t, models.PricingScopeGeneral, factor.Urgency)
	assert.True(t, factor.IsActive)
}

func TestCreateFactorRejectsInvertedValueBounds(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)
	admin := createTestUser(t, db, models.UserRoleAdmin)

	min, max := 500.0, 100.0
	_, err := svc.CreateFactor(admin.ID, &CreatePricingFactorRequest{
		Name:          "inverted band",
		Factor:        1.5,
		MinOrderValue: &min,
		MaxOrderValue: &max,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.From(err).Code)
}

func TestDeactivateFactorKeepsTheRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewPricingService(db)

	factor := createTestFactor(t, db, &models.PricingFactor{
		Name:   "retiring rule",
		Factor: 1.5,
	})

	updated, err := svc.DeactivateFactor(factor.ID)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	var count int64
	db.Model(&models.PricingFactor{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// idempotent
	again, err := svc.DeactivateFactor(factor.ID)
	require.NoError(t, err)
	assert.False(t, again.IsActive)
}
