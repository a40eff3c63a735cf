// internal/services/helpers_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/utils"
)

func paginationDefaults() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 20, Sort: "created_at", Order: "desc"}
}

// newTestDB opens a per-test in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Quote{},
		&models.PricingFactor{},
		&models.ChatMessage{},
		&models.File{},
		&models.AuditLog{},
	)
	require.NoError(t, err)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, role models.UserRole) *models.User {
	t.Helper()

	suffix := uuid.New().String()[:8]
	user := &models.User{
		Username:          string(role) + "_" + suffix,
		Email:             string(role) + "_" + suffix + "@example.com",
		Role:              role,
		PreferredLanguage: "en",
		IsActive:          true,
	}
	require.NoError(t, user.SetPassword("Sup3rSecret!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestOrder(t *testing.T, db *gorm.DB, dentist, supplier *models.User, status models.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		OrderNumber:    fmt.Sprintf("ORD-%06d", time.Now().UnixNano()%1000000),
		DentistID:      dentist.ID,
		SupplierID:     &supplier.ID,
		Status:         status,
		Title:          "Upper molar crown",
		ProsthesisType: "crown",
		Material:       "zirconia",
		Urgency:        models.UrgencyStandard,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func createTestFactor(t *testing.T, db *gorm.DB, factor *models.PricingFactor) *models.PricingFactor {
	t.Helper()

	if factor.Category == "" {
		factor.Category = models.PricingScopeGeneral
	}
	if factor.Material == "" {
		factor.Material = models.PricingScopeGeneral
	}
	if factor.Urgency == "" {
		factor.Urgency = models.PricingScopeGeneral
	}
	if factor.ValidFrom.IsZero() {
		factor.ValidFrom = time.Now().Add(-time.Hour)
	}
	factor.IsActive = true
	require.NoError(t, db.Create(factor).Error)
	return factor
}
