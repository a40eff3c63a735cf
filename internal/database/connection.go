// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RomainLafont/project-g/internal/config"
	"github.com/RomainLafont/project-g/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.Quote{},
		&models.PricingFactor{},
		&models.ChatMessage{},
		&models.File{},
		&models.AuditLog{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_role_active ON users(role, is_active)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_dentist_status ON orders(dentist_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_supplier_status ON orders(supplier_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Quote indexes
		"CREATE INDEX IF NOT EXISTS idx_quotes_order_status ON quotes(order_id, status)",

		// Pricing factor indexes
		"CREATE INDEX IF NOT EXISTS idx_pricing_factors_supplier_active ON pricing_factors(supplier_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_pricing_factors_default ON pricing_factors(is_default, is_active)",

		// Chat indexes
		"CREATE INDEX IF NOT EXISTS idx_chat_messages_order_created ON chat_messages(order_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_chat_messages_unread ON chat_messages(order_id, is_read)",

		// File indexes
		"CREATE INDEX IF NOT EXISTS idx_files_order ON files(order_id)",

		// Audit indexes
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_resource ON audit_logs(resource_type, resource_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedInitialData creates the default admin account and the platform-wide
// default pricing factor when the database is empty.
func SeedInitialData(db *gorm.DB) error {
	logrus.Info("Seeding initial data...")

	var adminCount int64
	db.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount)

	if adminCount == 0 {
		admin := &models.User{
			Username:          "admin",
			Email:             "admin@dental-platform.local",
			Role:              models.UserRoleAdmin,
			PreferredLanguage: "en",
			IsActive:          true,
			IsVerified:        true,
		}

		if err := admin.SetPassword("admin123!@#"); err != nil {
			return fmt.Errorf("failed to set admin password: %w", err)
		}

		if err := db.Create(admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		// A platform-wide default markup so pricing resolution has a
		// fallback rule before any supplier-specific rules exist.
		factor := &models.PricingFactor{
			Name:      "Platform default markup",
			Factor:    1.0,
			Category:  models.PricingScopeGeneral,
			Material:  models.PricingScopeGeneral,
			Urgency:   models.PricingScopeGeneral,
			ValidFrom: time.Now(),
			IsActive:  true,
			IsDefault: true,
			CreatedBy: &admin.ID,
		}
		if err := db.Create(factor).Error; err != nil {
			return fmt.Errorf("failed to create default pricing factor: %w", err)
		}

		logrus.Info("Default admin user and pricing factor created")
	}

	return nil
}

// WithTransaction runs fn inside a single transaction, rolling back on any
// error or panic. Multi-entity mutations (quote accept + order update +
// chat log) always go through here.
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
