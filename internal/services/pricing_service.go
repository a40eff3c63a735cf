// internal/services/pricing_service.go
package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/utils"
)

type PricingService struct {
	db *gorm.DB
}

func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{db: db}
}

type CreatePricingFactorRequest struct {
	Name          string     `json:"name" validate:"required,max=255"`
	Factor        float64    `json:"factor" validate:"required,pricing_factor"`
	SupplierID    *uuid.UUID `json:"supplier_id,omitempty"`
	Category      string     `json:"category,omitempty"`
	Material      string     `json:"material,omitempty"`
	Urgency       string     `json:"urgency,omitempty"`
	MinOrderValue *float64   `json:"min_order_value,omitempty"`
	MaxOrderValue *float64   `json:"max_order_value,omitempty"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	IsDefault     bool       `json:"is_default"`
}

// Resolve selects the markup multiplier for one order. The search runs in
// two passes: rules scoped to the supplier, then default rules. Within a
// pass the most specific matching rule wins (category over material over
// urgency), newest first on a full tie. No match means factor 1.0.
func (s *PricingService) Resolve(supplierID uuid.UUID, category, material string, urgency models.UrgencyLevel, orderValue float64) (float64, error) {
	factor, ok, err := s.resolvePass(s.db.Where("supplier_id = ?", supplierID), category, material, urgency, orderValue)
	if err != nil {
		return 0, apperrors.Internal("failed to resolve pricing factor", err)
	}
	if ok {
		return factor, nil
	}

	factor, ok, err = s.resolvePass(s.db.Where("is_default = ?", true), category, material, urgency, orderValue)
	if err != nil {
		return 0, apperrors.Internal("failed to resolve pricing factor", err)
	}
	if ok {
		return factor, nil
	}

	return 1.0, nil
}

func (s *PricingService) resolvePass(scope *gorm.DB, category, material string, urgency models.UrgencyLevel, orderValue float64) (float64, bool, error) {
	now := time.Now()

	var rules []models.PricingFactor
	err := scope.
		Where("is_active = ?", true).
		Where("valid_from <= ?", now).
		Where("valid_until IS NULL OR valid_until >= ?", now).
		Find(&rules).Error
	if err != nil {
		return 0, false, err
	}

	var best *models.PricingFactor
	for i := range rules {
		rule := &rules[i]
		if !rule.MatchesOrder(category, material, urgency, orderValue) {
			continue
		}
		if best == nil || ruleBeats(rule, best) {
			best = rule
		}
	}

	if best == nil {
		return 0, false, nil
	}
	return best.Factor, true, nil
}

// ruleBeats implements the specificity-first tie-break: a higher
// specificity always wins; equal specificity falls back to creation time.
func ruleBeats(candidate, incumbent *models.PricingFactor) bool {
	cs, is := candidate.Specificity(), incumbent.Specificity()
	if cs != is {
		return cs > is
	}
	return candidate.CreatedAt.After(incumbent.CreatedAt)
}

func (s *PricingService) CreateFactor(creatorID uuid.UUID, req *CreatePricingFactorRequest) (*models.PricingFactor, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid pricing factor", utils.GetValidationErrors(err))
	}

	if req.MinOrderValue != nil && req.MaxOrderValue != nil && *req.MinOrderValue > *req.MaxOrderValue {
		return nil, apperrors.ValidationFailed("min_order_value must not exceed max_order_value", nil)
	}

	factor := &models.PricingFactor{
		Name:          req.Name,
		Factor:        req.Factor,
		SupplierID:    req.SupplierID,
		Category:      normalizeScope(req.Category),
		Material:      normalizeScope(req.Material),
		Urgency:       normalizeScope(req.Urgency),
		MinOrderValue: req.MinOrderValue,
		MaxOrderValue: req.MaxOrderValue,
		ValidFrom:     time.Now(),
		ValidUntil:    req.ValidUntil,
		IsActive:      true,
		IsDefault:     req.IsDefault,
		CreatedBy:     &creatorID,
	}
	if req.ValidFrom != nil {
		factor.ValidFrom = *req.ValidFrom
	}

	if req.SupplierID != nil {
		var supplier models.User
		if err := s.db.First(&supplier, "id = ? AND role = ?", *req.SupplierID, models.UserRoleSupplier).Error; err != nil {
			return nil, apperrors.NotFound("supplier")
		}
	}

	if err := s.db.Create(factor).Error; err != nil {
		return nil, apperrors.Internal("failed to create pricing factor", err)
	}

	return factor, nil
}

func normalizeScope(v string) string {
	if v == "" {
		return models.PricingScopeGeneral
	}
	return v
}

func (s *PricingService) GetFactor(id uuid.UUID) (*models.PricingFactor, error) {
	var factor models.PricingFactor
	if err := s.db.Preload("Supplier").First(&factor, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("pricing factor")
		}
		return nil, apperrors.Internal("failed to load pricing factor", err)
	}
	return &factor, nil
}

func (s *PricingService) ListFactors(params utils.PaginationParams, supplierID *uuid.UUID) ([]models.PricingFactor, int64, error) {
	query := s.db.Model(&models.PricingFactor{}).Preload("Supplier")

	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	if params.Status == "active" {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count pricing factors", err)
	}

	allowedSortFields := []string{"created_at", "factor", "valid_from"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var factors []models.PricingFactor
	if err := query.Find(&factors).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch pricing factors", err)
	}

	return factors, total, nil
}

// DeactivateFactor retires a rule. Rules are never deleted so historical
// pricing snapshots stay explainable.
func (s *PricingService) DeactivateFactor(id uuid.UUID) (*models.PricingFactor, error) {
	factor, err := s.GetFactor(id)
	if err != nil {
		return nil, err
	}

	if !factor.IsActive {
		return factor, nil
	}

	factor.IsActive = false
	if err := s.db.Save(factor).Error; err != nil {
		return nil, apperrors.Internal("failed to deactivate pricing factor", err)
	}

	return factor, nil
}

// UpdateFactor edits the mutable attributes of a rule. The multiplier
// domain check is re-applied on every change.
func (s *PricingService) UpdateFactor(id uuid.UUID, req *CreatePricingFactorRequest) (*models.PricingFactor, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid pricing factor", utils.GetValidationErrors(err))
	}

	factor, err := s.GetFactor(id)
	if err != nil {
		return nil, err
	}

	factor.Name = req.Name
	factor.Factor = req.Factor
	factor.Category = normalizeScope(req.Category)
	factor.Material = normalizeScope(req.Material)
	factor.Urgency = normalizeScope(req.Urgency)
	factor.MinOrderValue = req.MinOrderValue
	factor.MaxOrderValue = req.MaxOrderValue
	factor.ValidUntil = req.ValidUntil
	factor.IsDefault = req.IsDefault

	if err := s.db.Save(factor).Error; err != nil {
		return nil, apperrors.Internal("failed to update pricing factor", err)
	}

	return factor, nil
}
