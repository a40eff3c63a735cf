// internal/handlers/pricing_factor.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RomainLafont/project-g/internal/i18n"
	"github.com/RomainLafont/project-g/internal/services"
	"github.com/RomainLafont/project-g/internal/utils"
)

// PricingFactorHandler exposes the admin pricing-rule management routes.
type PricingFactorHandler struct {
	pricingService *services.PricingService
}

func NewPricingFactorHandler(pricingService *services.PricingService) *PricingFactorHandler {
	return &PricingFactorHandler{
		pricingService: pricingService,
	}
}

// POST /admin/pricing-factors
func (h *PricingFactorHandler) CreateFactor(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req services.CreatePricingFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	factor, err := h.pricingService.CreateFactor(userID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":        i18n.T(lang, i18n.KeyPricingFactorCreated),
		"pricing_factor": factor,
	})
}

// GET /admin/pricing-factors
func (h *PricingFactorHandler) ListFactors(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var supplierID *uuid.UUID
	if raw := c.Query("supplier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid supplier ID", nil)
			return
		}
		supplierID = &id
	}

	factors, total, err := h.pricingService.ListFactors(params, supplierID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(factors, total, params))
}

// GET /admin/pricing-factors/:id
func (h *PricingFactorHandler) GetFactor(c *gin.Context) {
	factorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pricing factor ID", nil)
		return
	}

	factor, err := h.pricingService.GetFactor(factorID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"pricing_factor": factor,
	})
}

// PUT /admin/pricing-factors/:id
func (h *PricingFactorHandler) UpdateFactor(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	factorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pricing factor ID", nil)
		return
	}

	var req services.CreatePricingFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	factor, err := h.pricingService.UpdateFactor(factorID, &req)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"pricing_factor": factor,
	})
}

// DELETE /admin/pricing-factors/:id
func (h *PricingFactorHandler) DeactivateFactor(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	factorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid pricing factor ID", nil)
		return
	}

	factor, err := h.pricingService.DeactivateFactor(factorID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":        i18n.T(lang, i18n.KeyPricingFactorDeactivated),
		"pricing_factor": factor,
	})
}
