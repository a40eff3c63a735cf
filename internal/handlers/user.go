// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/RomainLafont/project-g/internal/i18n"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/services"
	"github.com/RomainLafont/project-g/internal/utils"
)

// UserHandler covers the supplier directory plus the admin account routes.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GET /suppliers
func (h *UserHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.userService.ListSuppliers()
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"suppliers": suppliers,
	})
}

// GET /admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	role := models.UserRole(c.Query("role"))

	users, total, err := h.userService.ListUsers(params, role)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// GET /admin/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	user, err := h.userService.GetUser(userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"user": user,
	})
}

// POST /admin/users/:id/activate
func (h *UserHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true, i18n.KeyUserActivated)
}

// POST /admin/users/:id/deactivate
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false, i18n.KeyUserDeactivated)
}

func (h *UserHandler) setActive(c *gin.Context, active bool, messageKey string) {
	lang := utils.GetLangFromContext(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	user, err := h.userService.SetActive(userID, active)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, messageKey),
		"user":    user,
	})
}

// POST /admin/users/:id/verify
func (h *UserHandler) VerifyUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	user, err := h.userService.Verify(userID)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUserVerified),
		"user":    user,
	})
}
