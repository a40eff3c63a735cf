// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/i18n"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/utils"
)

func headerLang(c *gin.Context) string {
	if lang, exists := c.Get("lang"); exists {
		if s, ok := lang.(string); ok {
			return s
		}
	}
	return "en"
}

// AuthRequired validates the bearer credential and resolves it to an active
// user record. Deactivated accounts are rejected even with a valid token.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := headerLang(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthRequired),
			})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthInvalidToken),
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthTokenExpired),
			})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthInvalidToken),
			})
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthInvalidToken),
			})
			c.Abort()
			return
		}

		if !user.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": i18n.T(lang, i18n.KeyAuthAccountInactive),
			})
			c.Abort()
			return
		}

		// Set user info in context
		c.Set("user", &user)
		c.Set("user_id", user.ID.String())
		c.Set("username", user.Username)
		c.Set("role", string(user.Role))
		c.Next()
	}
}

// RoleRequired gates a route group to the given role set. Runs after
// AuthRequired.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := headerLang(c)

		role, exists := c.Get("role")
		if exists {
			for _, allowed := range roles {
				if role == string(allowed) {
					c.Next()
					return
				}
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error": i18n.T(lang, i18n.KeyAccessDenied),
		})
		c.Abort()
	}
}

func AdminRequired() gin.HandlerFunc {
	return RoleRequired(models.UserRoleAdmin)
}

// CurrentUser returns the authenticated user placed in the context by
// AuthRequired.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	if v, exists := c.Get("user"); exists {
		if user, ok := v.(*models.User); ok {
			return user, true
		}
	}
	return nil, false
}
