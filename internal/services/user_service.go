// internal/services/user_service.go
package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/utils"
)

// UserService covers the admin-side account operations.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ListUsers returns accounts filtered by role and search term, paginated.
func (s *UserService) ListUsers(params utils.PaginationParams, role models.UserRole) ([]models.User, int64, error) {
	query := s.db.Model(&models.User{})

	if role != "" {
		query = query.Where("role = ?", role)
	}
	if params.Status == "active" {
		query = query.Where("is_active = ?", true)
	} else if params.Status == "inactive" {
		query = query.Where("is_active = ?", false)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ? OR company_name ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to count users", err)
	}

	allowedSortFields := []string{"created_at", "username", "email", "last_login_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, apperrors.Internal("failed to fetch users", err)
	}

	return users, total, nil
}

// ListSuppliers returns the active suppliers a dentist can send an order to.
func (s *UserService) ListSuppliers() ([]models.User, error) {
	var suppliers []models.User
	err := s.db.
		Where("role = ? AND is_active = ?", models.UserRoleSupplier, true).
		Order("company_name asc").
		Find(&suppliers).Error
	if err != nil {
		return nil, apperrors.Internal("failed to fetch suppliers", err)
	}
	return suppliers, nil
}

func (s *UserService) GetUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal("failed to load user", err)
	}
	return &user, nil
}

// SetActive toggles account access. Deactivated users keep their data but
// cannot authenticate.
func (s *UserService) SetActive(userID uuid.UUID, active bool) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if user.IsActive == active {
		return user, nil
	}

	user.IsActive = active
	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Internal("failed to update user", err)
	}

	return user, nil
}

// Verify marks a professional account as credential-checked.
func (s *UserService) Verify(userID uuid.UUID) (*models.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	if user.Role == models.UserRoleAdmin {
		return nil, apperrors.InvalidState("admin accounts are not subject to verification")
	}

	user.IsVerified = true
	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Internal("failed to verify user", err)
	}

	return user, nil
}
