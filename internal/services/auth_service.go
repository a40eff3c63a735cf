// internal/services/auth_service.go
package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/config"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username          string          `json:"username" validate:"required,username"`
	Email             string          `json:"email" validate:"required,email"`
	Password          string          `json:"password" validate:"required,strong_password"`
	Role              models.UserRole `json:"role" validate:"required,oneof=dentist supplier"`
	PreferredLanguage string          `json:"preferred_language,omitempty" validate:"omitempty,oneof=en fr"`
	Phone             string          `json:"phone,omitempty" validate:"max=30"`

	// Dentist fields
	PracticeName  string `json:"practice_name,omitempty" validate:"max=255"`
	LicenseNumber string `json:"license_number,omitempty" validate:"max=100"`

	// Supplier fields
	CompanyName          string `json:"company_name,omitempty" validate:"max=255"`
	BusinessRegistration string `json:"business_registration,omitempty" validate:"max=100"`
}

type UpdateProfileRequest struct {
	Username          *string `json:"username,omitempty" validate:"omitempty,username"`
	PreferredLanguage *string `json:"preferred_language,omitempty" validate:"omitempty,oneof=en fr"`
	Phone             *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	PracticeName      *string `json:"practice_name,omitempty" validate:"omitempty,max=255"`
	LicenseNumber     *string `json:"license_number,omitempty" validate:"omitempty,max=100"`
	CompanyName       *string `json:"company_name,omitempty" validate:"omitempty,max=255"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,strong_password"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// Register creates a dentist or supplier account. Admin accounts are only
// created through seeding or by another admin.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid registration", utils.GetValidationErrors(err))
	}

	var existing models.User
	if err := s.db.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		if existing.Email == req.Email {
			return nil, apperrors.Conflict("user with this email already exists")
		}
		return nil, apperrors.Conflict("username already taken")
	}

	lang := req.PreferredLanguage
	if lang == "" {
		lang = "en"
	}

	user := &models.User{
		Username:             req.Username,
		Email:                req.Email,
		Role:                 req.Role,
		PreferredLanguage:    lang,
		Phone:                req.Phone,
		IsActive:             true,
		PracticeName:         req.PracticeName,
		LicenseNumber:        req.LicenseNumber,
		CompanyName:          req.CompanyName,
		BusinessRegistration: req.BusinessRegistration,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	return s.issueTokens(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid login", utils.GetValidationErrors(err))
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthenticated("invalid email or password")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden("account is deactivated")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.Unauthenticated("invalid email or password")
	}

	now := time.Now()
	user.LastLoginAt = &now
	s.db.Save(&user)

	return s.issueTokens(&user)
}

func (s *AuthService) RefreshToken(refreshToken string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Unauthenticated("user not found")
		}
		return nil, apperrors.Internal("database error", err)
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden("account is deactivated")
	}

	return s.issueTokens(&user)
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user")
		}
		return nil, apperrors.Internal("database error", err)
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.ValidationFailed("invalid profile update", utils.GetValidationErrors(err))
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		var existing models.User
		if err := s.db.Where("username = ? AND id != ?", *req.Username, userID).First(&existing).Error; err == nil {
			return nil, apperrors.Conflict("username already taken")
		}
		user.Username = *req.Username
	}
	if req.PreferredLanguage != nil {
		user.PreferredLanguage = *req.PreferredLanguage
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.PracticeName != nil {
		user.PracticeName = *req.PracticeName
	}
	if req.LicenseNumber != nil {
		user.LicenseNumber = *req.LicenseNumber
	}
	if req.CompanyName != nil {
		user.CompanyName = *req.CompanyName
	}

	if err := s.db.Save(user).Error; err != nil {
		return nil, apperrors.Internal("failed to update profile", err)
	}

	return user, nil
}

func (s *AuthService) ChangePassword(userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.ValidationFailed("invalid password change", utils.GetValidationErrors(err))
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if err := user.CheckPassword(req.CurrentPassword); err != nil {
		return apperrors.Unauthenticated("current password is incorrect")
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		return apperrors.Internal("failed to hash password", err)
	}

	if err := s.db.Save(user).Error; err != nil {
		return apperrors.Internal("failed to update password", err)
	}

	return nil
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Username, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("failed to generate access token", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, apperrors.Internal("failed to generate refresh token", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
