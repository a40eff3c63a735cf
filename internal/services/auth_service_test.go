// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/apperrors"
	"github.com/RomainLafont/project-g/internal/config"
	"github.com/RomainLafont/project-g/internal/models"
)

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 24,
		},
	}
	return NewAuthService(db, cfg)
}

func TestRegisterDentist(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&RegisterRequest{
		Username:     "dr_smith",
		Email:        "smith@example.com",
		Password:     "Str0ngPass!",
		Role:         models.UserRoleDentist,
		PracticeName: "Smith Dental",
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleDentist, resp.User.Role)
	assert.Equal(t, "en", resp.User.PreferredLanguage)
	assert.True(t, resp.User.IsActive)
	assert.False(t, resp.User.IsVerified)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(&RegisterRequest{
		Username: "sneaky",
		Email:    "sneaky@example.com",
		Password: "Str0ngPass!",
		Role:     models.UserRoleAdmin,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.From(err).Code)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	req := &RegisterRequest{
		Username: "dr_smith",
		Email:    "smith@example.com",
		Password: "Str0ngPass!",
		Role:     models.UserRoleDentist,
	}
	_, err := svc.Register(req)
	require.NoError(t, err)

	req.Username = "dr_smith_2"
	_, err = svc.Register(req)
	require.Error(t, err)

	appErr := apperrors.From(err)
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
	assert.Equal(t, 409, appErr.HTTPStatus())
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(&RegisterRequest{
		Username: "dr_smith",
		Email:    "smith@example.com",
		Password: "weak",
		Role:     models.UserRoleDentist,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.From(err).Code)
}

func TestLoginSuccessAndFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	_, err := svc.Register(&RegisterRequest{
		Username: "lab_berlin",
		Email:    "lab@example.com",
		Password: "Str0ngPass!",
		Role:     models.UserRoleSupplier,
	})
	require.NoError(t, err)

	resp, err := svc.Login(&LoginRequest{Email: "lab@example.com", Password: "Str0ngPass!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User.LastLoginAt)

	_, err = svc.Login(&LoginRequest{Email: "lab@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.From(err).Code)

	// unknown accounts fail the same way as bad passwords
	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "Str0ngPass!"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.From(err).Code)
}

func TestLoginDeactivatedAccountForbidden(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&RegisterRequest{
		Username: "lab_berlin",
		Email:    "lab@example.com",
		Password: "Str0ngPass!",
		Role:     models.UserRoleSupplier,
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(resp.User).Update("is_active", false).Error)

	_, err = svc.Login(&LoginRequest{Email: "lab@example.com", Password: "Str0ngPass!"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.From(err).Code)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&RegisterRequest{
		Username: "dr_smith",
		Email:    "smith@example.com",
		Password: "Str0ngPass!",
		Role:     models.UserRoleDentist,
	})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.RefreshToken("garbage")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.From(err).Code)
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	resp, err := svc.Register(&RegisterRequest{
		Username: "dr_smith",
		Email:    "smith@example.com",
		Password: "Str0ngPass!",
		Role:     models.UserRoleDentist,
	})
	require.NoError(t, err)

	err = svc.ChangePassword(resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "N3wStrong!",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.From(err).Code)

	err = svc.ChangePassword(resp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "Str0ngPass!",
		NewPassword:     "N3wStrong!",
	})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: "smith@example.com", Password: "N3wStrong!"})
	require.NoError(t, err)
}
