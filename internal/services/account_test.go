package services

import (
	"testing"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUserProfileAndCompany(t *testing.T) {
	e := newEnv(t)

	res, err := e.accounts.Register(e.ctx, registration("  New.User@Example.com ", "Acme"))
	require.NoError(t, err)
	assert.Equal(t, "new.user@example.com", res.User.Email)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)
	assert.Equal(t, res.User.ID, res.Profile.UserID)
	assert.Equal(t, res.User.ID, res.Company.AdminUserID)

	info, err := e.accounts.UserInformation(e.ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Abebe", info.Profile.FirstName)
	assert.Equal(t, &models.CompanyRef{ID: res.Company.ID, Name: "Acme"}, info.Company)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	e := newEnv(t)
	_, err := e.accounts.Register(e.ctx, registration("dup@example.com", "One"))
	require.NoError(t, err)

	_, err = e.accounts.Register(e.ctx, registration("DUP@example.com", "Two"))
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterValidationWritesNothing(t *testing.T) {
	e := newEnv(t)

	tests := []struct {
		name   string
		mutate func(*models.RegistrationRequest)
		field  string
	}{
		{name: "short password", mutate: func(r *models.RegistrationRequest) { r.Password = "123" }, field: "password"},
		{name: "bad email", mutate: func(r *models.RegistrationRequest) { r.Email = "nope" }, field: "email"},
		{name: "missing first name", mutate: func(r *models.RegistrationRequest) { r.Profile.FirstName = "" }, field: "user_profile.first_name"},
		{name: "missing company name", mutate: func(r *models.RegistrationRequest) { r.Company.Name = "" }, field: "company.name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := registration("partial@example.com", "Partial")
			tt.mutate(&req)

			_, err := e.accounts.Register(e.ctx, req)
			require.True(t, apperr.IsValidation(err), "got %v", err)
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Contains(t, ae.Fields, tt.field)

			_, err = e.store.Users().GetByEmail(e.ctx, "partial@example.com")
			assert.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestLogin(t *testing.T) {
	e := newEnv(t)
	reg, err := e.accounts.Register(e.ctx, registration("login@example.com", "Acme"))
	require.NoError(t, err)

	res, err := e.accounts.Login(e.ctx, models.LoginRequest{Email: "LOGIN@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, reg.User.ID, res.User.ID)

	id, err := e.accounts.Authenticate(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.UserID)

	_, err = e.accounts.Login(e.ctx, models.LoginRequest{Email: "login@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.accounts.Login(e.ctx, models.LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.accounts.Authenticate("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCheckEmail(t *testing.T) {
	e := newEnv(t)
	_, err := e.accounts.Register(e.ctx, registration("taken@example.com", "Acme"))
	require.NoError(t, err)

	available, err := e.accounts.CheckEmail(e.ctx, models.CheckEmailRequest{Email: "taken@example.com"})
	require.NoError(t, err)
	assert.False(t, available)

	available, err = e.accounts.CheckEmail(e.ctx, models.CheckEmailRequest{Email: "free@example.com"})
	require.NoError(t, err)
	assert.True(t, available)

	_, err = e.accounts.CheckEmail(e.ctx, models.CheckEmailRequest{Email: "not-an-email"})
	assert.True(t, apperr.IsValidation(err))
}

func TestUserInformationNotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.accounts.UserInformation(e.ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
