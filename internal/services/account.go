package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SigNoz/marketplace-go-app/internal/apperr"
	"github.com/SigNoz/marketplace-go-app/internal/auth"
	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/internal/metrics"
	"github.com/SigNoz/marketplace-go-app/internal/models"
	"github.com/SigNoz/marketplace-go-app/internal/repository"
)

var (
	ErrEmailTaken         = apperr.Conflict("user with this email already exists")
	ErrInvalidCredentials = apperr.Unauthorized("no active account found with the given credentials")
	ErrInvalidToken       = apperr.Unauthorized("token is expired or invalid")
	ErrUserNotFound       = apperr.NotFound("user not found")
)

// AccountService handles signup, login and user information
type AccountService struct {
	store   repository.Store
	tokens  *auth.TokenIssuer
	metrics *metrics.AppMetrics
	log     *logger.Logger
}

// NewAccountService creates a new account service
func NewAccountService(store repository.Store, tokens *auth.TokenIssuer, m *metrics.AppMetrics, log *logger.Logger) *AccountService {
	return &AccountService{
		store:   store,
		tokens:  tokens,
		metrics: m,
		log:     log.With("service", "AccountService"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user, its profile and its company in one transaction
func (s *AccountService) Register(ctx context.Context, req models.RegistrationRequest) (*models.RegistrationResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}
	if req.Profile.Role == "" {
		req.Profile.Role = models.RoleBuyer
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	result := &models.RegistrationResult{}
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		taken, err := tx.Users().EmailExists(ctx, req.Email)
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}

		user := &models.User{
			Email:          req.Email,
			PasswordHash:   hash,
			IsActive:       true,
			IsCompanyAdmin: true,
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailTaken
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		p := req.Profile
		profile := &models.UserProfile{
			UserID:      user.ID,
			FirstName:   p.FirstName,
			MiddleName:  p.MiddleName,
			LastName:    p.LastName,
			Country:     p.Country,
			Region:      p.Region,
			Zone:        p.Zone,
			Woreda:      p.Woreda,
			Kebele:      p.Kebele,
			PhoneNumber: p.PhoneNumber,
			Role:        p.Role,
		}
		if err := tx.Users().CreateProfile(ctx, profile); err != nil {
			return fmt.Errorf("failed to create user profile: %w", err)
		}

		c := req.Company
		company := &models.Company{
			AdminUserID: user.ID,
			Name:        c.Name,
			Country:     c.Country,
			Region:      c.Region,
			Zone:        c.Zone,
			Woreda:      c.Woreda,
			Kebele:      c.Kebele,
			HouseNumber: c.HouseNumber,
			TIN:         c.TIN,
			PhoneNumber: c.PhoneNumber,
		}
		if err := tx.Companies().Create(ctx, company); err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}

		result.User, result.Profile, result.Company = user, profile, company
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Add(ctx, s.metrics.Registrations)
	s.log.Info("user registered", "user_id", result.User.ID, "company_id", result.Company.ID)
	return result, nil
}

// Login verifies credentials and issues an access token
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.Users().GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.log.Warn("login rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &models.LoginResult{AccessToken: token, ExpiresAt: expiresAt.Unix(), User: user}, nil
}

// CheckEmail reports whether an email is still available for signup
func (s *AccountService) CheckEmail(ctx context.Context, req models.CheckEmailRequest) (bool, error) {
	req.Email = normalizeEmail(req.Email)
	if err := Validate(req); err != nil {
		return false, err
	}

	taken, err := s.store.Users().EmailExists(ctx, req.Email)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return !taken, nil
}

// Authenticate verifies an access token and returns its identity
func (s *AccountService) Authenticate(token string) (*auth.Identity, error) {
	if token == "" {
		return nil, apperr.Unauthorized("authentication credentials were not provided")
	}
	id, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return id, nil
}

// UserInformation returns a user with its profile and company
func (s *AccountService) UserInformation(ctx context.Context, userID int64) (*models.UserInformation, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound, "get user")
	}

	info := &models.UserInformation{User: user}
	if info.Profile, err = s.store.Users().GetProfile(ctx, userID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	company, err := s.store.Companies().GetByAdmin(ctx, userID)
	switch {
	case err == nil:
		info.Company = &models.CompanyRef{ID: company.ID, Name: company.Name}
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return info, nil
}
