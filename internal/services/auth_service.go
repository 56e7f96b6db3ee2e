package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/constants"
	"github.com/serialpm/serialpm-api/internal/logging"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrUserNotFound       = errors.New("user not found")
)

// AuthService handles account creation and sessions.
type AuthService struct {
	userRepo repository.UserRepository
	orgRepo  repository.OrganizationRepository
	issuer   *auth.Issuer
	notifier Notifier
	hashCost int
}

func NewAuthService(userRepo repository.UserRepository, orgRepo repository.OrganizationRepository, issuer *auth.Issuer, notifier Notifier) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		orgRepo:  orgRepo,
		issuer:   issuer,
		notifier: notifier,
		hashCost: bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates a client account, issues its first credential and sends a
// welcome notification.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, string, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, "", fmt.Errorf("%w: name and email are required", ErrValidation)
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Role:          models.RoleClient,
		AccountStatus: models.AccountStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.notifier.Notify(user.ID, realtime.Notification{
		Type:    "success",
		Title:   "Welcome",
		Message: fmt.Sprintf("Welcome to SerialPM, %s!", user.Name),
	})
	logging.LogEvent("user_signup", logrus.Fields{"user_id": user.ID})

	return user, token, nil
}

// Login verifies credentials. The user's organization, if any, is returned
// alongside the new credential.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *models.Organization, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", ErrInvalidCredentials
		}
		return nil, nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, "", ErrInvalidCredentials
	}

	var org *models.Organization
	if user.OrganizationID != nil {
		org, err = s.orgRepo.FindByID(ctx, *user.OrganizationID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, "", fmt.Errorf("failed to find organization: %w", err)
		}
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, org, token, nil
}

// Logout drops the user's push connection. Credentials stay valid until
// they expire.
func (s *AuthService) Logout(userID uint64) {
	if s.notifier.Disconnect(userID) {
		logging.LogEvent("user_logout", logrus.Fields{"user_id": userID})
	}
}
