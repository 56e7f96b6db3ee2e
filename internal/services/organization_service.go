package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/serialpm/serialpm-api/internal/auth"
	"github.com/serialpm/serialpm-api/internal/constants"
	"github.com/serialpm/serialpm-api/internal/logging"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/repository"
	"github.com/serialpm/serialpm-api/internal/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrInvalidInviteKey     = errors.New("invalid invite key")
	ErrInviteKeyConflict    = errors.New("could not allocate a unique invite key")
	ErrNoOrganization       = errors.New("user is not associated with an organization")
)

// OrganizationService provides onboarding, membership and organization
// profile operations.
type OrganizationService struct {
	orgRepo      repository.OrganizationRepository
	userRepo     repository.UserRepository
	issuer       *auth.Issuer
	validate     *validator.Validate
	newInviteKey func() string
}

func NewOrganizationService(orgRepo repository.OrganizationRepository, userRepo repository.UserRepository, issuer *auth.Issuer) *OrganizationService {
	return &OrganizationService{
		orgRepo:      orgRepo,
		userRepo:     userRepo,
		issuer:       issuer,
		validate:     newValidator(),
		newInviteKey: utils.GenerateInviteKey,
	}
}

// WithInviteKeyGenerator replaces the invite key source.
func (s *OrganizationService) WithInviteKeyGenerator(fn func() string) *OrganizationService {
	s.newInviteKey = fn
	return s
}

type OnboardInput struct {
	Name       string `validate:"required"`
	AdminName  string `validate:"required"`
	AdminEmail string `validate:"required,email"`
	UserID     uint64 `validate:"required"`
	City       string `validate:"required"`
	State      string `validate:"required"`
	Zip        string `validate:"required,zipcode"`
	Country    string `validate:"required"`
}

func (in *OnboardInput) trim() {
	for _, f := range []*string{&in.Name, &in.AdminName, &in.AdminEmail, &in.City, &in.State, &in.Zip, &in.Country} {
		*f = strings.TrimSpace(*f)
	}
}

type OnboardResult struct {
	Organization *models.Organization
	Admin        *models.User
	Token        string
}

// Onboard creates an organization and makes input.UserID its admin. The
// organization row and the user's promotion commit together or not at all;
// the credential is issued only after the commit. An invite key collision
// restarts the whole transaction with a fresh key.
func (s *OrganizationService) Onboard(ctx context.Context, input OnboardInput) (*OnboardResult, error) {
	input.trim()
	if err := validateStruct(s.validate, input); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= constants.MaxInviteKeyAttempts; attempt++ {
		org := &models.Organization{
			Name:       input.Name,
			AdminName:  input.AdminName,
			AdminEmail: input.AdminEmail,
			City:       input.City,
			State:      input.State,
			Zip:        input.Zip,
			Country:    input.Country,
			InviteKey:  s.newInviteKey(),
		}

		admin, err := s.orgRepo.CreateWithAdmin(ctx, input.UserID, org)
		switch {
		case err == nil:
			token, err := s.issuer.Issue(admin)
			if err != nil {
				return nil, fmt.Errorf("failed to issue token: %w", err)
			}
			logging.LogEvent("organization_onboarded", logrus.Fields{
				"organization_id": org.ID,
				"user_id":         admin.ID,
			})
			return &OnboardResult{Organization: org, Admin: admin, Token: token}, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrCreateOrganization) && errors.Is(err, gorm.ErrDuplicatedKey):
			logrus.WithFields(logrus.Fields{"attempt": attempt, "user_id": input.UserID}).
				Warn("invite key collision, retrying onboarding")
		default:
			return nil, fmt.Errorf("failed to onboard organization: %w", err)
		}
	}

	return nil, ErrInviteKeyConflict
}

type JoinResult struct {
	Organization *models.Organization
	Member       *models.User
	Token        string
}

// Join moves userID into the organization owning inviteKey as a team member.
// An admin of another organization is demoted.
func (s *OrganizationService) Join(ctx context.Context, userID uint64, inviteKey string) (*JoinResult, error) {
	org, err := s.orgRepo.FindByInviteKey(ctx, strings.TrimSpace(inviteKey))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteKey
		}
		return nil, fmt.Errorf("failed to find organization by invite key: %w", err)
	}

	member, err := s.orgRepo.AssignMember(ctx, userID, org.ID, models.RoleTeamMember)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to join organization: %w", err)
	}

	token, err := s.issuer.Issue(member)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	logging.LogEvent("organization_joined", logrus.Fields{
		"organization_id": org.ID,
		"user_id":         member.ID,
	})
	return &JoinResult{Organization: org, Member: member, Token: token}, nil
}

func (s *OrganizationService) Get(ctx context.Context, id uint64) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return org, nil
}

func (s *OrganizationService) List(ctx context.Context, page utils.PaginationParams) ([]models.Organization, int64, error) {
	orgs, total, err := s.orgRepo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, total, nil
}

type UpdateOrganizationInput struct {
	Title       *string
	Description *string
}

// Update changes the organization's profile text.
func (s *OrganizationService) Update(ctx context.Context, id uint64, input UpdateOrganizationInput) (*models.Organization, error) {
	org, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		org.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		org.Description = *input.Description
	}

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

func (s *OrganizationService) Members(ctx context.Context, id uint64) ([]models.User, error) {
	users, err := s.userRepo.ListByOrganization(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list organization members: %w", err)
	}
	return users, nil
}

type UserOrganization struct {
	Organization *models.Organization
	Admin        *models.User
	Members      []models.User
}

// ForUser returns the organization userID belongs to, with its admin and
// members.
func (s *OrganizationService) ForUser(ctx context.Context, userID uint64) (*UserOrganization, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.OrganizationID == nil {
		return nil, ErrNoOrganization
	}

	org, err := s.Get(ctx, *user.OrganizationID)
	if err != nil {
		return nil, err
	}

	members, err := s.Members(ctx, org.ID)
	if err != nil {
		return nil, err
	}

	result := &UserOrganization{Organization: org, Members: members}
	for i := range members {
		if members[i].ID == org.AdminID {
			result.Admin = &members[i]
			break
		}
	}
	return result, nil
}
