package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/serialpm/serialpm-api/internal/database"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrLoadUser is returned when the subject user cannot be read inside a
	// membership transaction. It wraps gorm.ErrRecordNotFound when the user
	// does not exist.
	ErrLoadUser = errors.New("organization repository: load user failed")
	// ErrCreateOrganization is returned when inserting the organization fails.
	// It wraps gorm.ErrDuplicatedKey on an invite key collision.
	ErrCreateOrganization = errors.New("organization repository: create organization failed")
	// ErrUpdateMembership is returned when the user's role or organization
	// cannot be written.
	ErrUpdateMembership = errors.New("organization repository: update membership failed")
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

func (r *GormOrganizationRepository) CreateWithAdmin(ctx context.Context, userID uint64, org *models.Organization) (*models.User, error) {
	var admin models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrLoadUser, err)
		}

		org.AdminID = user.ID
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrCreateOrganization, err)
		}

		if err := setMembership(tx, user.ID, org.ID, models.RoleAdmin); err != nil {
			return err
		}

		if err := tx.First(&admin, user.ID).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrLoadUser, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *GormOrganizationRepository) AssignMember(ctx context.Context, userID, organizationID uint64, role models.UserRole) (*models.User, error) {
	var member models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&member, userID).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrLoadUser, err)
		}

		if err := setMembership(tx, userID, organizationID, role); err != nil {
			return err
		}

		if err := tx.First(&member, userID).Error; err != nil {
			return fmt.Errorf("%w: %w", ErrLoadUser, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func setMembership(tx *gorm.DB, userID, organizationID uint64, role models.UserRole) error {
	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"role":            role,
			"organization_id": organizationID,
		}).Error; err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateMembership, err)
	}
	return nil
}

func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *GormOrganizationRepository) FindByInviteKey(ctx context.Context, key string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("invite_key = ?", key).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *GormOrganizationRepository) List(ctx context.Context, page utils.PaginationParams) ([]models.Organization, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Organization{})

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orgs []models.Organization
	if err := q.Order("id ASC").
		Scopes(database.Paginate(page)).
		Find(&orgs).Error; err != nil {
		return nil, 0, err
	}
	return orgs, total, nil
}

func (r *GormOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	return r.db.WithContext(ctx).Model(org).
		Select("title", "description", "updated_at").
		Updates(org).Error
}
