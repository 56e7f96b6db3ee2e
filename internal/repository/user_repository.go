package repository

import (
	"context"
	"strings"

	"github.com/serialpm/serialpm-api/internal/database"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) Search(ctx context.Context, query string, page utils.PaginationParams) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})

	prefix := strings.ToLower(query) + "%"
	if query != "" {
		contains := "%" + strings.ToLower(query) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", contains, contains)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "name"}},
		{Column: clause.Column{Name: "id"}},
	}}
	if query != "" {
		order = clause.OrderBy{Expression: clause.Expr{
			SQL:                "CASE WHEN LOWER(name) LIKE ? OR LOWER(email) LIKE ? THEN 0 ELSE 1 END, name, id",
			Vars:               []interface{}{prefix, prefix},
			WithoutParentheses: true,
		}}
	}

	var users []models.User
	if err := q.Clauses(order).
		Scopes(database.Paginate(page)).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *GormUserRepository) UpdateProfilePicture(ctx context.Context, id uint64, path string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("profile_picture", path)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormUserRepository) ListByOrganization(ctx context.Context, organizationID uint64) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Scopes(database.InOrganization(organizationID)).
		Order("name ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
