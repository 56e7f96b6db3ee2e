package repository

import (
	"context"
	"strings"

	"github.com/serialpm/serialpm-api/internal/database"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Preload("Owner").First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) List(ctx context.Context, organizationID uint64, page utils.PaginationParams) ([]models.Project, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Project{}).Scopes(database.InOrganization(organizationID))

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := q.Preload("Owner").
		Order("created_at DESC").Order("id DESC").
		Scopes(database.Paginate(page)).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Search matches the query against title, description, status, milestones
// and the owner's name.
func (r *GormProjectRepository) Search(ctx context.Context, organizationID uint64, query string, limit int) ([]models.Project, error) {
	like := "%" + strings.ToLower(query) + "%"

	var projects []models.Project
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Joins("LEFT JOIN users owners ON owners.id = projects.owner_id").
		Where("projects.organization_id = ?", organizationID).
		Where(r.db.
			Where("LOWER(projects.title) LIKE ?", like).
			Or("LOWER(projects.description) LIKE ?", like).
			Or("LOWER(projects.status) LIKE ?", like).
			Or("LOWER(projects.milestones) LIKE ?", like).
			Or("LOWER(owners.name) LIKE ?", like)).
		Order("projects.title ASC").
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Owner").Save(project).Error
}
