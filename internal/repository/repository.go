package repository

import (
	"context"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error

	FindByID(ctx context.Context, id uint64) (*models.User, error)

	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Search matches name or email. Prefix matches rank before substring
	// matches; ties are broken by name.
	Search(ctx context.Context, query string, page utils.PaginationParams) ([]models.User, int64, error)

	UpdateProfilePicture(ctx context.Context, id uint64, path string) error

	ListByOrganization(ctx context.Context, organizationID uint64) ([]models.User, error)
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// CreateWithAdmin inserts org and promotes userID to its admin within a
	// single transaction, returning the user as stored after the commit.
	CreateWithAdmin(ctx context.Context, userID uint64, org *models.Organization) (*models.User, error)

	// AssignMember moves userID into organizationID with role within a
	// single transaction, returning the updated user.
	AssignMember(ctx context.Context, userID, organizationID uint64, role models.UserRole) (*models.User, error)

	FindByID(ctx context.Context, id uint64) (*models.Organization, error)

	FindByInviteKey(ctx context.Context, key string) (*models.Organization, error)

	List(ctx context.Context, page utils.PaginationParams) ([]models.Organization, int64, error)

	// Update saves title and description only.
	Update(ctx context.Context, org *models.Organization) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID with its owner preloaded
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	List(ctx context.Context, organizationID uint64, page utils.PaginationParams) ([]models.Project, int64, error)

	Search(ctx context.Context, organizationID uint64, query string, limit int) ([]models.Project, error)

	Update(ctx context.Context, project *models.Project) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with its assigned user preloaded
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	Update(ctx context.Context, task *models.Task) error

	UpdateStatus(ctx context.Context, id uint64, status string) error

	// Delete permanently removes a task
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	OrganizationID uint64
	ProjectID      *uint64
	// Tags matches tasks carrying at least one of the tags.
	Tags []string
	Page utils.PaginationParams
}

// MessageRepository defines the interface for chat message storage
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error

	// Conversation returns the messages exchanged between two users in
	// either direction, oldest first.
	Conversation(ctx context.Context, userA, userB uint64) ([]models.Message, error)
}
