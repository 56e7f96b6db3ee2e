// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/serialpm/serialpm-api/internal/database"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/utils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

var dbSeq atomic.Uint64

// NewTestDB opens a migrated in-memory SQLite database private to t. A
// single connection is used so that every query, including those issued
// from other goroutines, sees the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(logger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a client user whose password is TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Role:          models.RoleClient,
		AccountStatus: models.AccountStatusActive,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateOrganization inserts an organization administered by admin and
// moves admin into it.
func CreateOrganization(t *testing.T, db *gorm.DB, admin *models.User, name string) *models.Organization {
	t.Helper()

	org := &models.Organization{
		Name:       name,
		AdminName:  admin.Name,
		AdminEmail: admin.Email,
		City:       "Springfield",
		State:      "IL",
		Zip:        "62701",
		Country:    "USA",
		InviteKey:  utils.GenerateInviteKey(),
		AdminID:    admin.ID,
	}
	require.NoError(t, db.Create(org).Error)

	admin.Role = models.RoleAdmin
	admin.OrganizationID = &org.ID
	require.NoError(t, db.Save(admin).Error)
	return org
}

// AddMember moves user into org as a team member.
func AddMember(t *testing.T, db *gorm.DB, user *models.User, org *models.Organization) {
	t.Helper()

	user.Role = models.RoleTeamMember
	user.OrganizationID = &org.ID
	require.NoError(t, db.Save(user).Error)
}

func CreateProject(t *testing.T, db *gorm.DB, organizationID uint64, title string) *models.Project {
	t.Helper()

	project := &models.Project{
		Title:          title,
		Status:         models.ProjectStatusActive,
		StartDate:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		OrganizationID: organizationID,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

func CreateTask(t *testing.T, db *gorm.DB, projectID uint64, title, tags string) *models.Task {
	t.Helper()

	task := &models.Task{
		Title:     title,
		Priority:  models.TaskPriorityMedium,
		ProjectID: projectID,
		Tags:      utils.NormalizeTags(tags),
		Status:    models.TaskStatusPending,
	}
	require.NoError(t, db.Omit("Project", "AssignedUser").Create(task).Error)
	return task
}
