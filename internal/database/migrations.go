package database

import (
	"fmt"

	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AddIndexes adds lookup indexes that are not expressed as struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   interface{}
		name    string
		columns string
	}{
		// Task filtering by project and status
		{&models.Task{}, "idx_tasks_project_status", "project_id, status"},
		{&models.Task{}, "idx_tasks_due_date", "due_date"},

		// Project listing per organization
		{&models.Project{}, "idx_projects_org_status", "organization_id, status"},

		// User search
		{&models.User{}, "idx_users_name", "name"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}

		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(idx.model); err != nil {
			return fmt.Errorf("failed to parse model for index %s: %w", idx.name, err)
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, stmt.Schema.Table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logrus.WithFields(logrus.Fields{
			"index":   idx.name,
			"table":   stmt.Schema.Table,
			"columns": idx.columns,
		}).Info("created index")
	}

	return nil
}
