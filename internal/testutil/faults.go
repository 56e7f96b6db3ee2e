package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// FailUpdatesOn makes every UPDATE against table fail with err before it
// reaches the database.
func FailUpdatesOn(t *testing.T, db *gorm.DB, table string, err error) {
	t.Helper()

	name := "testutil:fail_update_" + table
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(err)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Update().Remove(name) })
}

// FailCreatesOn makes every INSERT against table fail with err.
func FailCreatesOn(t *testing.T, db *gorm.DB, table string, err error) {
	t.Helper()

	name := "testutil:fail_create_" + table
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(err)
		}
	}))
	t.Cleanup(func() { _ = db.Callback().Create().Remove(name) })
}

// CountRows returns the number of rows of model matching the optional
// condition.
func CountRows(t *testing.T, db *gorm.DB, model interface{}, conds ...interface{}) int64 {
	t.Helper()

	var n int64
	q := db.Model(model)
	if len(conds) > 0 {
		q = q.Where(conds[0], conds[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
