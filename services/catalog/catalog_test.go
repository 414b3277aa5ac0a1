package catalog

import (
	"testing"

	courseModels "lms/models/course"
	"lms/services/apperr"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Content{},
		&courseModels.ContentProgress{},
	)
	require.NoError(t, err)

	return db
}

func seedModules(t *testing.T, db *gorm.DB, courseID uint, count int) []courseModels.Module {
	t.Helper()
	modules := make([]courseModels.Module, 0, count)
	for i := 1; i <= count; i++ {
		m := courseModels.Module{CourseID: courseID, Title: "M", OrderIndex: i}
		require.NoError(t, db.Create(&m).Error)
		modules = append(modules, m)
	}
	return modules
}

func moduleOrders(t *testing.T, db *gorm.DB, courseID uint) map[uint]int {
	t.Helper()
	var modules []courseModels.Module
	require.NoError(t, db.Where("course_id = ?", courseID).Find(&modules).Error)
	orders := make(map[uint]int, len(modules))
	for _, m := range modules {
		orders[m.ID] = m.OrderIndex
	}
	return orders
}

func TestNextModuleOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	next, err := svc.NextModuleOrder(1)
	require.NoError(t, err)
	require.Equal(t, 1, next)

	seedModules(t, db, 1, 3)
	next, err = svc.NextModuleOrder(1)
	require.NoError(t, err)
	require.Equal(t, 4, next)
}

func TestShiftModulesFrom(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	modules := seedModules(t, db, 1, 3)

	// Insert at position 2: modules 2 and 3 move up
	require.NoError(t, svc.ShiftModulesFrom(db, 1, 2))

	orders := moduleOrders(t, db, 1)
	require.Equal(t, 1, orders[modules[0].ID])
	require.Equal(t, 3, orders[modules[1].ID])
	require.Equal(t, 4, orders[modules[2].ID])
}

func TestRepackModulesAfter(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	modules := seedModules(t, db, 1, 3)

	// Deleting position 2 pulls module 3 back down
	require.NoError(t, db.Model(&courseModels.Module{}).
		Where("id = ?", modules[1].ID).Update("is_deleted", true).Error)
	require.NoError(t, svc.RepackModulesAfter(db, 1, 2))

	orders := moduleOrders(t, db, 1)
	require.Equal(t, 1, orders[modules[0].ID])
	require.Equal(t, 2, orders[modules[2].ID])
}

func TestCheckWeekOverlap(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	existing := courseModels.Module{
		CourseID: 1, Title: "Weeks 1-2", OrderIndex: 1, WeekNumber: 1, EstimatedDuration: 2,
	}
	require.NoError(t, db.Create(&existing).Error)

	// Week 3 onward is free
	require.NoError(t, svc.CheckWeekOverlap(1, 3, 1, 0))

	// Week 2 collides
	err := svc.CheckWeekOverlap(1, 2, 1, 0)
	require.ErrorIs(t, err, apperr.ErrValidation)

	// The module being edited does not collide with itself
	require.NoError(t, svc.CheckWeekOverlap(1, 1, 2, existing.ID))

	// Week numbers start at one
	err = svc.CheckWeekOverlap(1, 0, 1, 0)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestContentHasProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	content := courseModels.Content{
		ModuleID: 1, Title: "Lesson", ContentType: courseModels.ContentVideo, OrderIndex: 1,
	}
	require.NoError(t, db.Create(&content).Error)

	has, err := svc.ContentHasProgress(content.ID)
	require.NoError(t, err)
	require.False(t, has)

	require.NoError(t, db.Create(&courseModels.ContentProgress{
		StudentID:  1,
		ContentRef: courseModels.RecordedRef(content.ID),
	}).Error)

	has, err = svc.ContentHasProgress(content.ID)
	require.NoError(t, err)
	require.True(t, has)

	// The owning module reports progress through its contents
	has, err = svc.ModuleHasProgress(1)
	require.NoError(t, err)
	require.True(t, has)
}
