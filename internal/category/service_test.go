package category

import (
	"context"
	"path/filepath"
	"testing"

	"campus_desk_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupCategoryTestSuite(t *testing.T) (Service, Repository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "categories.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Category{}))
	repo := NewGORMRepository(db)
	return NewService(repo, zap.NewNop()), repo
}

func TestEnsureDefaults_IsRepeatable(t *testing.T) {
	svc, _ := setupCategoryTestSuite(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx))
	require.NoError(t, svc.EnsureDefaults(ctx))

	all, err := svc.GetAllCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, NameAdministrative, all[0].Name)
	assert.Equal(t, "administrative", all[0].Slug)
	assert.Equal(t, NameFacility, all[1].Name)
}

func TestGetCategoryByName(t *testing.T) {
	svc, _ := setupCategoryTestSuite(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaults(ctx))

	found, err := svc.GetCategoryByName(ctx, NameFacility)
	require.NoError(t, err)
	assert.Equal(t, "facility", found.Slug)

	_, err = svc.GetCategoryByName(ctx, "Parking")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAdminCreateCategory_SlugAndConflict(t *testing.T) {
	svc, _ := setupCategoryTestSuite(t)
	ctx := context.Background()

	created, err := svc.AdminCreateCategory(ctx, AdminCreateCategoryRequest{Name: "IT Services & Wi-Fi"})
	require.NoError(t, err)
	assert.Equal(t, "it-services-and-wi-fi", created.Slug)

	_, err = svc.AdminCreateCategory(ctx, AdminCreateCategoryRequest{Name: "IT Services & Wi-Fi"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestCategoryNames_SkipsUnknownIDs(t *testing.T) {
	svc, _ := setupCategoryTestSuite(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaults(ctx))
	facility, err := svc.GetCategoryByName(ctx, NameFacility)
	require.NoError(t, err)

	missing := uuid.New()
	names, err := svc.CategoryNames(ctx, []uuid.UUID{facility.ID, missing})
	require.NoError(t, err)
	assert.Equal(t, NameFacility, names[facility.ID])
	_, ok := names[missing]
	assert.False(t, ok)
}
