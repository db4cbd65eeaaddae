package database

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"catalog/internal/config"
	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection to :memory: would see its own empty database
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	err := configurePool(db, &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestPersistentModels_AutoMigrate(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{"users", "product", "user_product", "password_reset_token"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}

	owner := models.User{Username: "admin", Email: "admin@example.com", Password: "x", IsAdmin: true}
	require.NoError(t, db.Create(&owner).Error)
	p := models.Product{Name: "Widget", Price: 9.99, OwnerID: owner.ID}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&models.UserProduct{OwnerID: owner.ID, ProductID: p.ID}).Error)

	dup := db.Create(&models.UserProduct{OwnerID: owner.ID, ProductID: p.ID}).Error
	assert.Error(t, dup, "a second like for the same pair must be rejected")
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Version, all[i].Version)
	}

	first := GetMigrationByVersion(1)
	require.NotNil(t, first)
	assert.Equal(t, "000001_init_schema", first.String())
	assert.Contains(t, first.UpScript, "CREATE TABLE IF NOT EXISTS product")
	assert.Contains(t, first.UpScript, "CHECK (price >= 0)")
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations_Errors(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
		want string
	}{
		{
			name: "missing down script",
			fs:   fstest.MapFS{"m/000001_a.up.sql": {Data: []byte("SELECT 1")}},
			want: "down migration",
		},
		{
			name: "bad version",
			fs: fstest.MapFS{
				"m/abc_a.up.sql":   {Data: []byte("SELECT 1")},
				"m/abc_a.down.sql": {Data: []byte("SELECT 1")},
			},
			want: "invalid version",
		},
		{
			name: "duplicate version",
			fs: fstest.MapFS{
				"m/000001_a.up.sql":   {Data: []byte("SELECT 1")},
				"m/000001_a.down.sql": {Data: []byte("SELECT 1")},
				"m/1_b.up.sql":        {Data: []byte("SELECT 1")},
				"m/1_b.down.sql":      {Data: []byte("SELECT 1")},
			},
			want: "used by both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.fs, "m")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		mode, env       string
		runSQL, runAuto bool
		wantErr         bool
	}{
		{"", "development", true, true, false},
		{"hybrid", "production", true, false, false},
		{"sql", "development", true, false, false},
		{"auto", "development", false, true, false},
		{"auto", "staging", false, false, true},
		{"bogus", "development", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.env, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&config.Config{DBSchemaMode: tt.mode, Env: tt.env})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL)
			assert.Equal(t, tt.runAuto, runAuto)
		})
	}
}

func TestValidateAppliedVersions(t *testing.T) {
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, GetMigrations()))
	err := validateAppliedVersions([]int{1, 42}, GetMigrations())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestCopyStatement(t *testing.T) {
	got := CopyStatement("product", models.ProductColumns)
	assert.Equal(t,
		`COPY "product" ("name", "price", "description", "owner_id", "created_at", "updated_at") FROM STDIN WITH (FORMAT csv, HEADER true)`,
		got)
}

func TestCopyFromCSV_NonPgxDriver(t *testing.T) {
	db := openSQLite(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := CopyFromCSV(ctx, db, "product", models.ProductColumns, strings.NewReader("name\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnUnavailable)
}

func TestGormLogger_LogMode(t *testing.T) {
	l := NewGormLogger(nil, 0)
	quiet := l.LogMode(1).(*CustomGormLogger)
	assert.EqualValues(t, 1, quiet.Config.LogLevel)
	assert.EqualValues(t, 0, l.Config.LogLevel)
}
