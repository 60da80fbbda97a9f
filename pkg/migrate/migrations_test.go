package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir(migrationsDir))
}

func TestMigrationsApplyOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrations_apply?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite", migrationsDir, "up"))

	for _, table := range []string{"users", "content_records", "coupons", "orders", "order_items"} {
		require.True(t, conn.Migrator().HasTable(table), "expected table %s", table)
	}
	require.True(t, conn.Migrator().HasIndex("content_records", "ux_content_records_resource"))

	require.NoError(t, Run(ctx, sqlDB, "sqlite", migrationsDir, "reset"))
	require.False(t, conn.Migrator().HasTable("content_records"))
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Menu Tags!")
	require.NoError(t, err)
	require.Contains(t, path, "_add_menu_tags.sql")
	require.NoError(t, ValidateDir(dir))
}

func TestValidateFSRejectsBrokenMigrations(t *testing.T) {
	good := []byte("-- +goose Up\nCREATE TABLE t (id int);\n-- +goose Down\nDROP TABLE t;\n")
	cases := map[string]fstest.MapFS{
		"bad name":     {"add_table.sql": {Data: good}},
		"duplicate":    {"20260301090000_a.sql": {Data: good}, "20260301090000_b.sql": {Data: good}},
		"missing down": {"20260301090000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")}},
		"down first":   {"20260301090000_a.sql": {Data: []byte("-- +goose Down\n-- +goose Up\n")}},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			require.Error(t, validateFS(fsys))
		})
	}
	require.NoError(t, validateFS(fstest.MapFS{"20260301090000_a.sql": {Data: good}, "README.md": {Data: []byte("x")}}))
}

func TestEmbeddedMigrationsApply(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrations_embedded?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite", "", "up"))
	require.True(t, conn.Migrator().HasTable("orders"))

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite", "", "20260301090100"))
	require.True(t, conn.Migrator().HasTable("content_records"))
	require.False(t, conn.Migrator().HasTable("orders"))

	require.Error(t, MigrateToVersion(ctx, sqlDB, "sqlite", "", "latest"))
}
