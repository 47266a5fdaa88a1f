package database

import (
	"errors"
	"fmt"
	"testing"

	"circle/internal/config"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "circle",
		DBPassword: "pw",
		DBName:     "circle",
	}
	assert.Equal(t, "host=db port=5432 user=circle password=pw dbname=circle sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestPersistentModels_AutoMigrateSQLite(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{
		"profiles", "communities", "community_memberships", "challenges",
		"submissions", "votes", "reputation_history", "notifications",
		"badges", "user_badges",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	// Derived read-only fields never become columns.
	assert.False(t, db.Migrator().HasColumn("submissions", "vote_count"))
	assert.False(t, db.Migrator().HasColumn("submissions", "voted"))
}

func TestIsUniqueViolation(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.Exec("CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT UNIQUE)").Error)
	require.NoError(t, db.Exec("INSERT INTO things (name) VALUES ('a')").Error)

	err := db.Exec("INSERT INTO things (name) VALUES ('a')").Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestCustomGormLogger_LogModeCopies(t *testing.T) {
	base := NewGormLogger(nil)
	quiet := base.LogMode(logger.Silent)

	assert.Equal(t, logger.Warn, base.Config.LogLevel)
	assert.Equal(t, logger.Silent, quiet.(*CustomGormLogger).Config.LogLevel)
}
