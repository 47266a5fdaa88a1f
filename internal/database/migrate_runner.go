package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"circle/internal/middleware"

	"gorm.io/gorm"
)

// migrationLockID keys the Postgres advisory lock held while migrating, so
// replicas starting together apply each script once.
const migrationLockID = 0x63697263 // "circ"

// MigrationStore records which schema versions have been applied.
type MigrationStore interface {
	GetAppliedMigrations(ctx context.Context) ([]int, error)
	ApplyMigration(ctx context.Context, version int, name, sql string) error
	RevertMigration(ctx context.Context, version int, sql string) error
}

type migrationStore struct {
	db *gorm.DB
}

// MigrationLog is one applied schema version.
type MigrationLog struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (MigrationLog) TableName() string {
	return "migration_logs"
}

func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

// GetAppliedMigrations returns applied versions in ascending order. A
// database that has never been migrated has none.
func (s *migrationStore) GetAppliedMigrations(ctx context.Context) ([]int, error) {
	var versions []int
	err := s.db.WithContext(ctx).Model(&MigrationLog{}).Order("version ASC").Pluck("version", &versions).Error
	switch {
	case err == nil:
		return versions, nil
	case errors.Is(err, gorm.ErrRecordNotFound), isMissingTableError(err):
		return []int{}, nil
	default:
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
}

func isMissingTableError(err error) bool {
	msg := err.Error()
	return (strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "no such table")
}

// ApplyMigration runs the script and records it in one transaction.
func (s *migrationStore) ApplyMigration(ctx context.Context, version int, name, sql string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to apply migration %06d_%s: %w", version, name, err)
		}
		if err := tx.Create(&MigrationLog{Version: version, Name: name}).Error; err != nil {
			return fmt.Errorf("failed to record migration %d: %w", version, err)
		}
		return nil
	})
}

// RevertMigration runs the down script and forgets the version in one transaction.
func (s *migrationStore) RevertMigration(ctx context.Context, version int, sql string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to revert migration %d: %w", version, err)
		}
		if err := tx.Where("version = ?", version).Delete(&MigrationLog{}).Error; err != nil {
			return fmt.Errorf("failed to remove migration record %d: %w", version, err)
		}
		return nil
	})
}

const ensureMigrationLogTableSQL = `
CREATE TABLE IF NOT EXISTS migration_logs (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// withMigrationLock runs fn on a single pooled connection holding the
// migration advisory lock. Other dialects run fn directly.
func withMigrationLock(ctx context.Context, db *gorm.DB, fn func(conn *gorm.DB) error) error {
	if db.Dialector.Name() != "postgres" {
		return fn(db)
	}
	return db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if err := conn.Exec("SELECT pg_advisory_lock(?)", migrationLockID).Error; err != nil {
			return fmt.Errorf("failed to take migration lock: %w", err)
		}
		defer conn.Exec("SELECT pg_advisory_unlock(?)", migrationLockID)
		return fn(conn)
	})
}

// RunMigrations applies every registered migration not yet recorded.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	return applyPending(ctx, db, migrations)
}

func applyPending(ctx context.Context, db *gorm.DB, registered []Migration) error {
	return withMigrationLock(ctx, db, func(conn *gorm.DB) error {
		if err := conn.WithContext(ctx).Exec(ensureMigrationLogTableSQL).Error; err != nil {
			return fmt.Errorf("failed to ensure migration logs table: %w", err)
		}

		store := NewMigrationStore(conn)
		applied, err := store.GetAppliedMigrations(ctx)
		if err != nil {
			return err
		}
		if err := validateAppliedVersions(applied, registered); err != nil {
			return err
		}

		pending := 0
		for _, m := range registered {
			if slices.Contains(applied, m.Version) {
				continue
			}
			if err := store.ApplyMigration(ctx, m.Version, m.Name, m.UpScript); err != nil {
				return err
			}
			middleware.Logger.InfoContext(ctx, "Migration applied", slog.String("migration", m.String()))
			pending++
		}
		if pending == 0 {
			middleware.Logger.DebugContext(ctx, "Schema already current", slog.Int("applied", len(applied)))
		}
		return nil
	})
}

// validateAppliedVersions rejects a database migrated by a newer build.
func validateAppliedVersions(applied []int, registered []Migration) error {
	var unknown []string
	for _, version := range applied {
		if !slices.ContainsFunc(registered, func(m Migration) bool { return m.Version == version }) {
			unknown = append(unknown, fmt.Sprintf("%06d", version))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return fmt.Errorf(
		"migration_logs contains unknown versions not present in code: %s",
		strings.Join(unknown, ", "),
	)
}

// MigrationState pairs a registered migration with whether it has run.
type MigrationState struct {
	Migration Migration
	Applied   bool
}

// Status reports every registered migration and whether it is applied.
func Status(ctx context.Context, db *gorm.DB) ([]MigrationState, error) {
	return statusOf(ctx, db, migrations)
}

func statusOf(ctx context.Context, db *gorm.DB, registered []Migration) ([]MigrationState, error) {
	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationState, 0, len(registered))
	for _, m := range registered {
		out = append(out, MigrationState{Migration: m, Applied: slices.Contains(applied, m.Version)})
	}
	return out, nil
}

// RollbackMigration reverts a specific applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return rollback(ctx, db, migrations, version)
}

func rollback(ctx context.Context, db *gorm.DB, registered []Migration, version int) error {
	idx := slices.IndexFunc(registered, func(m Migration) bool { return m.Version == version })
	if idx < 0 {
		return fmt.Errorf("migration version %d not found", version)
	}
	m := registered[idx]

	return withMigrationLock(ctx, db, func(conn *gorm.DB) error {
		store := NewMigrationStore(conn)
		applied, err := store.GetAppliedMigrations(ctx)
		if err != nil {
			return err
		}
		if !slices.Contains(applied, version) {
			return fmt.Errorf("migration %d has not been applied", version)
		}
		if err := store.RevertMigration(ctx, version, m.DownScript); err != nil {
			return err
		}
		middleware.Logger.InfoContext(ctx, "Migration rolled back", slog.String("migration", m.String()))
		return nil
	})
}
