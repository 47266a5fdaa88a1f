package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"circle/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestMembershipRepository_IsMemberStorageFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMembershipRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "community_memberships"`)).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := repo.IsMember(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeStorage, appErr.Code)
	assert.True(t, appErr.Retryable())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "votes"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Vote{SubmissionID: uuid.New(), UserID: uuid.New()})
	assert.True(t, models.IsCode(err, models.CodeAlreadyVoted), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVoteRepository_InsertFailureIsRetryable(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewVoteRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "votes"`)).
		WillReturnError(errors.New("i/o timeout"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Vote{SubmissionID: uuid.New(), UserID: uuid.New()})
	assert.True(t, models.IsCode(err, models.CodeStorage), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_JoinLocksCommunityRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMembershipRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","slug" FROM "communities" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := repo.Join(context.Background(), uuid.New(), uuid.New())
	assert.True(t, models.IsCode(err, models.CodeStorage), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_LeaveLocksCommunityRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMembershipRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","slug" FROM "communities" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := repo.Leave(context.Background(), uuid.New(), uuid.New())
	assert.True(t, models.IsCode(err, models.CodeStorage), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReputationRepository_AwardLocksProfileRow(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewReputationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id" FROM "profiles" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := repo.Award(context.Background(), &models.ReputationEntry{
		UserID: uuid.New(), Points: 10, Reason: "submission_created",
	})
	assert.True(t, models.IsCode(err, models.CodeStorage), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
