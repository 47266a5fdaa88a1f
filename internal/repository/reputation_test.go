package repository

import (
	"context"
	"testing"
	"time"

	"circle/internal/models"
	"circle/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReputationRepository_TotalTracksLedger(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewReputationRepository(db)
	ctx := context.Background()
	user := testutil.CreateProfile(t, db, "earner")
	base := time.Now().UTC()

	deltas := []int64{10, 1, -1, 5, -3}
	var want int64
	for i, points := range deltas {
		want += points
		total, err := repo.Award(ctx, &models.ReputationEntry{
			UserID:    user.ID,
			Points:    points,
			Reason:    "test",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
		assert.Equal(t, want, total)
	}

	var profile models.Profile
	require.NoError(t, db.First(&profile, "id = ?", user.ID).Error)
	assert.Equal(t, want, profile.ReputationPoints)

	total, err := repo.Total(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, want, total)

	history, err := repo.History(ctx, user.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, history, len(deltas))
	assert.Equal(t, int64(-3), history[0].Points, "newest first")
	assert.Equal(t, int64(10), history[len(history)-1].Points)
}

func TestReputationRepository_UnknownProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewReputationRepository(db)

	_, err := repo.Award(context.Background(), &models.ReputationEntry{UserID: uuid.New(), Points: 3, Reason: "ghost"})
	assert.True(t, models.IsCode(err, models.CodeNotFound), "got %v", err)

	var count int64
	require.NoError(t, db.Model(&models.ReputationEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestReputationRepository_TotalWithoutEntries(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewReputationRepository(db)

	total, err := repo.Total(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, total)
}
