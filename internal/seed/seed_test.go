package seed

import (
	"context"
	"testing"

	"circle/internal/models"
	"circle/internal/rewards"
	"circle/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_RunKeepsLedgersConsistent(t *testing.T) {
	db := testutil.NewTestDB(t)
	seeder := NewSeeder(db, rewards.Points{Submission: 10, Vote: 1})

	sum, err := seeder.Run(context.Background(), Options{Users: 8, Communities: 3, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 8, sum.Users)
	assert.Equal(t, 3, sum.Communities)
	assert.Equal(t, 9, sum.Challenges)

	var badges int64
	require.NoError(t, db.Model(&models.Badge{}).Count(&badges).Error)
	assert.Positive(t, badges)

	var communities []models.Community
	require.NoError(t, db.Find(&communities).Error)
	require.Len(t, communities, 3)
	for _, c := range communities {
		var members int64
		require.NoError(t, db.Model(&models.Membership{}).Where("community_id = ?", c.ID).Count(&members).Error)
		assert.Equal(t, members, c.MemberCount, c.Slug)
	}

	var profiles []models.Profile
	require.NoError(t, db.Find(&profiles).Error)
	for _, p := range profiles {
		var ledger int64
		require.NoError(t, db.Model(&models.ReputationEntry{}).
			Where("user_id = ?", p.ID).
			Select("COALESCE(SUM(points), 0)").
			Scan(&ledger).Error)
		assert.Equal(t, ledger, p.ReputationPoints, p.Username)
	}

	var subs, votes int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&subs).Error)
	require.NoError(t, db.Model(&models.Vote{}).Count(&votes).Error)
	assert.Equal(t, int64(sum.Submissions), subs)
	assert.Equal(t, int64(sum.Votes), votes)
}

func TestSeeder_NoUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	sum, err := NewSeeder(db, rewards.Points{}).Run(context.Background(), Options{Communities: 2, Seed: 1})
	require.NoError(t, err)
	assert.Zero(t, sum.Communities)
}
