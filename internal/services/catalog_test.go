package services

import (
	"testing"

	"recyclehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_ActiveListsFollowWrites(t *testing.T) {
	h := newHarness(t)
	h.reward(t, "bottle", 20, 3)

	list, err := h.Catalog.ListRewards(h.ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// cached until a write drops it
	_, err = h.Catalog.CreateReward(h.ctx, &RewardInput{Name: "Tote bag", Points: 8, Stock: 10})
	require.NoError(t, err)
	list, err = h.Catalog.ListRewards(h.ctx, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, h.Catalog.SetRewardActive(h.ctx, "bottle", false))
	list, err = h.Catalog.ListRewards(h.ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Tote bag", list[0].Name)

	all, err := h.Catalog.ListRewards(h.ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalog_ChallengeTargetsAreParsed(t *testing.T) {
	h := newHarness(t)

	c, err := h.Catalog.CreateChallenge(h.ctx, &ChallengeInput{
		Title:       "Recycle 5 bottles",
		Target:      "5 bottles",
		BonusPoints: 30,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 5, c.TargetCount)
	assert.Equal(t, models.ChallengeRecycleCount, c.Type)
	assert.True(t, c.IsActive)

	off := false
	updated, err := h.Catalog.UpdateChallenge(h.ctx, c.ID, &ChallengeInput{
		Title:       "Recycle some bottles",
		Target:      "no digits",
		BonusPoints: 10,
		IsActive:    &off,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TargetCount)
	assert.False(t, updated.IsActive)

	active, err := h.Catalog.ListChallenges(h.ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, err = h.Catalog.UpdateChallenge(h.ctx, "missing", &ChallengeInput{Title: "x", Target: "1"})
	assert.True(t, IsNotFoundError(err))
	assert.True(t, IsNotFoundError(h.Catalog.SetChallengeActive(h.ctx, "missing", true)))

	_, err = h.Catalog.CreateChallenge(h.ctx, nil)
	assert.True(t, IsValidationError(err))
}

func TestCatalog_UpdateRewardKeepsStock(t *testing.T) {
	h := newHarness(t)
	h.reward(t, "bottle", 20, 7)

	updated, err := h.Catalog.UpdateReward(h.ctx, "bottle", &RewardInput{Name: "Steel bottle", Points: 25, Stock: 999})
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.Stock)
	assert.Equal(t, int64(7), h.stock(t, "bottle"))

	stored, err := h.Repositories.Reward.GetByID(h.ctx, nil, "bottle")
	require.NoError(t, err)
	assert.Equal(t, "Steel bottle", stored.Name)
	assert.Equal(t, int64(25), stored.Points)
}

func TestCatalog_Restock(t *testing.T) {
	h := newHarness(t)
	h.reward(t, "bottle", 20, 2)

	r, err := h.Catalog.Restock(h.ctx, "bottle", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(7), r.Stock)

	r, err = h.Catalog.Restock(h.ctx, "bottle", -7)
	require.NoError(t, err)
	assert.Zero(t, r.Stock)

	_, err = h.Catalog.Restock(h.ctx, "bottle", -1)
	require.True(t, IsBusinessError(err))
	assert.Zero(t, h.stock(t, "bottle"))

	_, err = h.Catalog.Restock(h.ctx, "bottle", 0)
	assert.True(t, IsValidationError(err))

	_, err = h.Catalog.Restock(h.ctx, "missing", 3)
	assert.True(t, IsNotFoundError(err))
}
