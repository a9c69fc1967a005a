package repositories

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"recyclehub/internal/config"
	"recyclehub/internal/database"
	"recyclehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollection(t *testing.T) *Collection {
	t.Helper()

	db, err := database.NewManager(&config.DatabaseConfig{
		Driver: "sqlite3",
		URL:    filepath.Join(t.TempDir(), "ledger.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	repos, err := NewCollection(db, zap.NewNop())
	require.NoError(t, err)
	return repos
}

var t0 = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func TestUserRepository_EnsureAndApplyDelta(t *testing.T) {
	repos := newTestCollection(t)
	ctx := context.Background()

	user, err := repos.User.GetByID(ctx, nil, "alice")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, repos.User.EnsureExists(ctx, nil, "alice", t0))
	require.NoError(t, repos.User.EnsureExists(ctx, nil, "alice", t0.Add(time.Hour)))

	ok, err := repos.User.ApplyDelta(ctx, nil, "alice", 10, 1, t0)
	require.NoError(t, err)
	assert.True(t, ok)

	// guard refuses to go below zero
	ok, err = repos.User.ApplyDelta(ctx, nil, "alice", -11, 0, t0)
	require.NoError(t, err)
	assert.False(t, ok)

	user, err = repos.User.GetByID(ctx, nil, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(10), user.CurrentPoints)
	assert.Equal(t, int64(1), user.TotalRecycled)
	assert.Equal(t, models.DefaultRank, user.Rank)
	assert.True(t, user.CreatedAt.Equal(t0))

	ok, err = repos.User.ApplyDelta(ctx, nil, "nobody", 5, 0, t0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistoryRepository_SubmissionLifecycle(t *testing.T) {
	repos := newTestCollection(t)
	ctx := context.Background()

	older := &models.HistoryEntry{
		UserID: "alice", Action: models.ActionRecycle, Title: "Recycle", Points: 10,
		ImageURL: models.StringPtr("https://cdn.example.com/1.jpg"), Status: models.StatusPtr(models.StatusPending),
		CreatedAt: t0,
	}
	newer := &models.HistoryEntry{
		UserID: "alice", Action: models.ActionRecycle, Title: "Recycle", Points: 5,
		ImageURL: models.StringPtr("https://cdn.example.com/2.jpg"), Status: models.StatusPtr(models.StatusPending),
		CreatedAt: t0.Add(time.Minute),
	}
	require.NoError(t, repos.History.Create(ctx, nil, older))
	require.NoError(t, repos.History.Create(ctx, nil, newer))
	assert.NotEmpty(t, older.ID)

	ok, err := repos.History.Transition(ctx, nil, newer.ID, models.StatusPending, models.StatusApproved, "admin-1", nil, t0.Add(2*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	// terminal: a second transition matches nothing
	ok, err = repos.History.Transition(ctx, nil, newer.ID, models.StatusPending, models.StatusRejected, "admin-1", nil, t0)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repos.History.GetByID(ctx, nil, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.CurrentStatus())
	require.NotNil(t, got.ReviewedAt)
	assert.Equal(t, "admin-1", *got.ReviewedBy)

	// pending first, then newest first
	list, err := repos.History.ListSubmissions(ctx, nil, SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID)
	assert.Equal(t, newer.ID, list[1].ID)

	pending := models.StatusPending
	list, err = repos.History.ListSubmissions(ctx, nil, SubmissionFilter{Status: &pending})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	missing, err := repos.History.GetByID(ctx, nil, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHistoryRepository_ListByUserNewestFirst(t *testing.T) {
	repos := newTestCollection(t)
	ctx := context.Background()

	for i, action := range []models.HistoryAction{models.ActionRecycle, models.ActionBonus, models.ActionRedeem} {
		entry := &models.HistoryEntry{UserID: "bob", Action: action, Points: int64(i + 1), CreatedAt: t0.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repos.History.Create(ctx, nil, entry))
	}
	require.NoError(t, repos.History.Create(ctx, nil, &models.HistoryEntry{UserID: "carol", Action: models.ActionAdmin, Points: 1}))

	list, err := repos.History.ListByUser(ctx, nil, "bob", 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, models.ActionRedeem, list[0].Action)
	assert.Equal(t, models.ActionRecycle, list[2].Action)
	assert.Nil(t, list[1].Status)
}

func TestChallengeRepository_ParsesTargetAtBoundary(t *testing.T) {
	repos := newTestCollection(t)
	ctx := context.Background()

	c := &models.Challenge{Title: "Recycle 3 times", TargetCount: 3, BonusPoints: 15, IsActive: true}
	require.NoError(t, repos.Challenge.Create(ctx, nil, c))

	// stored loosely by an older admin surface
	_, err := repos.DB().DB().Exec(`UPDATE challenges SET target_count = '5 items' WHERE id = ?`, c.ID)
	require.NoError(t, err)

	got, err := repos.Challenge.GetByID(ctx, nil, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TargetCount)
	assert.Equal(t, models.ChallengeRecycleCount, got.Type)

	inactive := &models.Challenge{ID: "streak", Title: "Streak", Type: models.ChallengeStreak, TargetCount: 1}
	require.NoError(t, repos.Challenge.Upsert(ctx, nil, inactive))

	active, err := repos.Challenge.ListActive(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	ok, err := repos.Challenge.SetActive(ctx, nil, "streak", true, t0)
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := repos.Challenge.ListActive(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProgressRepository_DayRoundTripAndMonotonicFlags(t *testing.T) {
	repos := newTestCollection(t)
	ctx := context.Background()

	day := &models.DailyProgress{
		UserID: "alice", Date: "2026-05-04", Streak: 2,
		Challenges: map[string]*models.ChallengeProgress{"c1": {}, "c2": {}},
	}
	created, err := repos.Progress.CreateDay(ctx, nil, day)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Progress.CreateDay(ctx, nil, &models.DailyProgress{UserID: "alice", Date: "2026-05-04"})
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, repos.Progress.SaveEntry(ctx, nil, "alice", "2026-05-04", "c1",
		&models.ChallengeProgress{Current: 1, Completed: true}, t0))
	// a stale writer cannot clear completed
	require.NoError(t, repos.Progress.SaveEntry(ctx, nil, "alice", "2026-05-04", "c1",
		&models.ChallengeProgress{Current: 1}, t0))

	got, err := repos.Progress.GetDay(ctx, nil, "alice", "2026-05-04")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Streak)
	assert.Len(t, got.Challenges, 2)
	assert.True(t, got.Challenges["c1"].Completed)
	assert.False(t, got.Challenges["c2"].Completed)

	require.NoError(t, repos.Progress.SaveStreak(ctx, nil, "alice", "2026-05-04", 3, true, t0))
	got, err = repos.Progress.LockDay(ctx, nil, "alice", "2026-05-04")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Streak)
	assert.True(t, got.StreakCredited)

	none, err := repos.Progress.GetDay(ctx, nil, "alice", "2026-05-03")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRewardRepository_StockNeverNegative(t *testing.T) {
	repos := newTestCollection(t)
	ctx := context.Background()

	reward := &models.Reward{Name: "Tote bag", Points: 20, Stock: 1, IsActive: true}
	require.NoError(t, repos.Reward.Create(ctx, nil, reward))

	ok, err := repos.Reward.AdjustStock(ctx, nil, reward.ID, -1, t0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Reward.AdjustStock(ctx, nil, reward.ID, -1, t0)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repos.Reward.GetForUpdate(ctx, nil, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.Stock)

	reward.Name = "Canvas tote"
	reward.Stock = 99
	ok, err = repos.Reward.Update(ctx, nil, reward)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repos.Reward.GetByID(ctx, nil, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, "Canvas tote", got.Name)
	assert.Equal(t, int64(0), got.Stock)
}

func TestRedemptionRepository_StatusAndExpiry(t *testing.T) {
	repos := newTestCollection(t)
	ctx := context.Background()
	require.NoError(t, repos.User.EnsureExists(ctx, nil, "alice", t0))

	expired := &models.Redemption{UserID: "alice", RewardID: "r1", RewardName: "Tote", PointsUsed: 20,
		Code: "VOUCHER-AAAAAA", ExpiresAt: t0.Add(-time.Hour), CreatedAt: t0.Add(-31 * 24 * time.Hour)}
	fresh := &models.Redemption{UserID: "alice", RewardID: "r1", RewardName: "Tote", PointsUsed: 20,
		Code: "VOUCHER-BBBBBB", ExpiresAt: t0.Add(30 * 24 * time.Hour), CreatedAt: t0}
	require.NoError(t, repos.Redemption.Create(ctx, nil, expired))
	require.NoError(t, repos.Redemption.Create(ctx, nil, fresh))

	dup := &models.Redemption{UserID: "alice", RewardID: "r1", RewardName: "Tote", Code: "VOUCHER-BBBBBB", ExpiresAt: t0}
	assert.Error(t, repos.Redemption.Create(ctx, nil, dup))

	exists, err := repos.Redemption.CodeExists(ctx, nil, "VOUCHER-AAAAAA")
	require.NoError(t, err)
	assert.True(t, exists)

	n, err := repos.Redemption.ExpireBefore(ctx, nil, t0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ok, err := repos.Redemption.SetStatus(ctx, nil, fresh.ID, models.RedemptionUnused, models.RedemptionUsed, t0)
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := repos.Redemption.ListByUser(ctx, nil, "alice", 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, fresh.ID, list[0].ID)
	assert.Equal(t, models.RedemptionUsed, list[0].Status)
	require.NotNil(t, list[0].UsedAt)
	assert.Equal(t, models.RedemptionExpired, list[1].Status)

	count, err := repos.Redemption.CountByReward(ctx, nil, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
