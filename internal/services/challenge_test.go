package services

import (
	"sync"
	"testing"
	"time"

	"recyclehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTodayProgress_CreatesSeededRecord(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)
	h.challenge(t, "three", "3", 15)

	day, err := h.Repositories.Progress.GetDay(h.ctx, nil, "alice", "2026-05-04")
	require.NoError(t, err)
	require.Nil(t, day)

	progress, err := h.Challenges.GetTodayProgress(h.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "2026-05-04", progress.Date)
	assert.Equal(t, 0, progress.Streak)
	require.Len(t, progress.Challenges, 2)
	for _, c := range progress.Challenges {
		assert.Zero(t, c.Current)
		assert.False(t, c.Completed)
		assert.False(t, c.Claimed)
	}

	day, err = h.Repositories.Progress.GetDay(h.ctx, nil, "alice", "2026-05-04")
	require.NoError(t, err)
	require.NotNil(t, day, "the record is persisted before returning")
	assert.Len(t, day.Challenges, 2)
	assert.Equal(t, &models.ChallengeProgress{}, day.Challenges["once"])
}

func TestGetTodayProgress_MergesChallengesAddedLater(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)

	_, err := h.Challenges.GetTodayProgress(h.ctx, "alice")
	require.NoError(t, err)

	h.challenge(t, "later", "2", 10)
	progress, err := h.Challenges.GetTodayProgress(h.ctx, "alice")
	require.NoError(t, err)
	require.Len(t, progress.Challenges, 2)
	assert.Equal(t, "later", progress.Challenges[1].ID)
	assert.Zero(t, progress.Challenges[1].Current)
}

func TestGetTodayProgress_RequiresUser(t *testing.T) {
	h := newHarness(t)
	_, err := h.Challenges.GetTodayProgress(h.ctx, "")
	assert.True(t, IsErrorType(err, ErrorTypeUnauthorized))
}

func TestCalculateStreak(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)

	// nothing yesterday
	streak, err := h.Challenges.CalculateStreak(h.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, streak)

	// complete and claim everything today: streak 0 -> 1
	h.submitAndApprove(t, "alice", 1)
	res, err := h.Challenges.ClaimBonus(h.ctx, "alice", "once", 5)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)

	progress, err := h.Challenges.GetTodayProgress(h.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Streak)

	// next day carries it
	h.clock.Advance(24 * time.Hour)
	streak, err = h.Challenges.CalculateStreak(h.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	progress, err = h.Challenges.GetTodayProgress(h.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "2026-05-05", progress.Date)
	assert.Equal(t, 1, progress.Streak)

	// an incomplete day breaks it
	h.clock.Advance(24 * time.Hour)
	streak, err = h.Challenges.CalculateStreak(h.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestRecordRecycle_CompletionIsMonotonic(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)
	h.challenge(t, "three", "3 bottles", 15)

	read := func() map[string]*ChallengeStatus {
		progress, err := h.Challenges.GetTodayProgress(h.ctx, "alice")
		require.NoError(t, err)
		out := make(map[string]*ChallengeStatus)
		for _, c := range progress.Challenges {
			out[c.ID] = c
		}
		return out
	}

	h.submitAndApprove(t, "alice", 1)
	got := read()
	assert.True(t, got["once"].Completed)
	assert.Equal(t, 1, got["three"].Current)
	assert.False(t, got["three"].Completed)

	h.submitAndApprove(t, "alice", 1)
	h.submitAndApprove(t, "alice", 1)
	got = read()
	assert.True(t, got["three"].Completed)
	assert.Equal(t, 3, got["three"].Current)

	res, err := h.Challenges.ClaimBonus(h.ctx, "alice", "once", 0)
	require.NoError(t, err)
	require.True(t, res.Success)

	for i := 0; i < 3; i++ {
		h.submitAndApprove(t, "alice", 1)
		got = read()
		assert.True(t, got["once"].Completed, "completed must never revert")
		assert.True(t, got["once"].Claimed, "claimed must never revert")
		assert.Equal(t, 1, got["once"].Current, "completed challenges stop counting")
		assert.True(t, got["three"].Completed)
	}
}

func TestRecordRecycle_UsesSubmissionDay(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)

	id, err := h.Submissions.CreateSubmission(h.ctx, &CreateSubmissionRequest{
		UserID: "alice", Points: 3, ImageURL: "https://cdn.example.com/a.jpg",
	})
	require.NoError(t, err)

	// reviewed the next day
	h.clock.Advance(24 * time.Hour)
	_, err = h.Approvals.Approve(h.ctx, "admin", id)
	require.NoError(t, err)

	day, err := h.Repositories.Progress.GetDay(h.ctx, nil, "alice", "2026-05-04")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.True(t, day.Challenges["once"].Completed)

	today, err := h.Repositories.Progress.GetDay(h.ctx, nil, "alice", "2026-05-05")
	require.NoError(t, err)
	assert.Nil(t, today)
}

func TestClaimBonus_Preconditions(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)
	h.challenge(t, "three", "3", 15)

	_, err := h.Challenges.ClaimBonus(h.ctx, "", "once", 5)
	assert.True(t, IsErrorType(err, ErrorTypeUnauthorized), "got %v", err)

	res, err := h.Challenges.ClaimBonus(h.ctx, "alice", "once", 5)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrorTypeNotFound, res.Code)

	_, err = h.Challenges.GetTodayProgress(h.ctx, "alice")
	require.NoError(t, err)

	res, err = h.Challenges.ClaimBonus(h.ctx, "alice", "unknown", 5)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrorTypeNotFound, res.Code)

	res, err = h.Challenges.ClaimBonus(h.ctx, "alice", "once", 5)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrorTypeInvalidState, res.Code)
	assert.Contains(t, res.Message, "not yet completed")

	assert.Equal(t, int64(0), h.balance(t, "alice").CurrentPoints)
}

func TestClaimBonus_ExactlyOnce(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)
	h.challenge(t, "three", "3", 15)

	h.submitAndApprove(t, "alice", 10)

	// the catalog bonus wins over the caller's figure
	res, err := h.Challenges.ClaimBonus(h.ctx, "alice", "once", 999)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "+5 bonus points!", res.Message)
	assert.Equal(t, int64(15), h.balance(t, "alice").CurrentPoints)

	res, err = h.Challenges.ClaimBonus(h.ctx, "alice", "once", 5)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrorTypeInvalidState, res.Code)
	assert.Contains(t, res.Message, "already claimed")
	assert.Equal(t, int64(15), h.balance(t, "alice").CurrentPoints)

	// "three" is still open, so the day is not complete
	progress, err := h.Challenges.GetTodayProgress(h.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, progress.Streak)

	history, err := h.Submissions.ListUserHistory(h.ctx, "alice", 10)
	require.NoError(t, err)
	var bonuses int
	for _, e := range history {
		if e.Action == models.ActionBonus {
			bonuses++
			assert.Equal(t, models.StatusApproved, e.CurrentStatus())
		}
	}
	assert.Equal(t, 1, bonuses)
}

func TestClaimBonus_StreakCreditedOncePerDay(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)
	h.challenge(t, "two", "2", 10)

	h.submitAndApprove(t, "alice", 1)
	h.submitAndApprove(t, "alice", 1)

	for _, id := range []string{"once", "two"} {
		res, err := h.Challenges.ClaimBonus(h.ctx, "alice", id, 0)
		require.NoError(t, err)
		require.True(t, res.Success, res.Message)
	}

	progress, err := h.Challenges.GetTodayProgress(h.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Streak)
	assert.Equal(t, int64(2+5+10), h.balance(t, "alice").CurrentPoints)
}

func TestClaimBonus_CatalogAmountIsAuthoritative(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "zero", "1", 0)

	h.submitAndApprove(t, "alice", 10)

	res, err := h.Challenges.ClaimBonus(h.ctx, "alice", "zero", 1000000)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "+0 bonus points!", res.Message)
	assert.Equal(t, int64(0), res.Data.(map[string]interface{})["bonus"])
	assert.Equal(t, int64(10), h.balance(t, "alice").CurrentPoints)

	res, err = h.Challenges.ClaimBonus(h.ctx, "alice", "zero", 1000000)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, int64(10), h.balance(t, "alice").CurrentPoints)
}

func TestClaimBonus_UnknownChallengeNeverPays(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "once", "1", 5)
	h.submitAndApprove(t, "alice", 10)

	res, err := h.Challenges.ClaimBonus(h.ctx, "alice", "ghost", 500)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, ErrorTypeNotFound, res.Code)
	assert.Equal(t, "challenge not found", res.Message)
	assert.Equal(t, int64(10), h.balance(t, "alice").CurrentPoints)
}

func TestRecordRecycle_ConcurrentApprovalsKeepEveryIncrement(t *testing.T) {
	h := newHarness(t)
	h.challenge(t, "ten", "10", 50)

	const n = 6
	ids := make([]string, n)
	var total int64
	for i := range ids {
		points := int64(i + 1)
		total += points
		id, err := h.Submissions.CreateSubmission(h.ctx, &CreateSubmissionRequest{
			UserID: "alice", Points: points, ImageURL: "https://cdn.example.com/a.jpg",
		})
		require.NoError(t, err)
		ids[i] = id
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = h.Approvals.Approve(h.ctx, "admin", id)
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	day, err := h.Repositories.Progress.GetDay(h.ctx, nil, "alice", "2026-05-04")
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, n, day.Challenges["ten"].Current)
	assert.False(t, day.Challenges["ten"].Completed)

	balance := h.balance(t, "alice")
	assert.Equal(t, total, balance.CurrentPoints)
	assert.Equal(t, int64(n), balance.TotalRecycled)
}
