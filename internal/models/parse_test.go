package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"3", 3},
		{"5 items", 5},
		{"recycle 10 times, then 20", 10},
		{"", 1},
		{"many", 1},
		{"0", 1},
		{"007", 7},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTarget(tt.raw))
		})
	}
}

func TestDateKeys(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 02:00 local on the 2nd is still the 1st in UTC
	assert.Equal(t, "2026-03-01", DateKey(time.Date(2026, 3, 2, 2, 0, 0, 0, loc)))

	prev, err := PreviousDateKey("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-28", prev)

	_, err = PreviousDateKey("yesterday")
	assert.Error(t, err)
}

func TestGenerateVoucherCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateVoucherCode()
		require.NoError(t, err)
		assert.True(t, IsVoucherCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)

	assert.False(t, IsVoucherCode("VOUCHER-abc123"))
	assert.False(t, IsVoucherCode("COUPON-ABC123"))
}

func TestDailyProgress_AllCompleted(t *testing.T) {
	day := &DailyProgress{Challenges: map[string]*ChallengeProgress{}}
	assert.True(t, day.AllCompleted())

	day.Challenges["a"] = &ChallengeProgress{Current: 1, Completed: true}
	day.Challenges["b"] = &ChallengeProgress{Current: 2}
	assert.False(t, day.AllCompleted())

	day.Challenges["b"].Completed = true
	assert.True(t, day.AllCompleted())
}
