package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysUntil(t *testing.T) {
	today := date(2026, 1, 1)
	assert.Equal(t, 0, DaysUntil(date(2026, 1, 1), today))
	assert.Equal(t, 1, DaysUntil(date(2026, 1, 2), today))
	assert.Equal(t, -1, DaysUntil(date(2025, 12, 31), today))
	assert.Equal(t, 365, DaysUntil(date(2027, 1, 1), today))
}

func TestDaysUntilIgnoresTimeOfDayAndZone(t *testing.T) {
	lateToday := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)
	plus10 := time.FixedZone("plus10", 10*3600)
	// 2026-01-02 06:00 at +10 is 2026-01-01 20:00 UTC.
	expiry := time.Date(2026, 1, 2, 6, 0, 0, 0, plus10)
	assert.Equal(t, 0, DaysUntil(expiry, lateToday))
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{-1, StatusExpired},
		{-400, StatusExpired},
		{0, StatusExpiringSoon},
		{30, StatusExpiringSoon},
		{31, StatusValid},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.days, DefaultThresholdDays), "days=%d", tc.days)
	}
}

func TestClassifyCustomThreshold(t *testing.T) {
	assert.Equal(t, StatusExpiringSoon, Classify(60, 60))
	assert.Equal(t, StatusValid, Classify(1, 0))
}

func TestExpiryStatus(t *testing.T) {
	today := date(2026, 1, 1)
	assert.Equal(t, "", ExpiryStatus(nil, today, 30))
	past := date(2025, 12, 31)
	assert.Equal(t, StatusExpired, ExpiryStatus(&past, today, 30))
	assert.Nil(t, DaysLeft(nil, today))
	assert.Equal(t, -1, *DaysLeft(&past, today))
}

func TestPolicy(t *testing.T) {
	p := Policy{ThresholdDays: -5, Now: func() time.Time { return time.Date(2026, 4, 2, 17, 30, 0, 0, time.UTC) }}
	assert.Equal(t, date(2026, 4, 2), p.Today())
	assert.Equal(t, DefaultThresholdDays, p.Threshold())
	assert.Equal(t, 10, NewPolicy(10).Threshold())
}
