package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStartsOnMonday(t *testing.T) {
	start := time.Date(2024, 5, 27, 15, 30, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		now := start.AddDate(0, 0, i)
		w := Compute(now, EnUS)

		require.Equal(t, time.Monday, w[0].Date.Weekday(), "now=%s", now)
		assert.False(t, w[0].Date.After(now), "monday after now for %s", now)
		assert.True(t, now.Sub(w[0].Date) < 7*24*time.Hour)
		for j := 1; j < 7; j++ {
			assert.Equal(t, w[j-1].Date.AddDate(0, 0, 1), w[j].Date)
		}
		h, m, s := w[0].Date.Clock()
		assert.Zero(t, h+m+s)
	}
}

func TestComputeSundayBelongsToPreviousWeek(t *testing.T) {
	sunday := time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)
	w := Compute(sunday, PtBR)

	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), w.Start())
	assert.Equal(t, "Segunda", w[0].DisplayKey)
	assert.Equal(t, "Domingo", w[6].Name)
	assert.Equal(t, "09/06", w[6].ShortDate)
}

func TestComputeKeepsLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	now := time.Date(2024, 6, 5, 23, 30, 0, 0, loc)
	w := Compute(now, EnUS)

	assert.Equal(t, loc, w.Location())
	assert.Equal(t, "06/03", w[0].ShortDate)
}

func TestFind(t *testing.T) {
	w := Compute(time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC), EnUS)

	day, ok := w.Find(time.Date(2024, 6, 7, 18, 45, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, "Friday", day.DisplayKey)

	_, ok = w.Find(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	day, ok = w.ByKey("Sunday")
	require.True(t, ok)
	assert.Equal(t, 9, day.Date.Day())
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en-US"},
		{"en-GB", "en-US"},
		{"pt", "pt-BR"},
		{"pt-PT", "pt-BR"},
		{"fr", "pt-BR"},
		{"", "pt-BR"},
		{"!!", "pt-BR"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLocale(tt.in).String())
		})
	}
}

func TestDayKeyRoundTrip(t *testing.T) {
	d := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "01/07/2024", PtBR.DayKey(d))
	assert.Equal(t, "07/01/2024", EnUS.DayKey(d))

	back, err := EnUS.ParseDayKey("07/01/2024", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, d, back)

	_, err = PtBR.ParseDayKey("31/02/2024", time.UTC)
	assert.Error(t, err)
}
