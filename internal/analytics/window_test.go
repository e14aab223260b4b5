package analytics

import (
	"testing"
	"time"

	"campus_desk_backend/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday.
var reportNow = time.Date(2024, 5, 15, 14, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestResolveWindow_Presets(t *testing.T) {
	tests := []struct {
		r     Range
		from  time.Time
		label string
	}{
		{RangeWeek, day(2024, 5, 12), "This Week"},
		{RangeMonth, day(2024, 5, 1), "This Month"},
		{RangeYear, day(2024, 1, 1), "This Year"},
	}
	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			w, err := ResolveWindow(tt.r, nil, nil, reportNow)
			require.NoError(t, err)
			require.NotNil(t, w.From)
			assert.Equal(t, tt.from, *w.From)
			assert.Equal(t, day(2024, 5, 16), *w.Until)
			assert.Equal(t, tt.label, w.Label)
			assert.True(t, w.Contains(reportNow.Add(9*time.Hour)), "end of today is inside")
			assert.False(t, w.Contains(tt.from.Add(-time.Second)))
		})
	}
}

func TestResolveWindow_All(t *testing.T) {
	w, err := ResolveWindow(RangeAll, nil, nil, reportNow)
	require.NoError(t, err)
	assert.Nil(t, w.From)
	assert.Nil(t, w.Until)
	assert.True(t, w.Contains(time.Time{}))
}

func TestResolveWindow_Custom(t *testing.T) {
	from, to := day(2024, 3, 1), day(2024, 3, 31)
	w, err := ResolveWindow(RangeCustom, &from, &to, reportNow)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01 to 2024-03-31", w.Label)
	assert.True(t, w.Contains(time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(day(2024, 4, 1)))

	_, err = ResolveWindow(RangeCustom, &from, nil, reportNow)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = ResolveWindow(RangeCustom, &to, &from, reportNow)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange(" Month ")
	require.NoError(t, err)
	assert.Equal(t, RangeMonth, r)
	r, err = ParseRange("")
	require.NoError(t, err)
	assert.Equal(t, RangeAll, r)
	_, err = ParseRange("decade")
	assert.Error(t, err)
}
