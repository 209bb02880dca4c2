package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_AddMonthsClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		n     int
		want  Date
	}{
		{"plain", NewDate(2024, time.March, 15), 1, NewDate(2024, time.April, 15)},
		{"jan 31 to leap feb", NewDate(2024, time.January, 31), 1, NewDate(2024, time.February, 29)},
		{"jan 31 to common feb", NewDate(2023, time.January, 31), 1, NewDate(2023, time.February, 28)},
		{"jan 31 plus quarter", NewDate(2024, time.January, 31), 3, NewDate(2024, time.April, 30)},
		{"year rollover", NewDate(2024, time.November, 30), 3, NewDate(2025, time.February, 28)},
		{"december to january", NewDate(2024, time.December, 31), 1, NewDate(2025, time.January, 31)},
		{"negative", NewDate(2024, time.March, 31), -1, NewDate(2024, time.February, 29)},
		{"negative across year", NewDate(2024, time.January, 15), -2, NewDate(2023, time.November, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.AddMonths(tt.n))
		})
	}
}

func TestDate_AddYearsLeapDay(t *testing.T) {
	assert.Equal(t, NewDate(2025, time.February, 28), NewDate(2024, time.February, 29).AddYears(1))
	assert.Equal(t, NewDate(2028, time.February, 29), NewDate(2024, time.February, 29).AddYears(4))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.February, 29), d)

	// The calendar day of the timestamp's own offset is kept.
	d, err = ParseDate("2024-03-01T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.March, 1), d)

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
	_, err = ParseDate("next tuesday")
	assert.Error(t, err)
}

func TestDate_JSON(t *testing.T) {
	data, err := json.Marshal(NewDate(2024, time.July, 4))
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-07-04"`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-01-09"`), &d))
	assert.Equal(t, NewDate(2025, time.January, 9), d)

	assert.Error(t, json.Unmarshal([]byte(`20250109`), &d))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, time.May, 6), d)

	require.NoError(t, d.Scan([]byte("2024-05-07")))
	assert.Equal(t, NewDate(2024, time.May, 7), d)

	assert.Error(t, d.Scan(nil))
	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, time.May, 8).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-08", v)
}

func TestDate_InMonth(t *testing.T) {
	d := NewDate(2024, time.February, 29)
	assert.True(t, d.InMonth(2024, time.February))
	assert.False(t, d.InMonth(2024, time.March))
	assert.False(t, d.InMonth(2023, time.February))
}
