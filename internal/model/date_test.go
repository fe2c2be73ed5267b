package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate("2024-03-15")
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-15", date.String())
	assert.Equal(t, "2024-03", date.MonthKey())

	_, err = ParseDate("15/03/2024")
	assert.Error(t, err)

	_, err = ParseDate("2024-13-01")
	assert.Error(t, err)
}

func TestDate_JSONRoundTrip(t *testing.T) {
	date := NewDate(2024, time.March, 15)

	encoded, err := json.Marshal(date)
	assert.NoError(t, err)
	assert.Equal(t, `"2024-03-15"`, string(encoded))

	var decoded Date
	assert.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.True(t, decoded.Equal(date.Time))

	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &decoded))
}

func TestDate_Scan(t *testing.T) {
	var d Date

	assert.NoError(t, d.Scan(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-15", d.String())

	assert.NoError(t, d.Scan([]byte("2023-12-01")))
	assert.Equal(t, "2023-12-01", d.String())

	assert.Error(t, d.Scan(42))
}
