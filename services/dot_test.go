package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotValid(t *testing.T) {
	assert.True(t, dotValid("2201"))
	assert.True(t, dotValid("0123"))
	assert.True(t, dotValid("5324"))

	assert.False(t, dotValid("5424"), "week 54 does not exist")
	assert.False(t, dotValid("0024"), "week 0 does not exist")
	assert.False(t, dotValid("22019"))
	assert.False(t, dotValid("221"))
	assert.False(t, dotValid("ab01"))
	assert.False(t, dotValid(""))
}

func TestDotManufactured(t *testing.T) {
	mfg, err := dotManufactured("0124")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, mfg.Weekday())
	assert.Equal(t, 2024, mfg.Year())

	// two-digit years at or above 70 read as 19xx
	old, err := dotManufactured("0195")
	require.NoError(t, err)
	assert.Equal(t, 1995, old.Year())
	assert.Equal(t, time.Date(1995, 1, 2, 0, 0, 0, 0, time.UTC), old)

	// 2021 opens on a Friday; week 1 still belongs to 2021
	fri, err := dotManufactured("0121")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC), fri)

	_, err = dotManufactured("9901")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestDotExpiry(t *testing.T) {
	exp, err := dotExpiry("0124", 60)
	require.NoError(t, err)
	mfg, _ := dotManufactured("0124")
	assert.Equal(t, mfg.AddDate(0, 60, 0), exp)

	none, err := dotExpiry("0124", 0)
	require.NoError(t, err)
	assert.True(t, none.IsZero(), "no shelf life means no derived expiry")
}

func TestDotSortKeyOrdersByYearThenWeek(t *testing.T) {
	assert.Less(t, dotSortKey("5222"), dotSortKey("0123"), "late 2022 before early 2023")
	assert.Less(t, dotSortKey("0123"), dotSortKey("0223"))
	assert.Less(t, dotSortKey("0195"), dotSortKey("0123"), "1995 before 2023")
	assert.Greater(t, dotSortKey("bad!"), dotSortKey("5399"), "invalid codes sort last")
}
