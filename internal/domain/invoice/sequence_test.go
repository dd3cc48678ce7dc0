package invoice

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func TestNextNumber_FirstOfDay(t *testing.T) {
	n, err := NextNumber(testDay, "")
	require.NoError(t, err)
	assert.Equal(t, "INV-20260901-001", n)
}

func TestNextNumber_Increments(t *testing.T) {
	n, err := NextNumber(testDay, "INV-20260901-041")
	require.NoError(t, err)
	assert.Equal(t, "INV-20260901-042", n)
}

func TestNextNumber_NewDayResets(t *testing.T) {
	// A new day has no numbers with its prefix, so the counter restarts.
	nextDay := testDay.AddDate(0, 0, 1)
	n, err := NextNumber(nextDay, "")
	require.NoError(t, err)
	assert.Equal(t, "INV-20260902-001", n)
}

func TestNextNumber_StrictlyIncreasing(t *testing.T) {
	last := ""
	var prev string
	for i := 0; i < 25; i++ {
		n, err := NextNumber(testDay, last)
		require.NoError(t, err)
		if prev != "" {
			assert.Greater(t, n, prev)
		}
		prev = n
		last = n
	}
	assert.Equal(t, "INV-20260901-025", prev)
}

func TestNextNumber_Exhausted(t *testing.T) {
	_, err := NextNumber(testDay, "INV-20260901-999")
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestNextNumber_Malformed(t *testing.T) {
	_, err := NextNumber(testDay, "INV-20260901-0xz")
	assert.Error(t, err)
}

func TestDayPrefix(t *testing.T) {
	assert.Equal(t, "INV-20260901-", DayPrefix(testDay))
	assert.Equal(t, fmt.Sprintf("INV-%s-", time.Now().Format("20060102")), DayPrefix(time.Now()))
}
