package biztime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMillisRoundTrip(t *testing.T) {
	now := NowUTC()
	assert.True(t, now.Equal(FromMillis(ToMillis(now))))
	assert.Equal(t, time.UTC, FromMillis(ToMillis(now)).Location())

	assert.Equal(t, int64(0), ToMillis(time.Time{}))
	assert.True(t, FromMillis(0).IsZero())
}

func TestMillisPtr(t *testing.T) {
	assert.Nil(t, ToMillisPtr(nil))
	assert.Nil(t, FromMillisPtr(nil))

	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got := FromMillisPtr(ToMillisPtr(&ts))
	if assert.NotNil(t, got) {
		assert.True(t, ts.Equal(*got))
	}
}
