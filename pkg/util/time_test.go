package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"30", 30 * time.Second, false},
		{"1h30m", 90 * time.Minute, false},
		{" 800ms ", 800 * time.Millisecond, false},
		{"xd", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDurationOr(t *testing.T) {
	assert.Equal(t, time.Minute, DurationOr("", time.Minute))
	assert.Equal(t, time.Minute, DurationOr("bogus", time.Minute))
	assert.Equal(t, time.Minute, DurationOr("-5s", time.Minute))
	assert.Equal(t, 2*time.Hour, DurationOr("2h", time.Minute))
}

func TestBackoff(t *testing.T) {
	base, max := 200*time.Millisecond, 5*time.Second
	assert.Equal(t, 200*time.Millisecond, Backoff(base, max, 0))
	assert.Equal(t, 400*time.Millisecond, Backoff(base, max, 1))
	assert.Equal(t, 1600*time.Millisecond, Backoff(base, max, 3))
	assert.Equal(t, max, Backoff(base, max, 10))
	assert.Equal(t, time.Duration(0), Backoff(0, max, 3))
}
