package presence

import (
	"context"
	"testing"
	"time"

	"github.com/frahmantamala/hrms/internal/core/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLastSeen(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC))
	m := NewMemory(5*time.Minute, clk)

	require.NoError(t, m.Touch(ctx, 1))
	clk.Advance(3 * time.Minute)
	require.NoError(t, m.Touch(ctx, 2))
	clk.Advance(3 * time.Minute)

	seen, err := m.LastSeen(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	assert.NotContains(t, seen, int64(1), "expired after ttl")
	assert.Equal(t, time.Date(2026, 1, 12, 9, 3, 0, 0, time.UTC), seen[2])
	assert.NotContains(t, seen, int64(3))
}

func TestParseUnix(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		ok   bool
	}{
		{"missing key", nil, false},
		{"unix seconds", "1768208400", true},
		{"garbage", "yesterday", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseUnix(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, int64(1768208400), got.Unix())
			}
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "hrms:presence:42", Key(42))
}
