package levels_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardenbot/warden/internal/levels"
)

func TestThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level int64
		want  int64
	}{
		{name: "level zero", level: 0, want: 100},
		{name: "level one", level: 1, want: 155},
		{name: "level ten", level: 10, want: 1100},
		{name: "level twenty", level: 20, want: 3100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, levels.Threshold(tt.level))
		})
	}
}

func TestThresholdStrictlyIncreases(t *testing.T) {
	t.Parallel()

	for level := int64(0); level < 200; level++ {
		assert.Less(t, levels.Threshold(level), levels.Threshold(level+1))
	}
}

func TestAdvance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		level     int64
		xp        int64
		gained    int64
		wantLevel int64
		wantXP    int64
	}{
		{
			name:      "below first threshold",
			gained:    99,
			wantLevel: 0,
			wantXP:    99,
		},
		{
			name:      "exactly first threshold",
			gained:    100,
			wantLevel: 1,
			wantXP:    0,
		},
		{
			name:      "carries remainder over",
			gained:    120,
			wantLevel: 1,
			wantXP:    20,
		},
		{
			name:      "multiple levels in one grant",
			gained:    100 + 155 + 10,
			wantLevel: 2,
			wantXP:    10,
		},
		{
			name:      "resumes from stored state",
			level:     1,
			xp:        150,
			gained:    5,
			wantLevel: 2,
			wantXP:    0,
		},
		{
			name:      "zero gain is a no-op",
			level:     3,
			xp:        42,
			wantLevel: 3,
			wantXP:    42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			level, xp := levels.Advance(tt.level, tt.xp, tt.gained)
			assert.Equal(t, tt.wantLevel, level)
			assert.Equal(t, tt.wantXP, xp)
		})
	}
}

func TestToNext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(100), levels.ToNext(0, 0))
	assert.Equal(t, int64(1), levels.ToNext(0, 99))
	assert.Equal(t, int64(155), levels.ToNext(1, 0))
}
