package tag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wardenbot/warden/internal/tag"
)

func TestRatio(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 1.0, tag.Ratio("rules", "rules"), 0.001)
	assert.InDelta(t, 0.0, tag.Ratio("abc", "xyz"), 0.001)
	assert.Greater(t, tag.Ratio("rule", "rules"), 0.8)
}

func TestCloseMatches(t *testing.T) {
	t.Parallel()

	names := []string{"rules", "welcome", "faq", "ruler", "roles"}

	tests := []struct {
		name string
		word string
		want []string
	}{
		{
			name: "near miss finds close names",
			word: "rule",
			want: []string{"rules", "ruler", "roles"},
		},
		{
			name: "exact string ranks first",
			word: "rules",
			want: []string{"rules", "ruler", "roles"},
		},
		{
			name: "nothing close",
			word: "zzzzzz",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tag.CloseMatches(tt.word, names, tag.MaxCandidates, tag.SimilarityCutoff)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCloseMatchesLimit(t *testing.T) {
	t.Parallel()

	names := []string{"tag1", "tag2", "tag3", "tag4"}

	got := tag.CloseMatches("tag", names, 2, 0.5)
	assert.Len(t, got, 2)
}

func TestCloseMatchesCutoff(t *testing.T) {
	t.Parallel()

	// "faq" vs "far" shares 2 of 3 characters; a strict cutoff drops it
	assert.NotEmpty(t, tag.CloseMatches("far", []string{"faq"}, 5, 0.5))
	assert.Empty(t, tag.CloseMatches("far", []string{"faq"}, 5, 0.9))
}
