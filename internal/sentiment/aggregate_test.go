package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sudipbhatta12/political-app-sub000/internal/models"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name     string
		posts    []models.Post
		expected Stats
	}{
		{
			name:     "Empty input yields zeros",
			posts:    nil,
			expected: Stats{},
		},
		{
			name: "No comments falls back to arithmetic mean",
			posts: []models.Post{
				{PositivePct: 80, NegativePct: 10, NeutralPct: 10, CommentCount: 0},
				{PositivePct: 20, NegativePct: 70, NeutralPct: 10, CommentCount: 0},
			},
			expected: Stats{
				AvgPositive:   50,
				AvgNegative:   40,
				AvgNeutral:    10,
				TotalComments: 0,
				PostCount:     2,
			},
		},
		{
			name: "Comment volume dominates the weighted average",
			posts: []models.Post{
				{PositivePct: 80, NegativePct: 10, NeutralPct: 10, CommentCount: 100},
				{PositivePct: 20, NegativePct: 70, NeutralPct: 10, CommentCount: 900},
			},
			expected: Stats{
				AvgPositive:   26, // (80*100 + 20*900) / 1000
				AvgNegative:   64,
				AvgNeutral:    10,
				TotalComments: 1000,
				PostCount:     2,
			},
		},
		{
			name: "Single post passes through",
			posts: []models.Post{
				{PositivePct: 55, NegativePct: 25, NeutralPct: 20, CommentCount: 42},
			},
			expected: Stats{
				AvgPositive:   55,
				AvgNegative:   25,
				AvgNeutral:    20,
				TotalComments: 42,
				PostCount:     1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Aggregate(tt.posts)

			assert.InDelta(t, tt.expected.AvgPositive, result.AvgPositive, 1e-9)
			assert.InDelta(t, tt.expected.AvgNegative, result.AvgNegative, 1e-9)
			assert.InDelta(t, tt.expected.AvgNeutral, result.AvgNeutral, 1e-9)
			assert.Equal(t, tt.expected.TotalComments, result.TotalComments)
			assert.Equal(t, tt.expected.PostCount, result.PostCount)
		})
	}
}

func TestAggregate_ZeroCommentPostDoesNotDistortWeighted(t *testing.T) {
	// A post with no comments contributes nothing once any post has volume.
	posts := []models.Post{
		{PositivePct: 100, NegativePct: 0, NeutralPct: 0, CommentCount: 0},
		{PositivePct: 10, NegativePct: 80, NeutralPct: 10, CommentCount: 50},
	}

	result := Aggregate(posts)

	assert.InDelta(t, 10.0, result.AvgPositive, 1e-9)
	assert.InDelta(t, 80.0, result.AvgNegative, 1e-9)
	assert.Equal(t, 50, result.TotalComments)
	assert.Equal(t, 2, result.PostCount)
}
