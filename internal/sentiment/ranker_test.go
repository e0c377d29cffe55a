package sentiment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/sudipbhatta12/political-app-sub000/internal/models"
)

func TestEngagementScore(t *testing.T) {
	tests := []struct {
		name                   string
		likes, replies, shares int
		expected               int
	}{
		{name: "Likes only", likes: 10, expected: 10},
		{name: "Replies count double", replies: 5, expected: 10},
		{name: "Shares count triple", shares: 5, expected: 15},
		{name: "Combined", likes: 1, replies: 2, shares: 3, expected: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EngagementScore(tt.likes, tt.replies, tt.shares))
		})
	}
}

func TestRankPopular_SharesOutrankLikes(t *testing.T) {
	comments := []models.PopularComment{
		{Content: "liked a lot", Likes: 10},
		{Content: "shared widely", Shares: 5},
	}

	ranked := RankPopular(comments)

	assert.Len(t, ranked, 2)
	assert.Equal(t, "shared widely", ranked[0].Content)
	assert.Equal(t, 15, ranked[0].EngagementScore)
	assert.Equal(t, "liked a lot", ranked[1].Content)
	assert.Equal(t, 10, ranked[1].EngagementScore)
}

func TestRankPopular_CapsAtTen(t *testing.T) {
	var comments []models.PopularComment
	for i := 0; i < 25; i++ {
		comments = append(comments, models.PopularComment{
			Content: fmt.Sprintf("comment %d", i),
			Likes:   i,
		})
	}

	ranked := RankPopular(comments)

	assert.Len(t, ranked, MaxPopularComments)
	// Highest-liked comment comes first
	assert.Equal(t, "comment 24", ranked[0].Content)
}

func TestRankPopular_TiesKeepOriginalOrder(t *testing.T) {
	comments := []models.PopularComment{
		{Content: "first", Likes: 3},
		{Content: "second", Likes: 3},
		{Content: "third", Likes: 3},
	}

	ranked := RankPopular(comments)

	assert.Equal(t, "first", ranked[0].Content)
	assert.Equal(t, "second", ranked[1].Content)
	assert.Equal(t, "third", ranked[2].Content)
}

func TestRankPopular_EmptyInput(t *testing.T) {
	assert.Empty(t, RankPopular(nil))
}

func TestRankPopular_DoesNotModifyInput(t *testing.T) {
	comments := []models.PopularComment{
		{Content: "a", Likes: 1},
		{Content: "b", Likes: 9},
	}

	RankPopular(comments)

	assert.Equal(t, "a", comments[0].Content)
	assert.Zero(t, comments[0].EngagementScore)
}
