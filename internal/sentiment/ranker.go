package sentiment

import (
	"sort"

	"github.com/sudipbhatta12/political-app-sub000/internal/models"
)

// MaxPopularComments caps how many ranked comments a post keeps.
const MaxPopularComments = 10

// EngagementScore weighs replies and shares above a passive like, since
// they represent deeper engagement with the content.
func EngagementScore(likes, replies, shares int) int {
	return likes + 2*replies + 3*shares
}

// RankPopular scores the given comments and returns the top entries by
// engagement, capped at MaxPopularComments. The sort is stable, so tied
// scores keep their original order. The input slice is not modified.
func RankPopular(comments []models.PopularComment) []models.PopularComment {
	if len(comments) == 0 {
		return nil
	}

	ranked := make([]models.PopularComment, len(comments))
	copy(ranked, comments)
	for i := range ranked {
		ranked[i].EngagementScore = EngagementScore(ranked[i].Likes, ranked[i].Replies, ranked[i].Shares)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].EngagementScore > ranked[j].EngagementScore
	})

	if len(ranked) > MaxPopularComments {
		ranked = ranked[:MaxPopularComments]
	}
	return ranked
}
