package sentiment

import (
	"github.com/sudipbhatta12/political-app-sub000/internal/models"
)

// Stats is the aggregate view over a set of posts.
type Stats struct {
	AvgPositive   float64 `json:"avg_positive"`
	AvgNegative   float64 `json:"avg_negative"`
	AvgNeutral    float64 `json:"avg_neutral"`
	TotalComments int     `json:"total_comments"`
	PostCount     int     `json:"post_count"`
}

// Aggregate rolls a set of sentiment-scored posts into average percentages.
//
// Averages are weighted by comment volume: a post discussed by 10,000 people
// carries proportionally more weight than one discussed by 5. When none of
// the posts have comments, a plain arithmetic mean is used instead, which
// also keeps the division safe.
//
// This is the single aggregation implementation; entity cards, comparison
// views and daily reports must all go through it.
func Aggregate(posts []models.Post) Stats {
	if len(posts) == 0 {
		return Stats{}
	}

	totalComments := 0
	for _, p := range posts {
		totalComments += p.CommentCount
	}

	stats := Stats{
		TotalComments: totalComments,
		PostCount:     len(posts),
	}

	if totalComments == 0 {
		n := float64(len(posts))
		for _, p := range posts {
			stats.AvgPositive += p.PositivePct / n
			stats.AvgNegative += p.NegativePct / n
			stats.AvgNeutral += p.NeutralPct / n
		}
		return stats
	}

	total := float64(totalComments)
	for _, p := range posts {
		w := float64(p.CommentCount) / total
		stats.AvgPositive += p.PositivePct * w
		stats.AvgNegative += p.NegativePct * w
		stats.AvgNeutral += p.NeutralPct * w
	}
	return stats
}
