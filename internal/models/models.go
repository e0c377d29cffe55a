package models

import (
	"fmt"
	"time"
)

// SourceType identifies which registry a tracked source belongs to.
// It is a closed set; code switching on it should handle every constant
// and reject anything else.
type SourceType string

const (
	SourceCandidate SourceType = "candidate"
	SourceParty     SourceType = "political_party"
	SourceNewsMedia SourceType = "news_media"
)

// ParseSourceType converts a wire/database value into a SourceType.
func ParseSourceType(s string) (SourceType, error) {
	switch SourceType(s) {
	case SourceCandidate, SourceParty, SourceNewsMedia:
		return SourceType(s), nil
	}
	return "", fmt.Errorf("unknown source type %q", s)
}

func (s SourceType) String() string { return string(s) }

// SummarySource records whether a report narrative came from the
// generative-text service or from the deterministic fallback.
type SummarySource string

const (
	SummaryAI          SummarySource = "ai"
	SummaryAlgorithmic SummarySource = "algorithmic"
)

// Sentiment labels for user-entered comment annotations.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// PopularComment is one ranked entry of a post's popular-comments list.
type PopularComment struct {
	Content         string `json:"content"`
	Likes           int    `json:"likes"`
	Replies         int    `json:"replies"`
	Shares          int    `json:"shares"`
	EngagementScore int    `json:"engagement_score"`
}

// Post is one sentiment-scored unit of analyzed content attributable to
// exactly one source. The percentages are produced by the external
// classification service and should sum to ~100.
type Post struct {
	ID              int64            `json:"id"`
	SourceType      SourceType       `json:"source_type"`
	SourceID        int64            `json:"source_id"`
	PostURL         string           `json:"post_url,omitempty"` // empty when no canonical URL exists
	PublishedDate   time.Time        `json:"published_date"`
	PositivePct     float64          `json:"positive_pct"`
	NegativePct     float64          `json:"negative_pct"`
	NeutralPct      float64          `json:"neutral_pct"`
	CommentCount    int              `json:"comment_count"`
	PositiveRemarks string           `json:"positive_remarks,omitempty"`
	NegativeRemarks string           `json:"negative_remarks,omitempty"`
	NeutralRemarks  string           `json:"neutral_remarks,omitempty"`
	Conclusion      string           `json:"conclusion,omitempty"`
	PopularComments []PopularComment `json:"popular_comments,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Comment is a user-entered annotation on a post, independent of the
// AI-derived remarks fields.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Content   string    `json:"content"`
	Sentiment string    `json:"sentiment"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyReport is the persisted snapshot for one calendar date. Exactly one
// row exists per date; regeneration replaces its numbers and children.
type DailyReport struct {
	ID                    int64                 `json:"id"`
	ReportDate            time.Time             `json:"report_date"`
	TotalPostsAnalyzed    int                   `json:"total_posts_analyzed"`
	TotalCommentsAnalyzed int                   `json:"total_comments_analyzed"`
	TotalSources          int                   `json:"total_sources"`
	OverallPositive       float64               `json:"overall_positive"`
	OverallNegative       float64               `json:"overall_negative"`
	OverallNeutral        float64               `json:"overall_neutral"`
	SummaryText           string                `json:"summary_text"`
	SummarySource         SummarySource         `json:"summary_source"`
	GeneratedAt           time.Time             `json:"generated_at"`
	Summaries             []ReportSourceSummary `json:"summaries,omitempty"`
}

// ReportSourceSummary is a report's per-group aggregate, owned by exactly
// one DailyReport. Candidate posts are bucketed by party, so a candidate
// summary's SourceID is zero and its name reads "<Party> Candidates".
type ReportSourceSummary struct {
	ID              int64      `json:"id"`
	ReportID        int64      `json:"report_id"`
	SourceType      SourceType `json:"source_type"`
	SourceID        int64      `json:"source_id"`
	SourceName      string     `json:"source_name"`
	PostCount       int        `json:"post_count"`
	CommentCount    int        `json:"comment_count"`
	EngagementCount int        `json:"engagement_count"`
	AvgPositive     float64    `json:"avg_positive"`
	AvgNegative     float64    `json:"avg_negative"`
	AvgNeutral      float64    `json:"avg_neutral"`
}
