package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sudipbhatta12/political-app-sub000/internal/models"
	"github.com/sudipbhatta12/political-app-sub000/internal/sentiment"
)

// overallLabel classifies the day's sentiment balance. A positive/negative
// gap inside the margin reads as mixed (or neutral, when neutral chatter
// outweighs both camps); a gap beyond twice the margin reads as strong.
func overallLabel(stats sentiment.Stats, margin float64) string {
	diff := stats.AvgPositive - stats.AvgNegative

	switch {
	case diff > 2*margin:
		return "strongly positive"
	case diff > margin:
		return "predominantly positive"
	case diff < -2*margin:
		return "strongly negative"
	case diff < -margin:
		return "predominantly negative"
	case stats.AvgNeutral > stats.AvgPositive && stats.AvgNeutral > stats.AvgNegative:
		return "largely neutral"
	default:
		return "mixed"
	}
}

// Ties below are broken alphabetically by source name, so the synthesized
// text is deterministic regardless of input order.

func mostActive(summaries []models.ReportSourceSummary) *models.ReportSourceSummary {
	return pickSummary(summaries, func(a, b *models.ReportSourceSummary) bool {
		return a.PostCount > b.PostCount
	})
}

func mostPositive(summaries []models.ReportSourceSummary) *models.ReportSourceSummary {
	return pickSummary(summaries, func(a, b *models.ReportSourceSummary) bool {
		return a.AvgPositive > b.AvgPositive
	})
}

func mostNegative(summaries []models.ReportSourceSummary) *models.ReportSourceSummary {
	return pickSummary(summaries, func(a, b *models.ReportSourceSummary) bool {
		return a.AvgNegative > b.AvgNegative
	})
}

func pickSummary(summaries []models.ReportSourceSummary, better func(a, b *models.ReportSourceSummary) bool) *models.ReportSourceSummary {
	var best *models.ReportSourceSummary
	for i := range summaries {
		s := &summaries[i]
		switch {
		case best == nil:
			best = s
		case better(s, best):
			best = s
		case !better(best, s) && s.SourceName < best.SourceName:
			best = s
		}
	}
	return best
}

// algorithmicSummary synthesizes a narrative purely from computed numbers.
// It is the guaranteed fallback when the generative-text service fails, so
// it must always return non-empty text.
func algorithmicSummary(date time.Time, stats sentiment.Stats, summaries []models.ReportSourceSummary, margin float64) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "On %s, %d posts with %d comments were analyzed across %d sources. ",
		date.Format("January 2, 2006"), stats.PostCount, stats.TotalComments, len(summaries))
	fmt.Fprintf(&sb, "Overall sentiment was %s (%.1f%% positive, %.1f%% negative, %.1f%% neutral).",
		overallLabel(stats, margin), stats.AvgPositive, stats.AvgNegative, stats.AvgNeutral)

	if active := mostActive(summaries); active != nil {
		fmt.Fprintf(&sb, " %s drew the most discussion with %d posts and %d comments.",
			active.SourceName, active.PostCount, active.CommentCount)
	}

	positive := mostPositive(summaries)
	negative := mostNegative(summaries)
	if positive != nil && negative != nil && positive.SourceName != negative.SourceName {
		fmt.Fprintf(&sb, " %s received the most favorable coverage (%.1f%% positive), while %s saw the most criticism (%.1f%% negative).",
			positive.SourceName, positive.AvgPositive, negative.SourceName, negative.AvgNegative)
	}

	return sb.String()
}
