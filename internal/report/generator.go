package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sudipbhatta12/political-app-sub000/internal/models"
	"github.com/sudipbhatta12/political-app-sub000/internal/sentiment"
	"github.com/sudipbhatta12/political-app-sub000/internal/store"
)

// topSummaryCount limits how many groups feed the narrative prompt.
const topSummaryCount = 5

// NoDataError reports that a date has nothing to aggregate. No partial
// state is persisted in that case.
type NoDataError struct {
	Date time.Time
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no posts found for %s", e.Date.Format("2006-01-02"))
}

// Notifier delivers a generated report to configured channels.
type Notifier interface {
	SendReport(report *models.DailyReport) error
}

// Archiver stores a snapshot of a generated report.
type Archiver interface {
	Store(filename string, data []byte) error
}

// Generator builds and persists the daily report for a calendar date.
type Generator struct {
	posts     store.PostStore
	reports   store.ReportStore
	directory store.Directory
	narrator  Narrator // nil when no generative-text service is configured
	margin    float64

	// Optional post-generation hooks; failures are logged, never fatal.
	Notifier Notifier
	Archiver Archiver
}

// NewGenerator creates a new report generator
func NewGenerator(posts store.PostStore, reports store.ReportStore, directory store.Directory, narrator Narrator, margin float64) *Generator {
	return &Generator{
		posts:     posts,
		reports:   reports,
		directory: directory,
		narrator:  narrator,
		margin:    margin,
	}
}

// Generate computes and persists the report for the given date, replacing
// any prior run for that date. Regeneration over unchanged posts yields the
// same numbers and the same set of summary rows. Returns NoDataError when
// the date has no posts; narrative-service failures never surface, only
// datastore failures do.
func (g *Generator) Generate(ctx context.Context, date time.Time) (*models.DailyReport, error) {
	day := date.UTC().Truncate(24 * time.Hour)
	logrus.Infof("Generating daily report for %s", day.Format("2006-01-02"))

	posts, err := g.posts.PostsByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to collect posts: %w", err)
	}
	if len(posts) == 0 {
		return nil, &NoDataError{Date: day}
	}

	overall := sentiment.Aggregate(posts)
	summaries := GroupSummaries(ctx, posts, g.directory)

	narrative := g.summarize(ctx, NarrativeInput{
		Date:         day,
		Overall:      overall,
		TotalSources: len(summaries),
		TopSummaries: topSummaries(summaries),
	}, summaries)

	report := &models.DailyReport{
		ReportDate:            day,
		TotalPostsAnalyzed:    overall.PostCount,
		TotalCommentsAnalyzed: overall.TotalComments,
		TotalSources:          len(summaries),
		OverallPositive:       overall.AvgPositive,
		OverallNegative:       overall.AvgNegative,
		OverallNeutral:        overall.AvgNeutral,
		SummaryText:           narrative.Text,
		SummarySource:         narrative.Source,
		GeneratedAt:           time.Now().UTC(),
		Summaries:             summaries,
	}

	if err := g.reports.UpsertReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist daily report: %w", err)
	}

	logrus.Infof("Daily report for %s persisted (%d posts, %d sources, summary via %s)",
		day.Format("2006-01-02"), report.TotalPostsAnalyzed, report.TotalSources, report.SummarySource)

	g.deliver(report)
	return report, nil
}

// summarize requests the AI narrative and falls back to the algorithmic
// one on any failure. The result is tagged with its origin.
func (g *Generator) summarize(ctx context.Context, input NarrativeInput, summaries []models.ReportSourceSummary) Narrative {
	if g.narrator != nil {
		text, err := g.narrator.Summarize(ctx, input)
		if err == nil {
			return Narrative{Text: text, Source: models.SummaryAI}
		}
		logrus.Warnf("Narrative service failed, using algorithmic summary: %v", err)
	}

	return Narrative{
		Text:   algorithmicSummary(input.Date, input.Overall, summaries, g.margin),
		Source: models.SummaryAlgorithmic,
	}
}

// deliver pushes the report to the optional notification and archive
// hooks. Both are best effort.
func (g *Generator) deliver(report *models.DailyReport) {
	if g.Notifier != nil {
		if err := g.Notifier.SendReport(report); err != nil {
			logrus.Errorf("Failed to send report notification: %v", err)
		}
	}

	if g.Archiver != nil {
		data, err := json.Marshal(report)
		if err != nil {
			logrus.Errorf("Failed to encode report snapshot: %v", err)
			return
		}
		filename := fmt.Sprintf("reports/%s.json", report.ReportDate.Format("2006-01-02"))
		if err := g.Archiver.Store(filename, data); err != nil {
			logrus.Errorf("Failed to archive report snapshot: %v", err)
		}
	}
}

func topSummaries(summaries []models.ReportSourceSummary) []models.ReportSourceSummary {
	// Summaries arrive sorted by activity already.
	if len(summaries) > topSummaryCount {
		return summaries[:topSummaryCount]
	}
	return summaries
}
