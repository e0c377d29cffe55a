package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/sudipbhatta12/political-app-sub000/internal/models"
)

// Postgres implements PostStore, ReportStore and Directory on a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Compile-time interface checks
var (
	_ PostStore   = (*Postgres)(nil)
	_ ReportStore = (*Postgres)(nil)
	_ Directory   = (*Postgres)(nil)
)

// NewPostgres connects to the database and verifies the connection.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Connected to PostgreSQL")
	return &Postgres{pool: pool}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

const postColumns = `id, source_type, source_id, COALESCE(post_url, ''), published_date,
	positive_pct, negative_pct, neutral_pct, comment_count,
	positive_remarks, negative_remarks, neutral_remarks, conclusion,
	popular_comments, created_at`

func scanPost(row pgx.Row) (*models.Post, error) {
	var post models.Post
	var sourceType string
	var popular []byte

	err := row.Scan(&post.ID, &sourceType, &post.SourceID, &post.PostURL, &post.PublishedDate,
		&post.PositivePct, &post.NegativePct, &post.NeutralPct, &post.CommentCount,
		&post.PositiveRemarks, &post.NegativeRemarks, &post.NeutralRemarks, &post.Conclusion,
		&popular, &post.CreatedAt)
	if err != nil {
		return nil, err
	}

	post.SourceType, err = models.ParseSourceType(sourceType)
	if err != nil {
		return nil, err
	}
	if len(popular) > 0 {
		if err := json.Unmarshal(popular, &post.PopularComments); err != nil {
			return nil, fmt.Errorf("failed to decode popular comments: %w", err)
		}
	}
	return &post, nil
}

// CreatePost inserts a post and fills in its generated id and created_at.
func (p *Postgres) CreatePost(ctx context.Context, post *models.Post) error {
	popular, err := json.Marshal(post.PopularComments)
	if err != nil {
		return fmt.Errorf("failed to encode popular comments: %w", err)
	}
	if post.PopularComments == nil {
		popular = []byte("[]")
	}

	var postURL *string
	if post.PostURL != "" {
		postURL = &post.PostURL
	}

	err = p.pool.QueryRow(ctx, `
		INSERT INTO posts (source_type, source_id, post_url, published_date,
			positive_pct, negative_pct, neutral_pct, comment_count,
			positive_remarks, negative_remarks, neutral_remarks, conclusion, popular_comments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`,
		post.SourceType.String(), post.SourceID, postURL, post.PublishedDate,
		post.PositivePct, post.NegativePct, post.NeutralPct, post.CommentCount,
		post.PositiveRemarks, post.NegativeRemarks, post.NeutralRemarks, post.Conclusion, popular,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// DeletePost removes a post; its comments go with it via the FK cascade.
func (p *Postgres) DeletePost(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PostsByDate returns every post published on the given calendar date.
func (p *Postgres) PostsByDate(ctx context.Context, date time.Time) ([]models.Post, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+postColumns+` FROM posts WHERE published_date = $1 ORDER BY id`,
		date)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts by date: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

// PostsBySource returns a source's timeline, newest first.
func (p *Postgres) PostsBySource(ctx context.Context, sourceType models.SourceType, sourceID int64) ([]models.Post, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE source_type = $1 AND source_id = $2
		 ORDER BY published_date DESC, id DESC`,
		sourceType.String(), sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts by source: %w", err)
	}
	defer rows.Close()

	return collectPosts(rows)
}

func collectPosts(rows pgx.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

// FindBySourceURL looks up a source's prior measurement for the exact URL.
// The registries use independent id sequences, so the type is part of the
// predicate: candidate 7 and party 7 are different sources.
func (p *Postgres) FindBySourceURL(ctx context.Context, sourceType models.SourceType, sourceID int64, postURL string) (*models.Post, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+postColumns+` FROM posts
		 WHERE source_type = $1 AND source_id = $2 AND post_url = $3
		 ORDER BY id DESC LIMIT 1`,
		sourceType.String(), sourceID, postURL)

	post, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query post by url: %w", err)
	}
	return post, nil
}

// UpsertReport writes the report keyed on its date and replaces the summary
// children, all inside a single transaction. The unique constraint on
// report_date keeps concurrent generations for the same date from creating
// duplicate rows.
func (p *Postgres) UpsertReport(ctx context.Context, report *models.DailyReport) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin report transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO daily_reports (report_date, total_posts_analyzed, total_comments_analyzed,
			total_sources, overall_positive, overall_negative, overall_neutral,
			summary_text, summary_source, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (report_date) DO UPDATE SET
			total_posts_analyzed = EXCLUDED.total_posts_analyzed,
			total_comments_analyzed = EXCLUDED.total_comments_analyzed,
			total_sources = EXCLUDED.total_sources,
			overall_positive = EXCLUDED.overall_positive,
			overall_negative = EXCLUDED.overall_negative,
			overall_neutral = EXCLUDED.overall_neutral,
			summary_text = EXCLUDED.summary_text,
			summary_source = EXCLUDED.summary_source,
			generated_at = EXCLUDED.generated_at
		RETURNING id`,
		report.ReportDate, report.TotalPostsAnalyzed, report.TotalCommentsAnalyzed,
		report.TotalSources, report.OverallPositive, report.OverallNegative, report.OverallNeutral,
		report.SummaryText, string(report.SummarySource), report.GeneratedAt,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert daily report: %w", err)
	}

	// Children are replaced wholesale, never merged.
	if _, err := tx.Exec(ctx,
		`DELETE FROM report_source_summaries WHERE report_id = $1`, report.ID); err != nil {
		return fmt.Errorf("failed to clear report summaries: %w", err)
	}

	for i := range report.Summaries {
		s := &report.Summaries[i]
		s.ReportID = report.ID
		err := tx.QueryRow(ctx, `
			INSERT INTO report_source_summaries (report_id, source_type, source_id, source_name,
				post_count, comment_count, engagement_count, avg_positive, avg_negative, avg_neutral)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			s.ReportID, s.SourceType.String(), s.SourceID, s.SourceName,
			s.PostCount, s.CommentCount, s.EngagementCount, s.AvgPositive, s.AvgNegative, s.AvgNeutral,
		).Scan(&s.ID)
		if err != nil {
			return fmt.Errorf("failed to insert report summary: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit report transaction: %w", err)
	}
	return nil
}

// ReportByDate loads a report and its children, or ErrNotFound.
func (p *Postgres) ReportByDate(ctx context.Context, date time.Time) (*models.DailyReport, error) {
	report, err := p.scanReport(p.pool.QueryRow(ctx, `
		SELECT id, report_date, total_posts_analyzed, total_comments_analyzed, total_sources,
			overall_positive, overall_negative, overall_neutral,
			summary_text, summary_source, generated_at
		FROM daily_reports WHERE report_date = $1`, date))
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, report_id, source_type, source_id, source_name,
			post_count, comment_count, engagement_count, avg_positive, avg_negative, avg_neutral
		FROM report_source_summaries
		WHERE report_id = $1
		ORDER BY post_count DESC, source_name ASC`, report.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query report summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ReportSourceSummary
		var sourceType string
		if err := rows.Scan(&s.ID, &s.ReportID, &sourceType, &s.SourceID, &s.SourceName,
			&s.PostCount, &s.CommentCount, &s.EngagementCount,
			&s.AvgPositive, &s.AvgNegative, &s.AvgNeutral); err != nil {
			return nil, err
		}
		if s.SourceType, err = models.ParseSourceType(sourceType); err != nil {
			return nil, err
		}
		report.Summaries = append(report.Summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return report, nil
}

// ReportHistory returns recent reports without their children.
func (p *Postgres) ReportHistory(ctx context.Context, limit int) ([]models.DailyReport, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, report_date, total_posts_analyzed, total_comments_analyzed, total_sources,
			overall_positive, overall_negative, overall_neutral,
			summary_text, summary_source, generated_at
		FROM daily_reports
		ORDER BY report_date DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query report history: %w", err)
	}
	defer rows.Close()

	var reports []models.DailyReport
	for rows.Next() {
		report, err := p.scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func (p *Postgres) scanReport(row pgx.Row) (*models.DailyReport, error) {
	var report models.DailyReport
	var summarySource string

	err := row.Scan(&report.ID, &report.ReportDate,
		&report.TotalPostsAnalyzed, &report.TotalCommentsAnalyzed, &report.TotalSources,
		&report.OverallPositive, &report.OverallNegative, &report.OverallNeutral,
		&report.SummaryText, &summarySource, &report.GeneratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily report: %w", err)
	}

	report.SummarySource = models.SummarySource(summarySource)
	return &report, nil
}

// SourceName resolves a source id against its registry table.
func (p *Postgres) SourceName(ctx context.Context, sourceType models.SourceType, sourceID int64) (string, error) {
	var table string
	switch sourceType {
	case models.SourceCandidate:
		table = "candidates"
	case models.SourceParty:
		table = "political_parties"
	case models.SourceNewsMedia:
		table = "news_media"
	default:
		return "", fmt.Errorf("unknown source type %q", sourceType)
	}

	var name string
	err := p.pool.QueryRow(ctx, `SELECT name FROM `+table+` WHERE id = $1`, sourceID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve source name: %w", err)
	}
	return name, nil
}

// CandidateParty resolves the party a candidate runs under.
func (p *Postgres) CandidateParty(ctx context.Context, candidateID int64) (string, error) {
	var party string
	err := p.pool.QueryRow(ctx,
		`SELECT party_name FROM candidates WHERE id = $1`, candidateID).Scan(&party)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve candidate party: %w", err)
	}
	return party, nil
}
