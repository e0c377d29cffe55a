package store

import (
	"context"
	"errors"
	"time"

	"github.com/sudipbhatta12/political-app-sub000/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// PostStore defines the contract for post persistence
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id int64) error
	PostsByDate(ctx context.Context, date time.Time) ([]models.Post, error)
	PostsBySource(ctx context.Context, sourceType models.SourceType, sourceID int64) ([]models.Post, error)
	// FindBySourceURL returns the prior post a source stored for the given
	// URL, or ErrNotFound. A source is identified by (source_type, source_id);
	// ids from different registries can collide and must never match each
	// other's posts.
	FindBySourceURL(ctx context.Context, sourceType models.SourceType, sourceID int64, postURL string) (*models.Post, error)
}

// ReportStore defines the contract for daily report persistence
type ReportStore interface {
	// UpsertReport writes the report row and replaces its summary children
	// atomically, keyed on the report date. The report's ID is filled in.
	UpsertReport(ctx context.Context, report *models.DailyReport) error
	ReportByDate(ctx context.Context, date time.Time) (*models.DailyReport, error)
	// ReportHistory returns recent reports, newest first, summary fields
	// only (no children).
	ReportHistory(ctx context.Context, limit int) ([]models.DailyReport, error)
}

// Directory resolves tracked sources against their registries.
type Directory interface {
	// SourceName resolves a source id to its display name.
	SourceName(ctx context.Context, sourceType models.SourceType, sourceID int64) (string, error)
	// CandidateParty resolves a candidate to the party it runs under.
	CandidateParty(ctx context.Context, candidateID int64) (string, error)
}
