package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sudipbhatta12/political-app-sub000/internal/models"
	"github.com/sudipbhatta12/political-app-sub000/internal/sentiment"
	"github.com/sudipbhatta12/political-app-sub000/internal/store"
)

// percentSumTolerance is how far the classifier's percentages may drift
// from 100 before the request is rejected.
const percentSumTolerance = 1.0

// RawComment is one scraped comment handed to the analysis pipeline.
// Engagement fields are pointers so that unstructured blobs (plain text
// with no counters) can be told apart from genuine zero counts.
type RawComment struct {
	Content string `json:"content"`
	Likes   *int   `json:"likes,omitempty"`
	Replies *int   `json:"replies,omitempty"`
	Shares  *int   `json:"shares,omitempty"`
}

func (c RawComment) structured() bool {
	return c.Likes != nil || c.Replies != nil || c.Shares != nil
}

// AnalyzeRequest describes one analysis run for a source.
type AnalyzeRequest struct {
	SourceType    models.SourceType `json:"source_type"`
	SourceID      int64             `json:"source_id"`
	PostURL       string            `json:"post_url,omitempty"`
	PublishedDate time.Time         `json:"published_date,omitempty"`
	Force         bool              `json:"force,omitempty"`
	Comments      []RawComment      `json:"comments"`
}

// Service runs the analysis pipeline: duplicate guard, classification,
// popular-comment ranking and persistence.
type Service struct {
	posts      store.PostStore
	classifier Classifier
}

// NewService creates a new analysis service
func NewService(posts store.PostStore, classifier Classifier) *Service {
	return &Service{posts: posts, classifier: classifier}
}

// AnalyzeAndStore classifies the comments and persists the resulting post.
// When the source already has a post for the same URL it fails with a
// DuplicateSourceError unless Force is set, in which case the prior post
// (and its comments) is replaced. Forced re-analysis is a replacement, not
// a revision: nothing of the old measurement survives. The superseded post
// is deleted only after the new classification has validated, so a failed
// re-analysis leaves the prior measurement in place.
func (s *Service) AnalyzeAndStore(ctx context.Context, req AnalyzeRequest) (*models.Post, error) {
	if s.classifier == nil {
		return nil, errors.New("no classification service configured")
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	existing, err := s.findPrior(ctx, req.SourceType, req.SourceID, req.PostURL)
	if err != nil {
		return nil, err
	}
	if existing != nil && !req.Force {
		return nil, &DuplicateSourceError{
			ExistingPostID: existing.ID,
			ExistingDate:   existing.PublishedDate,
		}
	}

	texts := make([]string, len(req.Comments))
	for i, c := range req.Comments {
		texts[i] = c.Content
	}

	result, err := s.classifier.Classify(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to classify comments: %w", err)
	}
	if err := validateClassification(result); err != nil {
		return nil, err
	}

	if existing != nil {
		if err := s.posts.DeletePost(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete superseded post %d: %w", existing.ID, err)
		}
		logrus.Infof("Overwrote post %d for %s %d (forced re-analysis of %s)",
			existing.ID, req.SourceType, req.SourceID, req.PostURL)
	}

	post := &models.Post{
		SourceType:      req.SourceType,
		SourceID:        req.SourceID,
		PostURL:         req.PostURL,
		PublishedDate:   req.PublishedDate,
		PositivePct:     result.PositivePct,
		NegativePct:     result.NegativePct,
		NeutralPct:      result.NeutralPct,
		CommentCount:    len(req.Comments),
		PositiveRemarks: result.PositiveRemarks,
		NegativeRemarks: result.NegativeRemarks,
		NeutralRemarks:  result.NeutralRemarks,
		Conclusion:      result.Conclusion,
		PopularComments: rankIfStructured(req.Comments),
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to store post: %w", err)
	}

	logrus.Infof("Stored analyzed post %d for %s %d (%d comments)",
		post.ID, post.SourceType, post.SourceID, post.CommentCount)
	return post, nil
}

// findPrior looks up the source's prior measurement for the same URL.
// Posts without a URL are never checked, which deliberately lets a source
// accumulate an unbounded timeline of file-only analyses.
func (s *Service) findPrior(ctx context.Context, sourceType models.SourceType, sourceID int64, postURL string) (*models.Post, error) {
	if postURL == "" {
		return nil, nil
	}

	existing, err := s.posts.FindBySourceURL(ctx, sourceType, sourceID, postURL)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	return existing, nil
}

// rankIfStructured ranks popular comments only when engagement counters
// are present; unstructured blobs yield an empty popular list.
func rankIfStructured(comments []RawComment) []models.PopularComment {
	structured := false
	for _, c := range comments {
		if c.structured() {
			structured = true
			break
		}
	}
	if !structured {
		return nil
	}

	candidates := make([]models.PopularComment, 0, len(comments))
	for _, c := range comments {
		candidates = append(candidates, models.PopularComment{
			Content: c.Content,
			Likes:   intValue(c.Likes),
			Replies: intValue(c.Replies),
			Shares:  intValue(c.Shares),
		})
	}
	return sentiment.RankPopular(candidates)
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func validateRequest(req *AnalyzeRequest) error {
	if _, err := models.ParseSourceType(req.SourceType.String()); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	if req.SourceID <= 0 {
		return &ValidationError{Reason: "source_id is required"}
	}
	if len(req.Comments) == 0 {
		return &ValidationError{Reason: "at least one comment is required"}
	}
	if req.PublishedDate.IsZero() {
		req.PublishedDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	return nil
}

func validateClassification(c *Classification) error {
	sum := c.PositivePct + c.NegativePct + c.NeutralPct
	if math.Abs(sum-100) > percentSumTolerance {
		return &ValidationError{
			Reason: fmt.Sprintf("sentiment percentages sum to %.2f, expected ~100", sum),
		}
	}
	return nil
}
