package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/sudipbhatta12/political-app-sub000/internal/models"
	"github.com/sudipbhatta12/political-app-sub000/internal/store"
)

// MockPostStore is a mock implementation of the post store
type MockPostStore struct {
	mock.Mock
}

func (m *MockPostStore) CreatePost(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	post.ID = 101
	return args.Error(0)
}

func (m *MockPostStore) DeletePost(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostStore) PostsByDate(ctx context.Context, date time.Time) ([]models.Post, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostStore) PostsBySource(ctx context.Context, sourceType models.SourceType, sourceID int64) ([]models.Post, error) {
	args := m.Called(ctx, sourceType, sourceID)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostStore) FindBySourceURL(ctx context.Context, sourceType models.SourceType, sourceID int64, postURL string) (*models.Post, error) {
	args := m.Called(ctx, sourceType, sourceID, postURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

// MockClassifier is a mock implementation of the external classifier
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, comments []string) (*Classification, error) {
	args := m.Called(ctx, comments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Classification), args.Error(1)
}

func intPtr(v int) *int { return &v }

func validClassification() *Classification {
	return &Classification{
		PositivePct: 60, NegativePct: 25, NeutralPct: 15,
		Conclusion: "mostly favorable",
	}
}

func TestAnalyzeAndStore_DuplicateBlocked(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	existingDate := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	posts.On("FindBySourceURL", mock.Anything, models.SourceParty, int64(7), "https://example.com/p/1").
		Return(&models.Post{ID: 42, PublishedDate: existingDate}, nil)

	post, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceParty,
		SourceID:   7,
		PostURL:    "https://example.com/p/1",
		Comments:   []RawComment{{Content: "hello"}},
	})

	assert.Nil(t, post)
	var dup *DuplicateSourceError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, int64(42), dup.ExistingPostID)
	assert.Equal(t, existingDate, dup.ExistingDate)

	// Nothing was classified or written
	classifier.AssertNotCalled(t, "Classify")
	posts.AssertNotCalled(t, "CreatePost")
	posts.AssertNotCalled(t, "DeletePost")
}

func TestAnalyzeAndStore_ForceOverwritesPrior(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	posts.On("FindBySourceURL", mock.Anything, models.SourceParty, int64(7), "https://example.com/p/1").
		Return(&models.Post{ID: 42}, nil)
	posts.On("DeletePost", mock.Anything, int64(42)).Return(nil)
	posts.On("CreatePost", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, []string{"hello"}).
		Return(validClassification(), nil)

	post, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceParty,
		SourceID:   7,
		PostURL:    "https://example.com/p/1",
		Force:      true,
		Comments:   []RawComment{{Content: "hello"}},
	})

	assert.NoError(t, err)
	assert.NotNil(t, post)
	assert.NotEqual(t, int64(42), post.ID)
	posts.AssertCalled(t, "DeletePost", mock.Anything, int64(42))
}

func TestAnalyzeAndStore_DuplicateScopedToSourceType(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	// Party 7 already analyzed this URL; candidate 7 is a different source
	// and only its own type is consulted.
	posts.On("FindBySourceURL", mock.Anything, models.SourceCandidate, int64(7), "https://example.com/p/1").
		Return(nil, store.ErrNotFound)
	posts.On("CreatePost", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(validClassification(), nil)

	post, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceCandidate,
		SourceID:   7,
		PostURL:    "https://example.com/p/1",
		Comments:   []RawComment{{Content: "hello"}},
	})

	assert.NoError(t, err)
	assert.NotNil(t, post)
	posts.AssertCalled(t, "FindBySourceURL", mock.Anything, models.SourceCandidate, int64(7), "https://example.com/p/1")
	posts.AssertNotCalled(t, "DeletePost")
}

func TestAnalyzeAndStore_ForceKeepsPriorWhenClassificationFails(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	posts.On("FindBySourceURL", mock.Anything, models.SourceParty, int64(7), "https://example.com/p/1").
		Return(&models.Post{ID: 42}, nil)
	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	post, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceParty,
		SourceID:   7,
		PostURL:    "https://example.com/p/1",
		Force:      true,
		Comments:   []RawComment{{Content: "hello"}},
	})

	assert.Nil(t, post)
	assert.Error(t, err)
	// The old measurement survives a failed re-analysis
	posts.AssertNotCalled(t, "DeletePost")
	posts.AssertNotCalled(t, "CreatePost")
}

func TestAnalyzeAndStore_ForceKeepsPriorOnInvalidClassification(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	posts.On("FindBySourceURL", mock.Anything, models.SourceParty, int64(7), "https://example.com/p/1").
		Return(&models.Post{ID: 42}, nil)
	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(&Classification{PositivePct: 70, NegativePct: 40, NeutralPct: 10}, nil)

	post, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceParty,
		SourceID:   7,
		PostURL:    "https://example.com/p/1",
		Force:      true,
		Comments:   []RawComment{{Content: "hello"}},
	})

	assert.Nil(t, post)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	posts.AssertNotCalled(t, "DeletePost")
	posts.AssertNotCalled(t, "CreatePost")
}

func TestAnalyzeAndStore_NoURLSkipsDuplicateCheck(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	posts.On("CreatePost", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(validClassification(), nil)

	post, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceCandidate,
		SourceID:   3,
		Comments:   []RawComment{{Content: "manual entry"}},
	})

	assert.NoError(t, err)
	assert.NotNil(t, post)
	posts.AssertNotCalled(t, "FindBySourceURL")
}

func TestAnalyzeAndStore_NewPostWhenNoPrior(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	posts.On("FindBySourceURL", mock.Anything, models.SourceNewsMedia, int64(7), "https://example.com/p/2").
		Return(nil, store.ErrNotFound)
	posts.On("CreatePost", mock.Anything, mock.Anything).Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(validClassification(), nil)

	post, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceNewsMedia,
		SourceID:   7,
		PostURL:    "https://example.com/p/2",
		Comments:   []RawComment{{Content: "a"}, {Content: "b"}},
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, post.CommentCount)
	assert.InDelta(t, 60.0, post.PositivePct, 1e-9)
}

func TestAnalyzeAndStore_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  AnalyzeRequest
	}{
		{
			name: "Missing source id",
			req: AnalyzeRequest{
				SourceType: models.SourceParty,
				Comments:   []RawComment{{Content: "x"}},
			},
		},
		{
			name: "Unknown source type",
			req: AnalyzeRequest{
				SourceType: models.SourceType("blog"),
				SourceID:   1,
				Comments:   []RawComment{{Content: "x"}},
			},
		},
		{
			name: "No comments",
			req: AnalyzeRequest{
				SourceType: models.SourceParty,
				SourceID:   1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := &MockPostStore{}
			classifier := &MockClassifier{}
			service := NewService(posts, classifier)

			post, err := service.AnalyzeAndStore(context.Background(), tt.req)

			assert.Nil(t, post)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
			posts.AssertNotCalled(t, "CreatePost")
		})
	}
}

func TestAnalyzeAndStore_RejectsBadPercentages(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(&Classification{PositivePct: 70, NegativePct: 40, NeutralPct: 10}, nil)

	post, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceParty,
		SourceID:   1,
		Comments:   []RawComment{{Content: "x"}},
	})

	assert.Nil(t, post)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	posts.AssertNotCalled(t, "CreatePost")
}

func TestAnalyzeAndStore_PopularComments(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	var stored *models.Post
	posts.On("CreatePost", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.Post)
		}).
		Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(validClassification(), nil)

	_, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceParty,
		SourceID:   1,
		Comments: []RawComment{
			{Content: "liked", Likes: intPtr(10)},
			{Content: "shared", Shares: intPtr(5)},
		},
	})

	assert.NoError(t, err)
	assert.Len(t, stored.PopularComments, 2)
	assert.Equal(t, "shared", stored.PopularComments[0].Content)
	assert.Equal(t, 15, stored.PopularComments[0].EngagementScore)
}

func TestAnalyzeAndStore_UnstructuredCommentsGetNoPopularList(t *testing.T) {
	posts := &MockPostStore{}
	classifier := &MockClassifier{}
	service := NewService(posts, classifier)

	var stored *models.Post
	posts.On("CreatePost", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*models.Post)
		}).
		Return(nil)
	classifier.On("Classify", mock.Anything, mock.Anything).
		Return(validClassification(), nil)

	_, err := service.AnalyzeAndStore(context.Background(), AnalyzeRequest{
		SourceType: models.SourceParty,
		SourceID:   1,
		Comments:   []RawComment{{Content: "plain text blob"}},
	})

	assert.NoError(t, err)
	assert.Empty(t, stored.PopularComments)
}
