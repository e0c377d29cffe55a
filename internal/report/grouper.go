package report

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/sudipbhatta12/political-app-sub000/internal/models"
	"github.com/sudipbhatta12/political-app-sub000/internal/sentiment"
	"github.com/sudipbhatta12/political-app-sub000/internal/store"
)

// unknownSourceName is used when a registry lookup fails; a missing name
// must not fail the whole report.
const unknownSourceName = "Unknown"

type groupKey struct {
	sourceType models.SourceType
	sourceID   int64
	party      string
}

// GroupSummaries buckets posts per source and aggregates each bucket.
// Party and news-media posts group by (source_type, source_id); candidate
// posts merge into one bucket per party, since daily reports compare
// party-level trends and candidate detail lives elsewhere.
//
// Buckets come back sorted by post count descending, then name ascending,
// so regeneration yields a stable order.
func GroupSummaries(ctx context.Context, posts []models.Post, directory store.Directory) []models.ReportSourceSummary {
	groups := make(map[groupKey][]models.Post)
	var order []groupKey
	partyByCandidate := make(map[int64]string)

	for _, post := range posts {
		var key groupKey
		switch post.SourceType {
		case models.SourceCandidate:
			party, seen := partyByCandidate[post.SourceID]
			if !seen {
				resolved, err := directory.CandidateParty(ctx, post.SourceID)
				if err != nil {
					logrus.Warnf("Failed to resolve party for candidate %d: %v", post.SourceID, err)
					resolved = unknownSourceName
				}
				partyByCandidate[post.SourceID] = resolved
				party = resolved
			}
			key = groupKey{sourceType: models.SourceCandidate, party: party}
		case models.SourceParty, models.SourceNewsMedia:
			key = groupKey{sourceType: post.SourceType, sourceID: post.SourceID}
		default:
			logrus.Warnf("Skipping post %d with unknown source type %q", post.ID, post.SourceType)
			continue
		}

		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], post)
	}

	summaries := make([]models.ReportSourceSummary, 0, len(order))
	for _, key := range order {
		bucket := groups[key]
		stats := sentiment.Aggregate(bucket)

		engagement := 0
		for _, post := range bucket {
			for _, c := range post.PopularComments {
				engagement += c.EngagementScore
			}
		}

		summaries = append(summaries, models.ReportSourceSummary{
			SourceType:      key.sourceType,
			SourceID:        key.sourceID,
			SourceName:      resolveGroupName(ctx, key, directory),
			PostCount:       stats.PostCount,
			CommentCount:    stats.TotalComments,
			EngagementCount: engagement,
			AvgPositive:     stats.AvgPositive,
			AvgNegative:     stats.AvgNegative,
			AvgNeutral:      stats.AvgNeutral,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].PostCount != summaries[j].PostCount {
			return summaries[i].PostCount > summaries[j].PostCount
		}
		return summaries[i].SourceName < summaries[j].SourceName
	})
	return summaries
}

func resolveGroupName(ctx context.Context, key groupKey, directory store.Directory) string {
	if key.sourceType == models.SourceCandidate {
		return key.party + " Candidates"
	}

	name, err := directory.SourceName(ctx, key.sourceType, key.sourceID)
	if err != nil {
		logrus.Warnf("Failed to resolve name for %s %d: %v", key.sourceType, key.sourceID, err)
		return unknownSourceName
	}
	return name
}
