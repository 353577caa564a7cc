// Package analytics summarises engagement over a user's recent posts.
package analytics

import (
	"math"
	"sort"

	"igapi/pkg/models"
	"igapi/pkg/textutil"
)

// TopHashtags is how many hashtags the ranking keeps
const TopHashtags = 10

// Compute aggregates posts fetched over a window of days. Zero posts give
// zero for every derived number.
func Compute(profile *models.Profile, posts []models.Post, days int) models.Analytics {
	result := models.Analytics{
		Username:         profile.Username,
		Followers:        profile.Followers,
		PostsAnalyzed:    len(posts),
		MostUsedHashtags: []models.HashtagCount{},
	}
	if len(posts) == 0 {
		return result
	}

	var totalLikes, totalComments int64
	for _, p := range posts {
		totalLikes += p.Likes
		totalComments += p.Comments
	}

	n := float64(len(posts))
	result.AverageLikes = round2(float64(totalLikes) / n)
	result.AverageComments = round2(float64(totalComments) / n)
	result.EngagementRate = round2(textutil.EngagementRate(totalLikes, totalComments, profile.Followers) / n)
	if days > 0 {
		result.PostingFrequency = round2(n / float64(days))
	}
	result.MostUsedHashtags = rankHashtags(posts, TopHashtags)
	return result
}

// rankHashtags counts hashtags across posts and returns the limit most
// frequent; equal counts keep first-seen order.
func rankHashtags(posts []models.Post, limit int) []models.HashtagCount {
	counts := make(map[string]int)
	var order []string
	for _, p := range posts {
		for _, tag := range p.Hashtags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	ranked := make([]models.HashtagCount, 0, len(order))
	for _, tag := range order {
		ranked = append(ranked, models.HashtagCount{Hashtag: tag, Count: counts[tag]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
