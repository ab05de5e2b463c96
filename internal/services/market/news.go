package market

import (
	"sort"
	"strings"
	"time"

	"github.com/bobmcallan/quantum/internal/common"
	"github.com/bobmcallan/quantum/internal/models"
)

var earningsKeywords = []string{
	"earnings", "results", "quarter", "q1", "q2", "q3", "q4",
	"revenue", "eps", "profit", "loss", "sales",
}

// CategorizeNews tags a headline as earnings news when it mentions any
// earnings keyword, case-insensitively.
func CategorizeNews(title string) string {
	lower := strings.ToLower(title)
	for _, kw := range earningsKeywords {
		if strings.Contains(lower, kw) {
			return models.NewsCategoryEarnings
		}
	}
	return models.NewsCategoryGeneral
}

// AggregateNews keeps items published within FreshnessNews of now,
// drops duplicate URLs (first wins), categorises each item and sorts
// newest first.
func AggregateNews(items []*models.NewsItem, now time.Time) []*models.NewsItem {
	cutoff := now.Add(-common.FreshnessNews)
	seen := make(map[string]bool, len(items))
	out := make([]*models.NewsItem, 0, len(items))

	for _, item := range items {
		if item == nil || item.PublishedAt.Before(cutoff) {
			continue
		}
		if item.URL != "" {
			if seen[item.URL] {
				continue
			}
			seen[item.URL] = true
		}
		item.Category = CategorizeNews(item.Title)
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}
