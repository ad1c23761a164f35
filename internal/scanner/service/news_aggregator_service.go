package service

import (
	"context"
	"math"
	"sort"
	"time"

	"golang-market-scanner/internal/scanner/config"
	"golang-market-scanner/internal/scanner/dto"
	"golang-market-scanner/internal/scanner/repository"
	"golang-market-scanner/pkg/logger"
)

// recentNewsLimit caps the headlines retained on a NewsAnalysis.
const recentNewsLimit = 5

// NewsAggregator merges multi-provider news for one symbol into a single
// sentiment and volume view.
type NewsAggregator interface {
	Analyze(ctx context.Context, symbol string, daysBack int) dto.NewsAnalysis
}

type newsAggregatorService struct {
	cfg       *config.Config
	log       *logger.Logger
	providers []repository.NewsRepository
}

// NewNewsAggregatorService creates the aggregator over the configured
// providers. An empty provider list is valid and yields empty analyses.
func NewNewsAggregatorService(cfg *config.Config, log *logger.Logger, providers []repository.NewsRepository) NewsAggregator {
	return &newsAggregatorService{cfg: cfg, log: log, providers: providers}
}

// Analyze polls every provider, isolating per-provider failures, and
// fuses the combined items. Providers are never ranked against each
// other; items are only ordered by recency.
func (s *newsAggregatorService) Analyze(ctx context.Context, symbol string, daysBack int) dto.NewsAnalysis {
	var items []dto.NewsItem
	for _, provider := range s.providers {
		providerItems, err := provider.GetNews(ctx, symbol, daysBack)
		if err != nil {
			s.log.Warn("News provider failed, continuing without it",
				logger.StringField("provider", provider.Name()),
				logger.StringField("symbol", symbol),
				logger.ErrorField(err))
			continue
		}
		items = append(items, providerItems...)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	recent := items
	if len(recent) > recentNewsLimit {
		recent = recent[:recentNewsLimit]
	}
	if recent == nil {
		recent = []dto.NewsItem{}
	}

	analysis := dto.NewsAnalysis{
		SentimentScore:  sentimentScore(items),
		NewsVolumeScore: newsVolumeScore(items, time.Now()),
		RecentNews:      recent,
	}

	analysis.HasSignificantNews = len(items) > 2 &&
		math.Abs(analysis.SentimentScore) > s.cfg.News.MinSentimentScore

	return analysis
}

// sentimentScore is the unweighted mean over items that carry a
// sentiment; 0 when none do.
func sentimentScore(items []dto.NewsItem) float64 {
	var sum float64
	var count int
	for _, item := range items {
		if item.Sentiment == nil {
			continue
		}
		sum += *item.Sentiment
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// newsVolumeScore is a recency-weighted count: each item contributes
// 1/(days_since_published+1), the sum is normalized by 5 and clamped to
// [0, 1].
func newsVolumeScore(items []dto.NewsItem, now time.Time) float64 {
	var sum float64
	for _, item := range items {
		days := now.Sub(item.PublishedAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		sum += 1 / (days + 1)
	}

	score := sum / 5
	if score > 1 {
		return 1
	}
	return score
}
