package dto

import "time"

// NewsItem is a normalized news article from any provider. Sentiment is
// nil for providers that do not score their articles; such items are
// excluded from the aggregate sentiment mean.
type NewsItem struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	Sentiment   *float64  `json:"sentiment,omitempty"`
	Relevance   float64   `json:"relevance"`
}

// NewsAnalysis is the fused multi-provider news view for one symbol.
type NewsAnalysis struct {
	HasSignificantNews bool       `json:"has_significant_news"`
	SentimentScore     float64    `json:"sentiment_score"`
	NewsVolumeScore    float64    `json:"news_volume_score"`
	RecentNews         []NewsItem `json:"recent_news"`
}
