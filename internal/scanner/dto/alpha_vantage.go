package dto

// AlphaVantageNewsResponse mirrors the NEWS_SENTIMENT payload.
type AlphaVantageNewsResponse struct {
	Items string                    `json:"items"`
	Feed  []AlphaVantageNewsArticle `json:"feed"`
}

// AlphaVantageNewsArticle is one article in the feed. TimePublished uses
// the compact layout 20060102T150405. The sentiment fields are pointers
// because older articles in the feed omit them.
type AlphaVantageNewsArticle struct {
	Title                 string   `json:"title"`
	URL                   string   `json:"url"`
	TimePublished         string   `json:"time_published"`
	Summary               string   `json:"summary"`
	Source                string   `json:"source"`
	OverallSentimentScore *float64 `json:"overall_sentiment_score"`
	RelevanceScore        *float64 `json:"relevance_score"`
}
