package dto

// FinnhubNewsArticle is one article from the company-news endpoint.
// Datetime is a unix timestamp in seconds. Finnhub does not score its
// articles; sentiment is derived downstream.
type FinnhubNewsArticle struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}
