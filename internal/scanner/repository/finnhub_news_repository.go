package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-market-scanner/internal/scanner/config"
	"golang-market-scanner/internal/scanner/dto"
	"golang-market-scanner/pkg/logger"
	"golang-market-scanner/pkg/retry"
	"golang-market-scanner/pkg/utils"
)

// Finnhub does not score its articles, so sentiment is estimated from
// directional keywords in the summary.
var (
	positiveWords = map[string]struct{}{
		"up": {}, "rise": {}, "gain": {}, "positive": {}, "growth": {}, "surge": {},
	}
	negativeWords = map[string]struct{}{
		"down": {}, "fall": {}, "loss": {}, "negative": {}, "decline": {}, "drop": {},
	}
)

type finnhubNewsRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient *http.Client
	retrier    retry.Policy
}

// NewFinnhubNewsRepository creates the Finnhub company-news provider.
func NewFinnhubNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &finnhubNewsRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retrier: retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.Delay},
	}
}

func (r *finnhubNewsRepository) Name() string {
	return "finnhub"
}

func (r *finnhubNewsRepository) GetNews(ctx context.Context, symbol string, daysBack int) ([]dto.NewsItem, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -daysBack)

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("from", start.Format("2006-01-02"))
	params.Set("to", end.Format("2006-01-02"))
	reqURL := r.cfg.News.FinnhubURL + "/company-news?" + params.Encode()

	var body []byte
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if reqErr != nil {
			return fmt.Errorf("failed to create request: %w", reqErr)
		}
		req.Header.Set("X-Finnhub-Token", r.cfg.News.FinnhubAPIKey)
		resp, reqErr := r.httpClient.Do(req)
		if reqErr != nil {
			return fmt.Errorf("failed to fetch news: %w", reqErr)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}
		body, reqErr = io.ReadAll(resp.Body)
		return reqErr
	})
	if err != nil {
		return nil, fmt.Errorf("finnhub news fetch failed for %s: %w", symbol, err)
	}

	var articles []dto.FinnhubNewsArticle
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal finnhub response: %w", err)
	}

	items := make([]dto.NewsItem, 0, len(articles))
	for _, article := range articles {
		sentiment := keywordSentiment(article.Summary)
		items = append(items, dto.NewsItem{
			Title:       utils.CleanToValidUTF8(article.Headline),
			Summary:     utils.CleanToValidUTF8(article.Summary),
			Source:      article.Source,
			URL:         article.URL,
			PublishedAt: time.Unix(article.Datetime, 0).UTC(),
			Sentiment:   &sentiment,
			Relevance:   1.0, // Finnhub does not provide relevance scores
		})
	}

	return items, nil
}

// keywordSentiment returns a value in [-1, 1] from directional word
// counts; 0 when the text contains no directional words.
func keywordSentiment(text string) float64 {
	var positive, negative int
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if _, ok := positiveWords[word]; ok {
			positive++
		}
		if _, ok := negativeWords[word]; ok {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0
	}
	return float64(positive-negative) / float64(total)
}
