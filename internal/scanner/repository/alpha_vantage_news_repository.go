package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang-market-scanner/internal/scanner/config"
	"golang-market-scanner/internal/scanner/dto"
	"golang-market-scanner/pkg/logger"
	"golang-market-scanner/pkg/retry"
	"golang-market-scanner/pkg/utils"
)

const alphaVantageTimeLayout = "20060102T150405"

// alphaVantageNewsRepository is the Alpha Vantage NEWS_SENTIMENT
// provider. Articles carry provider-scored sentiment when available.
type alphaVantageNewsRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient *http.Client
	retrier    retry.Policy
}

// NewAlphaVantageNewsRepository creates the Alpha Vantage news provider.
func NewAlphaVantageNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &alphaVantageNewsRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		retrier: retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.Delay},
	}
}

func (r *alphaVantageNewsRepository) Name() string {
	return "alpha_vantage"
}

func (r *alphaVantageNewsRepository) GetNews(ctx context.Context, symbol string, daysBack int) ([]dto.NewsItem, error) {
	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", symbol)
	params.Set("apikey", r.cfg.News.AlphaVantageAPIKey)
	params.Set("limit", "50")
	reqURL := r.cfg.News.AlphaVantageURL + "?" + params.Encode()

	var body []byte
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if reqErr != nil {
			return fmt.Errorf("failed to create request: %w", reqErr)
		}
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
		return nil, fmt.Errorf("alpha vantage news fetch failed for %s: %w", symbol, err)
	}

	var response dto.AlphaVantageNewsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alpha vantage response: %w", err)
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack)
	var items []dto.NewsItem
	for _, article := range response.Feed {
		publishedAt, err := time.Parse(alphaVantageTimeLayout, article.TimePublished)
		if err != nil {
			r.log.DebugContext(ctx, "Skipping article with unparseable publish time",
				logger.StringField("time_published", article.TimePublished))
			continue
		}
		if publishedAt.Before(cutoff) {
			continue
		}

		item := dto.NewsItem{
			Title:       utils.CleanToValidUTF8(article.Title),
			Summary:     utils.CleanToValidUTF8(article.Summary),
			Source:      article.Source,
			URL:         article.URL,
			PublishedAt: publishedAt,
			Sentiment:   article.OverallSentimentScore,
		}
		if article.RelevanceScore != nil {
			item.Relevance = *article.RelevanceScore
		}
		items = append(items, item)
	}

	return items, nil
}
