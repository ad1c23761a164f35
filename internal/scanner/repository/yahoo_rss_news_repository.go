package repository

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang-market-scanner/internal/scanner/config"
	"golang-market-scanner/internal/scanner/dto"
	"golang-market-scanner/pkg/logger"
	"golang-market-scanner/pkg/retry"
	"golang-market-scanner/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// yahooRSSNewsRepository pulls headline feeds. RSS items carry no
// sentiment score; the aggregator's mean ignores them and they count
// toward news volume only.
type yahooRSSNewsRepository struct {
	cfg     *config.Config
	log     *logger.Logger
	parser  *gofeed.Parser
	retrier retry.Policy
}

// NewYahooRSSNewsRepository creates the RSS headline provider.
func NewYahooRSSNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &yahooRSSNewsRepository{
		cfg:     cfg,
		log:     log,
		parser:  gofeed.NewParser(),
		retrier: retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.Delay},
	}
}

func (r *yahooRSSNewsRepository) Name() string {
	return "yahoo_rss"
}

func (r *yahooRSSNewsRepository) GetNews(ctx context.Context, symbol string, daysBack int) ([]dto.NewsItem, error) {
	params := url.Values{}
	params.Set("s", symbol)
	params.Set("region", "US")
	params.Set("lang", "en-US")
	feedURL := r.cfg.News.RSSBaseURL + "?" + params.Encode()

	var feed *gofeed.Feed
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		var parseErr error
		feed, parseErr = r.parser.ParseURLWithContext(feedURL, ctx)
		return parseErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed for %s: %w", symbol, err)
	}

	cutoff := time.Now().AddDate(0, 0, -daysBack)
	var items []dto.NewsItem
	for _, item := range feed.Items {
		if item.PublishedParsed == nil {
			r.log.DebugContext(ctx, "Skipping RSS item without publish date", logger.StringField("link", item.Link))
			continue
		}
		if item.PublishedParsed.Before(cutoff) {
			continue
		}

		source := feed.Title
		if item.Author != nil && item.Author.Name != "" {
			source = item.Author.Name
		}

		items = append(items, dto.NewsItem{
			Title:       utils.CleanToValidUTF8(item.Title),
			Summary:     stripHTML(utils.CleanToValidUTF8(item.Description)),
			Source:      source,
			URL:         item.Link,
			PublishedAt: item.PublishedParsed.UTC(),
			Relevance:   1.0,
		})
	}

	return items, nil
}

// stripHTML reduces an RSS description to plain text. Malformed markup
// falls back to the raw string.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(doc.Text())
}
