package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang-market-scanner/pkg/logger"
	"golang-market-scanner/pkg/retry"

	"github.com/PuerkitoBio/goquery"
)

// wikipediaIndexRepository scrapes index constituents from a Wikipedia
// "List of ... companies" page, reading the ticker from the first column
// of the first constituents table.
type wikipediaIndexRepository struct {
	name       string
	pageURL    string
	log        *logger.Logger
	httpClient *http.Client
	retrier    retry.Policy
}

// NewWikipediaIndexRepository creates a constituents source for one
// index page.
func NewWikipediaIndexRepository(name, pageURL string, log *logger.Logger, retrier retry.Policy) IndexRepository {
	return &wikipediaIndexRepository{
		name:    name,
		pageURL: pageURL,
		log:     log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		retrier: retrier,
	}
}

func (r *wikipediaIndexRepository) Name() string {
	return r.name
}

func (r *wikipediaIndexRepository) ListComponents(ctx context.Context) ([]string, error) {
	var doc *goquery.Document
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, r.pageURL, nil)
		if reqErr != nil {
			return fmt.Errorf("failed to create request: %w", reqErr)
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

		resp, reqErr := r.httpClient.Do(req)
		if reqErr != nil {
			return fmt.Errorf("failed to fetch constituents page: %w", reqErr)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code %d", resp.StatusCode)
		}

		doc, reqErr = goquery.NewDocumentFromReader(resp.Body)
		if reqErr != nil {
			return fmt.Errorf("failed to parse constituents page: %w", reqErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s constituents: %w", r.name, err)
	}

	var symbols []string
	doc.Find("table.wikitable").First().Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cell := row.Find("td").First()
		symbol := normalizeSymbol(cell.Text())
		if symbol == "" {
			return
		}
		symbols = append(symbols, symbol)
	})

	if len(symbols) == 0 {
		return nil, fmt.Errorf("no constituents found on %s page", r.name)
	}

	r.log.DebugContext(ctx, "Scraped index constituents",
		logger.StringField("index", r.name),
		logger.IntField("count", len(symbols)))

	return symbols, nil
}

// normalizeSymbol converts share-class notation to the provider form
// (BRK.B -> BRK-B) and rejects cells that are not ticker-shaped.
func normalizeSymbol(raw string) string {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	symbol = strings.ReplaceAll(symbol, ".", "-")
	if symbol == "" || len(symbol) > 6 {
		return ""
	}
	for _, ch := range symbol {
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') && ch != '-' {
			return ""
		}
	}
	return symbol
}
