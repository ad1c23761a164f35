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

	"golang.org/x/time/rate"
)

// yahooFinanceRepository is the market data gateway. One token-bucket
// limiter is shared by all calls so burst behavior stays bounded no
// matter how the orchestrator batches its symbols.
type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	retrier        retry.Policy
}

// NewYahooFinanceRepository creates the Yahoo Finance market data gateway.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		retrier:        retry.Policy{MaxAttempts: cfg.Retry.MaxAttempts, Delay: cfg.Retry.Delay},
	}
}

func (r *yahooFinanceRepository) GetHistory(ctx context.Context, symbol string, rangeDays int) (*dto.PriceHistory, error) {
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%dd&interval=1d",
		r.cfg.YahooFinance.BaseURL, url.PathEscape(symbol), rangeDays)

	var body []byte
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		var reqErr error
		body, reqErr = r.sendRequest(ctx, reqURL)
		return reqErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for %s: %w", symbol, err)
	}

	var response dto.YahooChartResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chart response for %s: %w", symbol, err)
	}
	if response.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", symbol, response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result for %s", symbol)
	}

	return buildPriceHistory(symbol, response.Chart.Result[0]), nil
}

// buildPriceHistory flattens the columnar chart payload, skipping bars
// the exchange reported as null.
func buildPriceHistory(symbol string, result dto.YahooChartResult) *dto.PriceHistory {
	history := &dto.PriceHistory{Symbol: symbol}
	if len(result.Indicators.Quote) == 0 {
		return history
	}

	quote := result.Indicators.Quote[0]
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		bar := dto.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		history.Bars = append(history.Bars, bar)
	}

	return history
}

func (r *yahooFinanceRepository) GetCompanyInfo(ctx context.Context, symbol string) (*dto.CompanyInfo, error) {
	reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,price",
		r.cfg.YahooFinance.BaseURL, url.PathEscape(symbol))

	var body []byte
	err := r.retrier.Do(ctx, func(ctx context.Context) error {
		var reqErr error
		body, reqErr = r.sendRequest(ctx, reqURL)
		return reqErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote summary for %s: %w", symbol, err)
	}

	var response dto.YahooQuoteSummaryResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote summary for %s: %w", symbol, err)
	}
	if len(response.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("empty quote summary for %s", symbol)
	}

	result := response.QuoteSummary.Result[0]
	info := &dto.CompanyInfo{}
	if result.Price != nil {
		info.Name = result.Price.LongName
		if info.Name == "" {
			info.Name = result.Price.ShortName
		}
		info.MarketCap = result.Price.MarketCap.Raw
	}
	if result.AssetProfile != nil {
		info.Sector = result.AssetProfile.Sector
	}

	return info, nil
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, reqURL string) ([]byte, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send request to Yahoo Finance API", logger.StringField("url", reqURL), logger.ErrorField(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.ErrorContext(ctx, "Received non-OK response from Yahoo Finance API", logger.StringField("url", reqURL), logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
