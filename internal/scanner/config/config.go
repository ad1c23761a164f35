package config

import (
	"fmt"
	"time"

	"golang-market-scanner/pkg/config"
)

// Filters holds the immutable screening thresholds. Loaded once per
// process and never mutated mid-scan.
type Filters struct {
	MinPrice          float64 `mapstructure:"min_price"`
	MaxPrice          float64 `mapstructure:"max_price"`
	MinVolume         int64   `mapstructure:"min_volume"`
	MinVolatility     float64 `mapstructure:"min_volatility"`
	MaxVolatility     float64 `mapstructure:"max_volatility"`
	VolumeSurgeFactor float64 `mapstructure:"volume_surge_factor"`
	MomentumLookback  int     `mapstructure:"momentum_lookback"`
	MinMomentum       float64 `mapstructure:"min_momentum"`
	RSIPeriod         int     `mapstructure:"rsi_period"`
	RSIOversold       float64 `mapstructure:"rsi_oversold"`
	RSIOverbought     float64 `mapstructure:"rsi_overbought"`
}

// Validate rejects inverted bounds. A violation is fatal and must be
// reported before any scan work begins.
func (f Filters) Validate() error {
	if f.MinPrice > f.MaxPrice {
		return fmt.Errorf("invalid price range: min %.2f > max %.2f", f.MinPrice, f.MaxPrice)
	}
	if f.MinVolatility > f.MaxVolatility {
		return fmt.Errorf("invalid volatility range: min %.2f > max %.2f", f.MinVolatility, f.MaxVolatility)
	}
	if f.RSIOversold > f.RSIOverbought {
		return fmt.Errorf("invalid RSI band: oversold %.1f > overbought %.1f", f.RSIOversold, f.RSIOverbought)
	}
	if f.MomentumLookback <= 0 {
		return fmt.Errorf("momentum lookback must be positive, got %d", f.MomentumLookback)
	}
	return nil
}

// Scanner holds batching and throttling settings for the orchestrator.
type Scanner struct {
	BatchSize          int           `mapstructure:"batch_size"`
	BatchPause         time.Duration `mapstructure:"batch_pause"`
	MaxConcurrentFetch int           `mapstructure:"max_concurrent_fetch"`
	HistoryDays        int           `mapstructure:"history_days"`
	Filters            Filters       `mapstructure:"filters"`
}

// News holds aggregation thresholds and per-provider credentials. A
// provider with an empty API key is not constructed.
type News struct {
	DaysToAnalyze      int     `mapstructure:"days_to_analyze"`
	MinSentimentScore  float64 `mapstructure:"min_sentiment_score"`
	ModerateVolume     float64 `mapstructure:"moderate_volume"`
	HighVolume         float64 `mapstructure:"high_volume"`
	AlphaVantageAPIKey string  `mapstructure:"alpha_vantage_api_key"`
	AlphaVantageURL    string  `mapstructure:"alpha_vantage_url"`
	FinnhubAPIKey      string  `mapstructure:"finnhub_api_key"`
	FinnhubURL         string  `mapstructure:"finnhub_url"`
	RSSEnabled         bool    `mapstructure:"rss_enabled"`
	RSSBaseURL         string  `mapstructure:"rss_base_url"`
}

// YahooFinance holds the market data provider settings.
type YahooFinance struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// IndexSource describes one reference-universe source. A source with a
// URL is scraped; one with a symbol list is served as-is.
type IndexSource struct {
	Name    string   `mapstructure:"name"`
	URL     string   `mapstructure:"url"`
	Symbols []string `mapstructure:"symbols"`
}

// Retry holds the shared gateway retry policy.
type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	Delay       time.Duration `mapstructure:"delay"`
}

// Telegram holds configuration for the scan summary notifier. An empty
// bot token disables it.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Scheduler holds the cron spec for periodic scans in serve mode.
type Scheduler struct {
	CronSpec string `mapstructure:"cron_spec"`
}

// Config holds the full configuration for the scanner service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	Scanner      Scanner         `mapstructure:"scanner"`
	News         News            `mapstructure:"news"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Universe     []IndexSource   `mapstructure:"universe"`
	Retry        Retry           `mapstructure:"retry"`
	Telegram     Telegram        `mapstructure:"telegram"`
	Scheduler    Scheduler       `mapstructure:"scheduler"`
}

// Load loads the scanner configuration, applies defaults, and validates
// the filter thresholds.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Scanner.Filters.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	s := &c.Scanner
	if s.BatchSize <= 0 {
		s.BatchSize = 100
	}
	if s.BatchPause <= 0 {
		s.BatchPause = time.Second
	}
	if s.MaxConcurrentFetch <= 0 {
		s.MaxConcurrentFetch = 5
	}
	if s.HistoryDays <= 0 {
		s.HistoryDays = 60
	}

	f := &s.Filters
	if f.MaxPrice == 0 {
		f.MinPrice, f.MaxPrice = 5.0, 1000.0
	}
	if f.MinVolume == 0 {
		f.MinVolume = 1_000_000
	}
	if f.MaxVolatility == 0 {
		f.MinVolatility, f.MaxVolatility = 0.15, 0.50
	}
	if f.VolumeSurgeFactor == 0 {
		f.VolumeSurgeFactor = 1.5
	}
	if f.MomentumLookback == 0 {
		f.MomentumLookback = 5
	}
	if f.MinMomentum == 0 {
		f.MinMomentum = 0.02
	}
	if f.RSIPeriod == 0 {
		f.RSIPeriod = 14
	}
	if f.RSIOverbought == 0 {
		f.RSIOversold, f.RSIOverbought = 30, 70
	}

	n := &c.News
	if n.DaysToAnalyze <= 0 {
		n.DaysToAnalyze = 7
	}
	if n.MinSentimentScore == 0 {
		n.MinSentimentScore = 0.2
	}
	if n.ModerateVolume == 0 {
		n.ModerateVolume = 0.3
	}
	if n.HighVolume == 0 {
		n.HighVolume = 0.7
	}
	if n.AlphaVantageURL == "" {
		n.AlphaVantageURL = "https://www.alphavantage.co/query"
	}
	if n.FinnhubURL == "" {
		n.FinnhubURL = "https://finnhub.io/api/v1"
	}
	if n.RSSBaseURL == "" {
		n.RSSBaseURL = "https://feeds.finance.yahoo.com/rss/2.0/headline"
	}

	if c.YahooFinance.BaseURL == "" {
		c.YahooFinance.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.YahooFinance.MaxRequestPerMinute <= 0 {
		c.YahooFinance.MaxRequestPerMinute = 60
	}

	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.Delay <= 0 {
		c.Retry.Delay = time.Second
	}

	if c.Scheduler.CronSpec == "" {
		c.Scheduler.CronSpec = "0 7 * * 1-5"
	}
}
