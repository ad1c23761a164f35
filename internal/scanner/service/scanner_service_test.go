package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"golang-market-scanner/internal/scanner/config"
	"golang-market-scanner/internal/scanner/dto"
	"golang-market-scanner/internal/scanner/indicator"
	"golang-market-scanner/internal/scanner/repository"
	"golang-market-scanner/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarketDataRepository struct {
	histories map[string]*dto.PriceHistory
	errs      map[string]error
	info      *dto.CompanyInfo
	infoErr   error
}

func (f *fakeMarketDataRepository) GetHistory(ctx context.Context, symbol string, rangeDays int) (*dto.PriceHistory, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	history, ok := f.histories[symbol]
	if !ok {
		return nil, fmt.Errorf("no history for %s", symbol)
	}
	return history, nil
}

func (f *fakeMarketDataRepository) GetCompanyInfo(ctx context.Context, symbol string) (*dto.CompanyInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	if f.info != nil {
		return f.info, nil
	}
	return &dto.CompanyInfo{}, nil
}

type fakeUniverseService struct {
	symbols []string
}

func (f *fakeUniverseService) Resolve(ctx context.Context) ([]string, error) {
	return f.symbols, nil
}

func scannerConfig() *config.Config {
	return &config.Config{
		Scanner: config.Scanner{
			BatchSize:          100,
			BatchPause:         time.Millisecond,
			MaxConcurrentFetch: 5,
			HistoryDays:        60,
			Filters: config.Filters{
				MinPrice:          5,
				MaxPrice:          1000,
				MinVolume:         1_000_000,
				MinVolatility:     0.15,
				MaxVolatility:     0.50,
				VolumeSurgeFactor: 1.5,
				MomentumLookback:  5,
				MinMomentum:       0.02,
				RSIPeriod:         14,
				RSIOversold:       30,
				RSIOverbought:     70,
			},
		},
		News: config.News{
			DaysToAnalyze:     7,
			MinSentimentScore: 0.2,
			ModerateVolume:    0.3,
			HighVolume:        0.7,
		},
	}
}

// promisingHistory builds a 60-bar uptrend that passes both filter
// stages: returns cycle through +4%, -2.5%, +0.5%, and the last five
// sessions triple the baseline volume.
func promisingHistory(symbol string) *dto.PriceHistory {
	returns := []float64{0.04, -0.025, 0.005}
	bars := make([]dto.Bar, 60)
	price := 10.0
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		if i > 0 {
			price *= 1 + returns[(i-1)%3]
		}
		volume := int64(1_000_000)
		if i >= 55 {
			volume = 3_000_000
		}
		bars[i] = dto.Bar{
			Timestamp: day.AddDate(0, 0, i),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    volume,
		}
	}
	return &dto.PriceHistory{Symbol: symbol, Bars: bars}
}

func newTestScanner(cfg *config.Config, market repository.MarketDataRepository, symbols []string) *scannerService {
	log := logger.NewNop()
	svc := NewScannerService(
		cfg,
		log,
		market,
		&fakeUniverseService{symbols: symbols},
		NewNewsAggregatorService(cfg, log, nil),
		nil, nil, nil,
	)
	return svc.(*scannerService)
}

func TestPassesInitialFilters(t *testing.T) {
	cfg := scannerConfig()
	svc := newTestScanner(cfg, &fakeMarketDataRepository{}, nil)

	base := dto.BatchMetrics{
		Symbol:     "AAPL",
		Price:      50,
		Volume:     2_000_000,
		Volatility: 0.30,
	}

	t.Run("in-range metrics pass", func(t *testing.T) {
		assert.True(t, svc.passesInitialFilters(base))
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		m := base
		m.Price = 5.0
		assert.True(t, svc.passesInitialFilters(m))
		m.Price = 1000.0
		assert.True(t, svc.passesInitialFilters(m))
		m.Price = 4.99
		assert.False(t, svc.passesInitialFilters(m))
		m.Price = 1000.01
		assert.False(t, svc.passesInitialFilters(m))
	})

	t.Run("volume below minimum fails", func(t *testing.T) {
		m := base
		m.Volume = 999_999
		assert.False(t, svc.passesInitialFilters(m))
	})

	t.Run("volatility outside band fails", func(t *testing.T) {
		m := base
		m.Volatility = 0.14
		assert.False(t, svc.passesInitialFilters(m))
		m.Volatility = 0.51
		assert.False(t, svc.passesInitialFilters(m))
	})

	t.Run("NaN metrics fail closed", func(t *testing.T) {
		m := base
		m.Volatility = math.NaN()
		assert.False(t, svc.passesInitialFilters(m))
		m = base
		m.Price = math.NaN()
		assert.False(t, svc.passesInitialFilters(m))
	})
}

func TestDetailedAnalysis(t *testing.T) {
	cfg := scannerConfig()
	svc := newTestScanner(cfg, &fakeMarketDataRepository{}, nil)

	t.Run("short history is rejected", func(t *testing.T) {
		history := promisingHistory("AAPL")
		history.Bars = history.Bars[:59]
		_, ok := svc.detailedAnalysis(history)
		assert.False(t, ok)
	})

	t.Run("uptrend with volume surge passes", func(t *testing.T) {
		tech, ok := svc.detailedAnalysis(promisingHistory("AAPL"))
		require.True(t, ok)
		assert.Greater(t, tech.VolumeSurge, cfg.Scanner.Filters.VolumeSurgeFactor)
		assert.Greater(t, tech.Momentum, cfg.Scanner.Filters.MinMomentum)
		assert.GreaterOrEqual(t, tech.RSI, cfg.Scanner.Filters.RSIOversold)
		assert.LessOrEqual(t, tech.RSI, cfg.Scanner.Filters.RSIOverbought)
	})

	t.Run("downtrend is rejected", func(t *testing.T) {
		history := promisingHistory("AAPL")
		for i := range history.Bars {
			history.Bars[i].Close = 100 - float64(i)
		}
		_, ok := svc.detailedAnalysis(history)
		assert.False(t, ok)
	})

	t.Run("flat volume is rejected", func(t *testing.T) {
		history := promisingHistory("AAPL")
		for i := range history.Bars {
			history.Bars[i].Volume = 1_000_000
		}
		_, ok := svc.detailedAnalysis(history)
		assert.False(t, ok)
	})
}

func TestScanEndToEnd(t *testing.T) {
	cfg := scannerConfig()
	history := promisingHistory("AAPL")
	market := &fakeMarketDataRepository{
		histories: map[string]*dto.PriceHistory{"AAPL": history},
		info:      &dto.CompanyInfo{Name: "Apple Inc.", Sector: "Technology"},
	}
	svc := newTestScanner(cfg, market, []string{"AAPL"})

	profiles, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, "AAPL", p.Symbol)
	assert.Equal(t, "Apple Inc.", p.CompanyName)
	assert.Equal(t, history.Bars[59].Close, p.CurrentPrice)
	assert.Equal(t, int64(3_000_000), p.Volume)

	// Expected reasons, recomputed from the same series. RSI on this
	// series lands above the neutral band so no RSI reason appears, and
	// with no news providers there are no news reasons.
	closes := history.Closes()
	surge := indicator.VolumeSurge(history.Volumes())
	momentum, err := indicator.Momentum(closes, cfg.Scanner.Filters.MomentumLookback)
	require.NoError(t, err)
	volatility, err := indicator.AnnualizedVolatility(closes, 0)
	require.NoError(t, err)

	require.Equal(t, []string{
		fmt.Sprintf("Volume surge: %.1fx average", surge),
		fmt.Sprintf("Strong momentum: %.1f%%", momentum*100),
		fmt.Sprintf("Healthy volatility: %.1f%%", volatility*100),
	}, p.Reasons)
}

func TestScanBatchIsolation(t *testing.T) {
	cfg := scannerConfig()

	histories := make(map[string]*dto.PriceHistory)
	var symbols []string
	for i := 0; i < 250; i++ {
		symbol := fmt.Sprintf("SYM%03d", i)
		symbols = append(symbols, symbol)
		histories[symbol] = promisingHistory(symbol)
	}
	market := &fakeMarketDataRepository{
		histories: histories,
		errs:      map[string]error{"SYM150": errors.New("http 502")},
	}
	svc := newTestScanner(cfg, market, symbols)

	profiles, err := svc.Scan(context.Background())
	require.NoError(t, err)
	assert.Len(t, profiles, 249)

	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		seen[p.Symbol] = true
	}
	assert.False(t, seen["SYM150"], "failed symbol must be excluded")
	assert.True(t, seen["SYM000"])
	assert.True(t, seen["SYM249"])
}

func TestScanCompanyInfoFailureDegrades(t *testing.T) {
	cfg := scannerConfig()
	market := &fakeMarketDataRepository{
		histories: map[string]*dto.PriceHistory{"AAPL": promisingHistory("AAPL")},
		infoErr:   errors.New("quote summary unavailable"),
	}
	svc := newTestScanner(cfg, market, []string{"AAPL"})

	profiles, err := svc.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Empty(t, profiles[0].CompanyName)
}

func TestBuildReasonsWithNews(t *testing.T) {
	cfg := scannerConfig()
	svc := newTestScanner(cfg, &fakeMarketDataRepository{}, nil)

	tech := dto.TechnicalProfile{
		Momentum:    0.05,
		Volatility:  0.30,
		RSI:         50,
		VolumeSurge: 2.0,
	}
	news := dto.NewsAnalysis{
		HasSignificantNews: true,
		SentimentScore:     0.5,
		NewsVolumeScore:    0.8,
		RecentNews: []dto.NewsItem{
			{Title: "first"}, {Title: "second"}, {Title: "third"}, {Title: "fourth"},
		},
	}

	reasons := svc.buildReasons(tech, news)

	assert.Equal(t, []string{
		"Volume surge: 2.0x average",
		"Strong momentum: 5.0%",
		"Neutral RSI: 50.0",
		"Healthy volatility: 30.0%",
		"News sentiment 0.50 confirms 5.0% momentum",
		"Positive news coverage with high news volume (sentiment 0.50)",
		"Recent: first",
		"Recent: second",
		"Recent: third",
	}, reasons)
}

func TestBuildReasonsOpposingSentiment(t *testing.T) {
	cfg := scannerConfig()
	svc := newTestScanner(cfg, &fakeMarketDataRepository{}, nil)

	tech := dto.TechnicalProfile{Momentum: 0.05, Volatility: 0.30, RSI: 65, VolumeSurge: 2.0}
	news := dto.NewsAnalysis{
		HasSignificantNews: true,
		SentimentScore:     -0.4,
		NewsVolumeScore:    0.5,
		RecentNews:         []dto.NewsItem{{Title: "bad quarter"}},
	}

	reasons := svc.buildReasons(tech, news)

	assert.NotContains(t, reasons, "News sentiment -0.40 confirms 5.0% momentum")
	assert.Contains(t, reasons, "Negative news coverage with moderate news volume (sentiment -0.40)")
	assert.Contains(t, reasons, "Recent: bad quarter")
}
