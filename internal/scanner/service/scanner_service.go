package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"golang-market-scanner/internal/entity"
	"golang-market-scanner/internal/scanner/config"
	"golang-market-scanner/internal/scanner/dto"
	"golang-market-scanner/internal/scanner/indicator"
	"golang-market-scanner/internal/scanner/repository"
	"golang-market-scanner/pkg/common"
	"golang-market-scanner/pkg/logger"
	"golang-market-scanner/pkg/telegram"
	"golang-market-scanner/pkg/utils"

	"github.com/patrickmn/go-cache"
	goRedis "github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

const (
	// minHistoryBars is the history depth required before the detailed
	// filter will consider a symbol at all.
	minHistoryBars = 60

	// Narrative RSI band for reason generation. Deliberately narrower
	// than the stage-2 filter band: the filter admits anything
	// non-extreme, the reason only calls out genuinely neutral RSI.
	rsiNeutralLow  = 40.0
	rsiNeutralHigh = 60.0

	smaShortWindow = 20
	smaLongWindow  = 50
)

// ScannerService drives a full market scan: universe resolution, batched
// metric retrieval, the two-stage filter, and news fusion.
type ScannerService interface {
	Scan(ctx context.Context) ([]dto.StockProfile, error)
}

type scannerService struct {
	cfg          *config.Config
	log          *logger.Logger
	marketData   repository.MarketDataRepository
	universe     UniverseService
	news         NewsAggregator
	profileRepo  repository.StockProfileRepository
	redisClient  *goRedis.Client
	notifier     telegram.Notifier
	historyCache *cache.Cache
}

// NewScannerService creates the scan orchestrator. profileRepo,
// redisClient, and notifier are optional; a nil value disables that
// export step.
func NewScannerService(
	cfg *config.Config,
	log *logger.Logger,
	marketData repository.MarketDataRepository,
	universe UniverseService,
	news NewsAggregator,
	profileRepo repository.StockProfileRepository,
	redisClient *goRedis.Client,
	notifier telegram.Notifier,
) ScannerService {
	return &scannerService{
		cfg:          cfg,
		log:          log,
		marketData:   marketData,
		universe:     universe,
		news:         news,
		profileRepo:  profileRepo,
		redisClient:  redisClient,
		notifier:     notifier,
		historyCache: cache.New(30*time.Minute, time.Hour),
	}
}

// Scan runs one full scan to completion and returns whatever profiles
// were successfully produced. Per-symbol and per-batch failures are
// isolated; only cancellation stops the scan early, and even then the
// profiles gathered so far are returned.
func (s *scannerService) Scan(ctx context.Context) ([]dto.StockProfile, error) {
	start := time.Now()
	s.log.Info("Starting market scan")

	// History is cached for the duration of one scan only.
	s.historyCache.Flush()

	symbols, err := s.universe.Resolve(ctx)
	if err != nil {
		err = fmt.Errorf("failed to resolve universe: %w", err)
		if s.notifier != nil {
			if sendErr := s.notifier.SendMessage(telegram.FormatErrorAlertMessage(time.Now(), err.Error())); sendErr != nil {
				s.log.Error("Failed to send error alert", logger.ErrorField(sendErr))
			}
		}
		return nil, err
	}
	if len(symbols) == 0 {
		s.log.Warn("Universe is empty, nothing to scan")
		return []dto.StockProfile{}, nil
	}

	batchSize := s.cfg.Scanner.BatchSize
	totalBatches := (len(symbols) + batchSize - 1) / batchSize
	profiles := []dto.StockProfile{}

	for batchNum := 0; batchNum < totalBatches; batchNum++ {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}

		lo := batchNum * batchSize
		hi := lo + batchSize
		if hi > len(symbols) {
			hi = len(symbols)
		}
		batch := symbols[lo:hi]

		s.log.Info("Processing batch",
			logger.IntField("batch", batchNum+1),
			logger.IntField("total_batches", totalBatches),
			logger.IntField("size", len(batch)))

		metrics := s.getBatchMetrics(ctx, batch)

		var passed []string
		for _, symbol := range batch {
			m, ok := metrics[symbol]
			if ok && s.passesInitialFilters(m) {
				passed = append(passed, symbol)
			}
		}
		if len(passed) > 0 {
			s.log.Info("Stocks passing initial filters", logger.IntField("count", len(passed)))
		}

		for _, symbol := range passed {
			if !utils.ShouldContinue(ctx, s.log) {
				break
			}

			profile, ok, err := s.analyzeSymbol(ctx, symbol)
			if err != nil {
				s.log.Error("Error analyzing symbol",
					logger.StringField("symbol", symbol),
					logger.ErrorField(err))
				continue
			}
			if !ok {
				continue
			}

			profiles = append(profiles, *profile)
			s.log.Info("Added promising stock", logger.StringField("symbol", symbol))
		}

		if batchNum < totalBatches-1 {
			s.pause(ctx)
		}
	}

	elapsed := time.Since(start)
	s.log.Info("Scan complete",
		logger.IntField("promising", len(profiles)),
		logger.Field("elapsed", elapsed))

	s.exportResults(ctx, profiles, start, elapsed)

	return profiles, nil
}

// pause is the coarse inter-batch throttle. The token bucket inside the
// market data gateway is the primary rate control; this keeps batches
// from stacking up against providers with per-window quotas.
func (s *scannerService) pause(ctx context.Context) {
	timer := time.NewTimer(s.cfg.Scanner.BatchPause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// getBatchMetrics fans history fetches out across a bounded worker set.
// A symbol whose fetch fails is simply absent from the result.
func (s *scannerService) getBatchMetrics(ctx context.Context, batch []string) map[string]dto.BatchMetrics {
	metrics := make(map[string]dto.BatchMetrics, len(batch))
	var wg sync.WaitGroup
	var mu sync.Mutex
	semaphore := make(chan struct{}, s.cfg.Scanner.MaxConcurrentFetch)

	for _, symbol := range batch {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		symbol := symbol
		wg.Add(1)
		utils.GoSafe(func() {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			history, err := s.history(ctx, symbol)
			if err != nil {
				s.log.Error("Failed to fetch metrics",
					logger.StringField("symbol", symbol),
					logger.ErrorField(err))
				return
			}

			m, err := buildBatchMetrics(symbol, history)
			if err != nil {
				s.log.Debug("Skipping symbol with unusable history",
					logger.StringField("symbol", symbol),
					logger.ErrorField(err))
				return
			}

			mu.Lock()
			metrics[symbol] = m
			mu.Unlock()
		})
	}

	wg.Wait()
	return metrics
}

// history returns the symbol's price history, fetching it at most once
// per scan.
func (s *scannerService) history(ctx context.Context, symbol string) (*dto.PriceHistory, error) {
	if cached, ok := s.historyCache.Get(symbol); ok {
		return cached.(*dto.PriceHistory), nil
	}

	history, err := s.marketData.GetHistory(ctx, symbol, s.cfg.Scanner.HistoryDays)
	if err != nil {
		return nil, err
	}

	s.historyCache.Set(symbol, history, cache.DefaultExpiration)
	return history, nil
}

func buildBatchMetrics(symbol string, history *dto.PriceHistory) (dto.BatchMetrics, error) {
	if len(history.Bars) == 0 {
		return dto.BatchMetrics{}, fmt.Errorf("no bars for %s", symbol)
	}

	closes := history.Closes()
	volumes := history.Volumes()

	volatility, err := indicator.AnnualizedVolatility(closes, 0)
	if err != nil {
		return dto.BatchMetrics{}, fmt.Errorf("volatility for %s: %w", symbol, err)
	}

	last := history.Bars[len(history.Bars)-1]
	return dto.BatchMetrics{
		Symbol:     symbol,
		Price:      last.Close,
		Volume:     last.Volume,
		AvgVolume:  indicator.MeanVolume(volumes),
		Volatility: volatility,
	}, nil
}

// passesInitialFilters is the cheap stage-1 screen. All conditions are
// conjunctive with inclusive bounds, and a missing metric (NaN) fails
// the symbol closed.
func (s *scannerService) passesInitialFilters(m dto.BatchMetrics) bool {
	f := s.cfg.Scanner.Filters

	if math.IsNaN(m.Price) || math.IsNaN(m.Volatility) {
		return false
	}
	if m.Price < f.MinPrice || m.Price > f.MaxPrice {
		return false
	}
	if m.Volume < f.MinVolume {
		return false
	}
	if m.Volatility < f.MinVolatility || m.Volatility > f.MaxVolatility {
		return false
	}

	return true
}

// analyzeSymbol runs the stage-2 filter and, when it passes, gathers the
// full profile. The bool result reports whether the symbol survived.
func (s *scannerService) analyzeSymbol(ctx context.Context, symbol string) (*dto.StockProfile, bool, error) {
	history, err := s.history(ctx, symbol)
	if err != nil {
		return nil, false, err
	}

	tech, ok := s.detailedAnalysis(history)
	if !ok {
		return nil, false, nil
	}

	profile := s.gatherProfile(ctx, symbol, history, tech)
	return profile, true, nil
}

// detailedAnalysis evaluates the five stage-2 conditions. A history
// shorter than minHistoryBars is rejected outright.
func (s *scannerService) detailedAnalysis(history *dto.PriceHistory) (dto.TechnicalProfile, bool) {
	if len(history.Bars) < minHistoryBars {
		return dto.TechnicalProfile{}, false
	}

	f := s.cfg.Scanner.Filters
	closes := history.Closes()
	volumes := history.Volumes()
	last := len(closes) - 1

	sma20 := indicator.SMA(closes, smaShortWindow)
	sma50 := indicator.SMA(closes, smaLongWindow)
	rsi := indicator.RSI(closes, f.RSIPeriod)
	surge := indicator.VolumeSurge(volumes)

	momentum, err := indicator.Momentum(closes, f.MomentumLookback)
	if err != nil {
		return dto.TechnicalProfile{}, false
	}
	volatility, err := indicator.AnnualizedVolatility(closes, 0)
	if err != nil {
		return dto.TechnicalProfile{}, false
	}

	tech := dto.TechnicalProfile{
		Momentum:    momentum,
		Volatility:  volatility,
		RSI:         rsi[last],
		VolumeSurge: surge,
	}

	// NaN indicator values fail their comparison, excluding the symbol.
	passed := surge > f.VolumeSurgeFactor &&
		closes[last] > sma20[last] &&
		sma20[last] > sma50[last] &&
		rsi[last] >= f.RSIOversold && rsi[last] <= f.RSIOverbought &&
		momentum > f.MinMomentum

	return tech, passed
}

// gatherProfile assembles the final record for a symbol that passed both
// stages. Enrichment failures degrade to empty values rather than
// excluding the symbol.
func (s *scannerService) gatherProfile(ctx context.Context, symbol string, history *dto.PriceHistory, tech dto.TechnicalProfile) *dto.StockProfile {
	info, err := s.marketData.GetCompanyInfo(ctx, symbol)
	if err != nil {
		s.log.Warn("Failed to fetch company info, continuing without it",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err))
		info = &dto.CompanyInfo{}
	}

	news := s.news.Analyze(ctx, symbol, s.cfg.News.DaysToAnalyze)

	last := history.Bars[len(history.Bars)-1]
	profile := &dto.StockProfile{
		Symbol:       symbol,
		CompanyName:  info.Name,
		Sector:       info.Sector,
		MarketCap:    info.MarketCap,
		CurrentPrice: last.Close,
		Volume:       last.Volume,
		ScanTime:     time.Now().UTC(),
		Technical:    tech,
		News:         news,
	}
	profile.Reasons = s.buildReasons(tech, news)

	return profile
}

// buildReasons produces the ordered, human-readable justification list.
// Technical reasons always come first in a fixed order; news reasons are
// appended only when the coverage is significant. The order is part of
// the output contract.
func (s *scannerService) buildReasons(tech dto.TechnicalProfile, news dto.NewsAnalysis) []string {
	f := s.cfg.Scanner.Filters
	var reasons []string

	if tech.VolumeSurge > f.VolumeSurgeFactor {
		reasons = append(reasons, fmt.Sprintf("Volume surge: %.1fx average", tech.VolumeSurge))
	}
	if tech.Momentum > f.MinMomentum {
		reasons = append(reasons, fmt.Sprintf("Strong momentum: %.1f%%", tech.Momentum*100))
	}
	if tech.RSI >= rsiNeutralLow && tech.RSI <= rsiNeutralHigh {
		reasons = append(reasons, fmt.Sprintf("Neutral RSI: %.1f", tech.RSI))
	}
	if tech.Volatility >= f.MinVolatility && tech.Volatility <= f.MaxVolatility {
		reasons = append(reasons, fmt.Sprintf("Healthy volatility: %.1f%%", tech.Volatility*100))
	}

	if !news.HasSignificantNews {
		return reasons
	}

	sameSign := (tech.Momentum > 0 && news.SentimentScore > 0) ||
		(tech.Momentum < 0 && news.SentimentScore < 0)
	if sameSign {
		reasons = append(reasons, fmt.Sprintf("News sentiment %.2f confirms %.1f%% momentum",
			news.SentimentScore, tech.Momentum*100))
	}

	reasons = append(reasons, s.describeNewsCoverage(news))

	for i, item := range news.RecentNews {
		if i == 3 {
			break
		}
		reasons = append(reasons, "Recent: "+item.Title)
	}

	return reasons
}

func (s *scannerService) describeNewsCoverage(news dto.NewsAnalysis) string {
	n := s.cfg.News

	tone := "Neutral"
	if news.SentimentScore > n.MinSentimentScore {
		tone = "Positive"
	} else if news.SentimentScore < -n.MinSentimentScore {
		tone = "Negative"
	}

	volume := "high"
	if news.NewsVolumeScore < n.ModerateVolume {
		volume = "low"
	} else if news.NewsVolumeScore < n.HighVolume {
		volume = "moderate"
	}

	return fmt.Sprintf("%s news coverage with %s news volume (sentiment %.2f)",
		tone, volume, news.SentimentScore)
}

// exportResults runs the optional post-scan steps: persistence, stream
// publishing, and notification. Each failure is logged and the others
// still run.
func (s *scannerService) exportResults(ctx context.Context, profiles []dto.StockProfile, scanTime time.Time, elapsed time.Duration) {
	if s.profileRepo != nil && len(profiles) > 0 {
		records := make([]*entity.StockProfile, 0, len(profiles))
		for i := range profiles {
			record, err := toProfileEntity(&profiles[i])
			if err != nil {
				s.log.Error("Failed to convert profile for storage",
					logger.StringField("symbol", profiles[i].Symbol),
					logger.ErrorField(err))
				continue
			}
			records = append(records, record)
		}
		if err := s.profileRepo.Create(ctx, records); err != nil {
			s.log.Error("Failed to persist scan results", logger.ErrorField(err))
		}
	}

	if s.redisClient != nil {
		for i := range profiles {
			payload, err := json.Marshal(&profiles[i])
			if err != nil {
				s.log.Error("Failed to marshal profile for publishing",
					logger.StringField("symbol", profiles[i].Symbol),
					logger.ErrorField(err))
				continue
			}
			if err := s.redisClient.XAdd(ctx, &goRedis.XAddArgs{
				Stream: common.RedisStreamScanResults,
				MaxLen: s.cfg.Redis.StreamMaxLen,
				Approx: true,
				Values: map[string]interface{}{"payload": string(payload)},
			}).Err(); err != nil {
				s.log.Error("Failed to publish profile to stream",
					logger.StringField("symbol", profiles[i].Symbol),
					logger.ErrorField(err))
			}
		}
	}

	if s.notifier != nil {
		msg := telegram.FormatScanSummary(profiles, scanTime, elapsed)
		if err := s.notifier.SendMessage(msg); err != nil {
			s.log.Error("Failed to send scan summary", logger.ErrorField(err))
		}
	}
}

func toProfileEntity(p *dto.StockProfile) (*entity.StockProfile, error) {
	newsJSON, err := json.Marshal(p.News)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal news analysis: %w", err)
	}

	return &entity.StockProfile{
		Symbol:       p.Symbol,
		CompanyName:  p.CompanyName,
		Sector:       p.Sector,
		MarketCap:    p.MarketCap,
		CurrentPrice: p.CurrentPrice,
		Volume:       p.Volume,
		ScanTime:     p.ScanTime,
		Momentum:     p.Technical.Momentum,
		Volatility:   p.Technical.Volatility,
		RSI:          p.Technical.RSI,
		VolumeSurge:  p.Technical.VolumeSurge,
		Reasons:      p.Reasons,
		News:         datatypes.JSON(newsJSON),
	}, nil
}
