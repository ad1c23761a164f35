package repository

import (
	"context"

	"golang-market-scanner/internal/entity"
	"golang-market-scanner/internal/scanner/dto"
)

// MarketDataRepository fetches price/volume history and company
// enrichment from the market data provider.
type MarketDataRepository interface {
	// GetHistory returns up to rangeDays of daily bars, chronologically
	// ascending.
	GetHistory(ctx context.Context, symbol string, rangeDays int) (*dto.PriceHistory, error)
	// GetCompanyInfo returns name, sector, and market cap for a symbol.
	GetCompanyInfo(ctx context.Context, symbol string) (*dto.CompanyInfo, error)
}

// NewsRepository fetches news for one symbol from a single provider.
type NewsRepository interface {
	Name() string
	GetNews(ctx context.Context, symbol string, daysBack int) ([]dto.NewsItem, error)
}

// IndexRepository lists the components of one market index. Sources may
// fail independently; the universe resolver isolates those failures.
type IndexRepository interface {
	Name() string
	ListComponents(ctx context.Context) ([]string, error)
}

// StockProfileRepository persists produced scan results.
type StockProfileRepository interface {
	Create(ctx context.Context, profiles []*entity.StockProfile) error
}
