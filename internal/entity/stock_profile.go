package entity

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// StockProfile is a persisted scan result. The technical indicator
// values are flattened into columns for querying; the full news analysis
// is kept as jsonb.
type StockProfile struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Symbol       string         `gorm:"not null;index" json:"symbol"`
	CompanyName  string         `json:"company_name"`
	Sector       string         `json:"sector"`
	MarketCap    float64        `json:"market_cap"`
	CurrentPrice float64        `json:"current_price"`
	Volume       int64          `json:"volume"`
	ScanTime     time.Time      `gorm:"not null;index" json:"scan_time"`
	Momentum     float64        `json:"momentum"`
	Volatility   float64        `json:"volatility"`
	RSI          float64        `json:"rsi"`
	VolumeSurge  float64        `json:"volume_surge"`
	Reasons      pq.StringArray `gorm:"type:text[]" json:"reasons"`
	News         datatypes.JSON `gorm:"type:jsonb" json:"news"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the StockProfile model.
func (StockProfile) TableName() string {
	return "stock_profiles"
}
