package dto

// YahooChartResponse mirrors the Yahoo Finance v8 chart payload.
type YahooChartResponse struct {
	Chart YahooChart `json:"chart"`
}

type YahooChart struct {
	Result []YahooChartResult `json:"result"`
	Error  *YahooAPIError     `json:"error"`
}

type YahooAPIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type YahooChartResult struct {
	Meta       YahooChartMeta  `json:"meta"`
	Timestamp  []int64         `json:"timestamp"`
	Indicators YahooIndicators `json:"indicators"`
}

type YahooChartMeta struct {
	Currency           string  `json:"currency"`
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type YahooIndicators struct {
	Quote []YahooQuote `json:"quote"`
}

// YahooQuote columns are position-aligned with Timestamp; entries may be
// null when the exchange reported no trade for a bar.
type YahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// YahooQuoteSummaryResponse mirrors the v10 quoteSummary payload for the
// assetProfile and price modules.
type YahooQuoteSummaryResponse struct {
	QuoteSummary YahooQuoteSummary `json:"quoteSummary"`
}

type YahooQuoteSummary struct {
	Result []YahooQuoteSummaryResult `json:"result"`
	Error  *YahooAPIError            `json:"error"`
}

type YahooQuoteSummaryResult struct {
	AssetProfile *YahooAssetProfile `json:"assetProfile"`
	Price        *YahooPrice        `json:"price"`
}

type YahooAssetProfile struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

type YahooPrice struct {
	LongName  string        `json:"longName"`
	ShortName string        `json:"shortName"`
	MarketCap YahooRawValue `json:"marketCap"`
}

type YahooRawValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}
