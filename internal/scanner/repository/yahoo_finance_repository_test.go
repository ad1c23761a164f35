package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-market-scanner/internal/scanner/config"
	"golang-market-scanner/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yahooTestConfig(baseURL string) *config.Config {
	cfg := &config.Config{}
	cfg.YahooFinance.BaseURL = baseURL
	cfg.YahooFinance.MaxRequestPerMinute = 6000
	cfg.Retry.MaxAttempts = 1
	cfg.Retry.Delay = time.Millisecond
	return cfg
}

func TestYahooFinanceRepositoryGetHistory(t *testing.T) {
	chartJSON := `{
	  "chart": {
	    "result": [{
	      "meta": {"symbol": "AAPL"},
	      "timestamp": [1714521600, 1714608000, 1714694400],
	      "indicators": {"quote": [{
	        "open":   [169.5, null, 172.1],
	        "high":   [171.0, null, 173.0],
	        "low":    [168.9, null, 171.4],
	        "close":  [170.3, null, 172.8],
	        "volume": [52000000, null, 61000000]
	      }]}
	    }],
	    "error": null
	  }
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v8/finance/chart/AAPL")
		_, _ = w.Write([]byte(chartJSON))
	}))
	defer srv.Close()

	repo := NewYahooFinanceRepository(yahooTestConfig(srv.URL), logger.NewNop())

	history, err := repo.GetHistory(context.Background(), "AAPL", 60)
	require.NoError(t, err)
	require.Len(t, history.Bars, 2, "null bar must be skipped")

	assert.Equal(t, "AAPL", history.Symbol)
	assert.Equal(t, 170.3, history.Bars[0].Close)
	assert.Equal(t, int64(52000000), history.Bars[0].Volume)
	assert.Equal(t, 172.8, history.Bars[1].Close)
	assert.Equal(t, time.Unix(1714694400, 0).UTC(), history.Bars[1].Timestamp)
}

func TestYahooFinanceRepositoryChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	repo := NewYahooFinanceRepository(yahooTestConfig(srv.URL), logger.NewNop())

	_, err := repo.GetHistory(context.Background(), "NOPE", 60)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}

func TestYahooFinanceRepositoryGetCompanyInfo(t *testing.T) {
	summaryJSON := `{
	  "quoteSummary": {
	    "result": [{
	      "assetProfile": {"sector": "Technology", "industry": "Consumer Electronics"},
	      "price": {"longName": "Apple Inc.", "shortName": "Apple", "marketCap": {"raw": 2950000000000}}
	    }],
	    "error": null
	  }
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v10/finance/quoteSummary/AAPL")
		_, _ = w.Write([]byte(summaryJSON))
	}))
	defer srv.Close()

	repo := NewYahooFinanceRepository(yahooTestConfig(srv.URL), logger.NewNop())

	info, err := repo.GetCompanyInfo(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", info.Name)
	assert.Equal(t, "Technology", info.Sector)
	assert.Equal(t, 2.95e12, info.MarketCap)
}

func TestYahooFinanceRepositoryNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	repo := NewYahooFinanceRepository(yahooTestConfig(srv.URL), logger.NewNop())

	_, err := repo.GetHistory(context.Background(), "AAPL", 60)
	assert.Error(t, err)
}
