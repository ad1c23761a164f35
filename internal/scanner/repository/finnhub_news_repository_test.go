package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"golang-market-scanner/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordSentiment(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"Shares surge on strong growth", 1},
		{"Stock prices fall as profits decline", -1},
		{"Revenue up but margins down", 0},
		{"Quarterly report published", 0},
		{"Gain gain gain drop", 0.5},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, keywordSentiment(tc.text), 1e-12, "text=%q", tc.text)
	}
}

func TestFinnhubNewsRepositoryGetNews(t *testing.T) {
	published := strconv.FormatInt(time.Now().Add(-24*time.Hour).Unix(), 10)
	payload := `[
	  {"headline": "Shares surge on growth", "summary": "Strong growth and gain", "source": "Reuters",
	   "url": "https://example.com/1", "datetime": ` + published + `},
	  {"headline": "Flat quarter", "summary": "Nothing notable", "source": "AP",
	   "url": "https://example.com/2", "datetime": ` + published + `}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Finnhub-Token"))
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	cfg := yahooTestConfig(srv.URL)
	cfg.News.FinnhubURL = srv.URL
	cfg.News.FinnhubAPIKey = "test-key"

	repo := NewFinnhubNewsRepository(cfg, logger.NewNop())

	items, err := repo.GetNews(context.Background(), "AAPL", 7)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Shares surge on growth", items[0].Title)
	require.NotNil(t, items[0].Sentiment)
	assert.InDelta(t, 1.0, *items[0].Sentiment, 1e-12)
	require.NotNil(t, items[1].Sentiment)
	assert.Zero(t, *items[1].Sentiment)
	assert.Equal(t, 1.0, items[0].Relevance)
}
