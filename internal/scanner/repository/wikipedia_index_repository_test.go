package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-market-scanner/pkg/logger"
	"golang-market-scanner/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"AAPL", "AAPL"},
		{" msft \n", "MSFT"},
		{"BRK.B", "BRK-B"},
		{"BF.B", "BF-B"},
		{"", ""},
		{"TOOLONGSYM", ""},
		{"Allianz SE", ""},
		{"N/A", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeSymbol(tc.raw), "raw=%q", tc.raw)
	}
}

func TestWikipediaIndexRepositoryListComponents(t *testing.T) {
	page := `<html><body>
	<table class="wikitable">
	  <tbody>
	    <tr><th>Symbol</th><th>Security</th></tr>
	    <tr><td>AAPL</td><td>Apple</td></tr>
	    <tr><td>BRK.B</td><td>Berkshire Hathaway</td></tr>
	    <tr><td>MSFT</td><td>Microsoft</td></tr>
	  </tbody>
	</table>
	<table class="wikitable"><tbody><tr><td>IGNORED</td></tr></tbody></table>
	</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	repo := NewWikipediaIndexRepository("sp500", srv.URL, logger.NewNop(), retry.Default)

	symbols, err := repo.ListComponents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "BRK-B", "MSFT"}, symbols)
}

func TestWikipediaIndexRepositoryEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>no tables here</p></body></html>"))
	}))
	defer srv.Close()

	repo := NewWikipediaIndexRepository("sp500", srv.URL, logger.NewNop(), retry.Default)

	_, err := repo.ListComponents(context.Background())
	assert.Error(t, err)
}
