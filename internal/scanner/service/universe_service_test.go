package service

import (
	"context"
	"errors"
	"testing"

	"golang-market-scanner/internal/scanner/repository"
	"golang-market-scanner/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexRepository struct {
	name       string
	components []string
	err        error
}

func (f *fakeIndexRepository) Name() string { return f.name }

func (f *fakeIndexRepository) ListComponents(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.components, nil
}

func TestUniverseServiceResolve(t *testing.T) {
	log := logger.NewNop()

	t.Run("unions and deduplicates sources", func(t *testing.T) {
		svc := NewUniverseService(log, []repository.IndexRepository{
			&fakeIndexRepository{name: "sp500", components: []string{"MSFT", "AAPL", "NVDA"}},
			&fakeIndexRepository{name: "watchlist", components: []string{"AAPL", "AMZN"}},
		})

		symbols, err := svc.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "AMZN", "MSFT", "NVDA"}, symbols)
	})

	t.Run("failing source is skipped", func(t *testing.T) {
		svc := NewUniverseService(log, []repository.IndexRepository{
			&fakeIndexRepository{name: "broken", err: errors.New("http 503")},
			&fakeIndexRepository{name: "watchlist", components: []string{"AAPL"}},
		})

		symbols, err := svc.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL"}, symbols)
	})

	t.Run("no sources yields empty universe", func(t *testing.T) {
		svc := NewUniverseService(log, nil)

		symbols, err := svc.Resolve(context.Background())
		require.NoError(t, err)
		assert.Empty(t, symbols)
	})

	t.Run("cancellation aborts resolution", func(t *testing.T) {
		svc := NewUniverseService(log, []repository.IndexRepository{
			&fakeIndexRepository{name: "watchlist", components: []string{"AAPL"}},
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Resolve(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
