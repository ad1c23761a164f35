package service

import (
	"context"
	"sort"

	"golang-market-scanner/internal/scanner/repository"
	"golang-market-scanner/pkg/logger"
)

// UniverseService resolves the set of symbols eligible for scanning.
type UniverseService interface {
	Resolve(ctx context.Context) ([]string, error)
}

type universeService struct {
	log     *logger.Logger
	sources []repository.IndexRepository
}

// NewUniverseService creates a resolver over the configured index
// sources.
func NewUniverseService(log *logger.Logger, sources []repository.IndexRepository) UniverseService {
	return &universeService{log: log, sources: sources}
}

// Resolve unions the component sets of every source. A failing source
// contributes nothing and scanning proceeds with the remaining sources;
// only cancellation aborts. The result is sorted and duplicate-free.
func (s *universeService) Resolve(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	for _, source := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		components, err := source.ListComponents(ctx)
		if err != nil {
			s.log.Error("Failed to fetch index components",
				logger.StringField("index", source.Name()),
				logger.ErrorField(err))
			continue
		}

		for _, symbol := range components {
			seen[symbol] = struct{}{}
		}
		s.log.Info("Added index components",
			logger.StringField("index", source.Name()),
			logger.IntField("count", len(components)))
	}

	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	s.log.Info("Resolved tradable universe", logger.IntField("total", len(symbols)))
	return symbols, nil
}
