package repository

import (
	"context"
	"strings"
)

// staticIndexRepository serves a fixed symbol list from configuration.
// Used for custom watchlists and indexes without a scrapeable source.
type staticIndexRepository struct {
	name    string
	symbols []string
}

// NewStaticIndexRepository creates a config-backed universe source.
func NewStaticIndexRepository(name string, symbols []string) IndexRepository {
	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return &staticIndexRepository{name: name, symbols: cleaned}
}

func (r *staticIndexRepository) Name() string {
	return r.name
}

func (r *staticIndexRepository) ListComponents(_ context.Context) ([]string, error) {
	out := make([]string, len(r.symbols))
	copy(out, r.symbols)
	return out, nil
}
