package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/storage"
)

// Seeder loads the static catalog into storage on startup. Seeding is
// idempotent: existing rows are refreshed, tokens deactivated by operators
// stay deactivated only if removed from the static lists first.
type Seeder struct {
	tokens    storage.TokenStore
	exchanges storage.ExchangeStore
	logger    *logrus.Logger
}

// NewSeeder creates a catalog seeder.
func NewSeeder(tokens storage.TokenStore, exchanges storage.ExchangeStore, logger *logrus.Logger) *Seeder {
	return &Seeder{tokens: tokens, exchanges: exchanges, logger: logger}
}

// Seed upserts every catalog token and exchange.
func (s *Seeder) Seed(ctx context.Context) error {
	for _, t := range Tokens() {
		if err := s.tokens.Upsert(ctx, t); err != nil {
			return fmt.Errorf("seed token %s: %w", t.Symbol, err)
		}
	}
	for _, e := range Exchanges() {
		if err := s.exchanges.Upsert(ctx, e); err != nil {
			return fmt.Errorf("seed exchange %s: %w", e.Code, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"tokens":    len(Tokens()),
		"exchanges": len(Exchanges()),
	}).Info("catalog seeded")

	return nil
}
