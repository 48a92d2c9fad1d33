package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"fantoken-intel/internal/storage/memory"
)

func TestCatalog_UniqueKeys(t *testing.T) {
	symbols := make(map[string]struct{})
	for _, tok := range Tokens() {
		if tok.Symbol == "" {
			t.Error("token with empty symbol")
		}
		if _, dup := symbols[tok.Symbol]; dup {
			t.Errorf("duplicate token symbol %q", tok.Symbol)
		}
		symbols[tok.Symbol] = struct{}{}
	}

	codes := make(map[string]struct{})
	priorities := make(map[int]struct{})
	for _, e := range Exchanges() {
		if _, dup := codes[e.Code]; dup {
			t.Errorf("duplicate exchange code %q", e.Code)
		}
		codes[e.Code] = struct{}{}
		if _, dup := priorities[e.Priority]; dup {
			t.Errorf("duplicate exchange priority %d", e.Priority)
		}
		priorities[e.Priority] = struct{}{}
	}
}

func TestSeeder_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	tokens := memory.NewTokenStore()
	exchanges := memory.NewExchangeStore()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	seeder := NewSeeder(tokens, exchanges, logger)
	for i := 0; i < 2; i++ {
		if err := seeder.Seed(ctx); err != nil {
			t.Fatalf("seed pass %d: %v", i, err)
		}
	}

	all, err := tokens.GetAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != len(Tokens()) {
		t.Errorf("expected %d tokens after double seed, got %d", len(Tokens()), len(all))
	}

	active, err := exchanges.GetActive(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(active) != len(Exchanges()) {
		t.Errorf("expected %d exchanges, got %d", len(Exchanges()), len(active))
	}
}
