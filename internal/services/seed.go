package services

import (
	"context"
	"fmt"

	"pokedex/internal/models"

	"go.uber.org/zap"
)

type nationalLister interface {
	FetchNationalListing(ctx context.Context) ([]PokedexEntry, error)
}

type referenceInserter interface {
	InsertMany(ctx context.Context, refs []models.PokemonReference) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// Seeder populates the Pokémon reference table from the national dex.
type Seeder struct {
	api    nationalLister
	refs   referenceInserter
	logger *zap.Logger
}

func NewSeeder(api nationalLister, refs referenceInserter, logger *zap.Logger) *Seeder {
	return &Seeder{api: api, refs: refs, logger: logger}
}

// Populate inserts one row per national dex entry, keyed by name with the
// entry number as id. Existing rows are skipped. It returns the number of
// rows inserted.
func (s *Seeder) Populate(ctx context.Context) (int64, error) {
	entries, err := s.api.FetchNationalListing(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch national dex: %w", err)
	}

	refs := make([]models.PokemonReference, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.Number <= 0 {
			continue
		}
		refs = append(refs, models.PokemonReference{ID: uint(e.Number), Name: e.Name})
	}

	inserted, err := s.refs.InsertMany(ctx, refs)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Pokemon references seeded",
		zap.Int("fetched", len(entries)),
		zap.Int64("inserted", inserted))
	return inserted, nil
}

// PopulateIfEmpty seeds only when the table has no rows yet.
func (s *Seeder) PopulateIfEmpty(ctx context.Context) (int64, error) {
	count, err := s.refs.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("Pokemon references already seeded, skipping", zap.Int64("count", count))
		return 0, nil
	}
	return s.Populate(ctx)
}
