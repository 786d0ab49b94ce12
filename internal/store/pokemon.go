package store

import (
	"context"
	"errors"
	"fmt"

	"pokedex/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PokemonStore reads and seeds the local name → id reference table.
type PokemonStore struct {
	db *gorm.DB
}

func NewPokemonStore(db *gorm.DB) *PokemonStore {
	return &PokemonStore{db: db}
}

func (s *PokemonStore) FindByName(ctx context.Context, name string) (*models.PokemonReference, error) {
	var ref models.PokemonReference
	if err := s.db.WithContext(ctx).Where("pokemon_name = ?", name).First(&ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("pokemon", name)
		}
		return nil, fmt.Errorf("find pokemon %q: %w", name, err)
	}
	return &ref, nil
}

func (s *PokemonStore) All(ctx context.Context) ([]models.PokemonReference, error) {
	var refs []models.PokemonReference
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&refs).Error; err != nil {
		return nil, fmt.Errorf("list pokemon: %w", err)
	}
	return refs, nil
}

func (s *PokemonStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.PokemonReference{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count pokemon: %w", err)
	}
	return count, nil
}

// InsertMany inserts refs in batches, skipping any whose id or name already
// exists. It returns the number of rows actually inserted, measured by
// counting around the insert since RowsAffected includes skipped rows on
// some drivers.
func (s *PokemonStore) InsertMany(ctx context.Context, refs []models.PokemonReference) (int64, error) {
	if len(refs) == 0 {
		return 0, nil
	}

	var inserted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var before, after int64
		if err := tx.Model(&models.PokemonReference{}).Count(&before).Error; err != nil {
			return fmt.Errorf("count pokemon: %w", err)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(refs, 200).Error; err != nil {
			return fmt.Errorf("insert pokemon: %w", err)
		}
		if err := tx.Model(&models.PokemonReference{}).Count(&after).Error; err != nil {
			return fmt.Errorf("count pokemon: %w", err)
		}
		inserted = after - before
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
