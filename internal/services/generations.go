package services

import (
	"context"
	"time"

	"pokedex/internal/models"
	"pokedex/internal/utils"
)

// Generation is a contiguous national-dex id range.
type Generation struct {
	Name    string
	Region  string
	Pokedex string // PokeAPI pokedex slug for the regional listing
	FirstID uint
	LastID  uint
}

var Generations = []Generation{
	{Name: "Generation I", Region: "Kanto", Pokedex: "kanto", FirstID: 1, LastID: 151},
	{Name: "Generation II", Region: "Johto", Pokedex: "original-johto", FirstID: 152, LastID: 251},
	{Name: "Generation III", Region: "Hoenn", Pokedex: "hoenn", FirstID: 252, LastID: 386},
	{Name: "Generation IV", Region: "Sinnoh", Pokedex: "original-sinnoh", FirstID: 387, LastID: 493},
	{Name: "Generation V", Region: "Unova", Pokedex: "original-unova", FirstID: 494, LastID: 649},
	{Name: "Generation VI", Region: "Kalos", Pokedex: "kalos-central", FirstID: 650, LastID: 721},
	{Name: "Generation VII", Region: "Alola", Pokedex: "original-alola", FirstID: 722, LastID: 809},
	{Name: "Generation VIII", Region: "Galar", Pokedex: "galar", FirstID: 810, LastID: 905},
	{Name: "Generation IX", Region: "Paldea", Pokedex: "paldea", FirstID: 906, LastID: 1025},
}

type GenerationGroup struct {
	Generation
	Pokemon []models.PokemonReference
}

type referenceLister interface {
	All(ctx context.Context) ([]models.PokemonReference, error)
}

const generationsCacheKey = "pokemon:generations"

// GenerationService groups the reference table by generation. The result is
// cached because the table only changes when it is seeded.
type GenerationService struct {
	refs  referenceLister
	cache *utils.Cache
	ttl   time.Duration
}

func NewGenerationService(refs referenceLister, cache *utils.Cache) *GenerationService {
	return &GenerationService{refs: refs, cache: cache, ttl: 10 * time.Minute}
}

func (s *GenerationService) Grouped(ctx context.Context) ([]GenerationGroup, error) {
	if cached, ok := s.cache.Get(generationsCacheKey).([]GenerationGroup); ok {
		return cached, nil
	}

	refs, err := s.refs.All(ctx)
	if err != nil {
		return nil, err
	}
	groups := GroupByGeneration(refs)
	if len(refs) > 0 {
		s.cache.Set(generationsCacheKey, groups, s.ttl)
	}
	return groups, nil
}

// invalidate drops the cached grouping, e.g. after seeding.
func (s *GenerationService) invalidate() {
	s.cache.Delete(generationsCacheKey)
}

// GroupByGeneration buckets refs by id. Ids outside every range are dropped.
func GroupByGeneration(refs []models.PokemonReference) []GenerationGroup {
	groups := make([]GenerationGroup, len(Generations))
	for i, g := range Generations {
		groups[i].Generation = g
	}
	for _, ref := range refs {
		for i, g := range Generations {
			if ref.ID >= g.FirstID && ref.ID <= g.LastID {
				groups[i].Pokemon = append(groups[i].Pokemon, ref)
				break
			}
		}
	}
	return groups
}
