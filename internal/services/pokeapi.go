package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"pokedex/internal/common"
)

// PokeAPIClient fetches live Pokémon data. Every call is a network round
// trip: nothing is cached and nothing is retried.
type PokeAPIClient struct {
	baseURL string
	client  *http.Client
}

// NewPokeAPIClient creates a client rooted at baseURL, e.g. https://pokeapi.co/api/v2.
// The http.Client has no timeout of its own; callers bound calls through ctx.
func NewPokeAPIClient(baseURL string, client *http.Client) *PokeAPIClient {
	if client == nil {
		client = &http.Client{}
	}
	return &PokeAPIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

type PokemonStat struct {
	Name     string
	BaseStat int
}

type PokemonAbility struct {
	Name   string
	Hidden bool
}

// PokemonDetail is the view data for a single Pokémon.
type PokemonDetail struct {
	ID             int
	Name           string
	Types          []string
	Stats          []PokemonStat
	Moves          []string
	Abilities      []PokemonAbility
	BaseExperience int
	FrontDefault   string
	FrontShiny     string
}

type PokedexEntry struct {
	Number int
	Name   string
}

type Pokedex struct {
	Name        string
	DisplayName string
	Entries     []PokedexEntry
}

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pokemonResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	BaseExperience int    `json:"base_experience"`
	Types          []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Moves []struct {
		Move namedResource `json:"move"`
	} `json:"moves"`
	Abilities []struct {
		Ability  namedResource `json:"ability"`
		IsHidden bool          `json:"is_hidden"`
	} `json:"abilities"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
		FrontShiny   string `json:"front_shiny"`
	} `json:"sprites"`
}

type pokedexResponse struct {
	Name  string `json:"name"`
	Names []struct {
		Name     string        `json:"name"`
		Language namedResource `json:"language"`
	} `json:"names"`
	PokemonEntries []struct {
		EntryNumber    int           `json:"entry_number"`
		PokemonSpecies namedResource `json:"pokemon_species"`
	} `json:"pokemon_entries"`
}

// FetchDetail loads types, stats, moves, abilities, base experience and
// sprites for one Pokémon.
func (c *PokeAPIClient) FetchDetail(ctx context.Context, name string) (*PokemonDetail, error) {
	var resp pokemonResponse
	if err := c.getJSON(ctx, "/pokemon/"+url.PathEscape(name)+"/", &resp); err != nil {
		return nil, err
	}

	detail := &PokemonDetail{
		ID:             resp.ID,
		Name:           resp.Name,
		BaseExperience: resp.BaseExperience,
		FrontDefault:   resp.Sprites.FrontDefault,
		FrontShiny:     resp.Sprites.FrontShiny,
	}
	for _, t := range resp.Types {
		detail.Types = append(detail.Types, t.Type.Name)
	}
	for _, s := range resp.Stats {
		detail.Stats = append(detail.Stats, PokemonStat{Name: s.Stat.Name, BaseStat: s.BaseStat})
	}
	for _, m := range resp.Moves {
		detail.Moves = append(detail.Moves, m.Move.Name)
	}
	for _, a := range resp.Abilities {
		detail.Abilities = append(detail.Abilities, PokemonAbility{Name: a.Ability.Name, Hidden: a.IsHidden})
	}
	return detail, nil
}

// FetchPokedex loads a regional or national pokedex listing.
func (c *PokeAPIClient) FetchPokedex(ctx context.Context, dexName string) (*Pokedex, error) {
	var resp pokedexResponse
	if err := c.getJSON(ctx, "/pokedex/"+url.PathEscape(dexName), &resp); err != nil {
		return nil, err
	}

	dex := &Pokedex{Name: resp.Name, DisplayName: resp.Name}
	for _, n := range resp.Names {
		if n.Language.Name == "en" && n.Name != "" {
			dex.DisplayName = n.Name
			break
		}
	}
	dex.Entries = make([]PokedexEntry, 0, len(resp.PokemonEntries))
	for _, e := range resp.PokemonEntries {
		dex.Entries = append(dex.Entries, PokedexEntry{Number: e.EntryNumber, Name: e.PokemonSpecies.Name})
	}
	return dex, nil
}

// FetchNationalListing returns every species of the national dex in order.
func (c *PokeAPIClient) FetchNationalListing(ctx context.Context) ([]PokedexEntry, error) {
	dex, err := c.FetchPokedex(ctx, "national")
	if err != nil {
		return nil, err
	}
	return dex.Entries, nil
}

func (c *PokeAPIClient) getJSON(ctx context.Context, path string, out interface{}) error {
	endpoint := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &common.UpstreamError{URL: endpoint, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &common.UpstreamError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &common.UpstreamError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &common.UpstreamError{URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
