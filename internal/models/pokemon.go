package models

// PokemonReference maps a Pokémon's canonical name to a local id used to key
// comments. Attributes (types, stats, sprites) are never stored here.
type PokemonReference struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:pokemon_name;uniqueIndex;not null" json:"name"`
}

func (PokemonReference) TableName() string {
	return "pokemon"
}
