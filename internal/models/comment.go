package models

import (
	"time"
)

const MaxCommentLength = 140

type Comment struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	Text      string           `gorm:"size:140;not null" json:"text"`
	Timestamp time.Time        `gorm:"not null;index;autoCreateTime" json:"timestamp"` // set once on insert
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	User      User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	PokemonID uint             `gorm:"not null;index" json:"pokemon_id"`
	Pokemon   PokemonReference `gorm:"foreignKey:PokemonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"pokemon"`
}
