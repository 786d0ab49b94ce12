package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pokedex/internal/common"
	"pokedex/internal/forms"
	"pokedex/internal/models"

	"gorm.io/gorm"
)

// CommentStore persists comments. Only the author may change or remove one.
type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) Add(ctx context.Context, text string, authorID, pokemonID uint) (*models.Comment, error) {
	if err := forms.ValidateComment(text); err != nil {
		return nil, err
	}

	comment := models.Comment{
		Text:      strings.TrimSpace(text),
		Timestamp: time.Now().UTC(),
		UserID:    authorID,
		PokemonID: pokemonID,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", wrapGormError(err))
	}
	return &comment, nil
}

func (s *CommentStore) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Preload("Pokemon").First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("comment", id)
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// Update replaces the text of a comment owned by requesterID.
func (s *CommentStore) Update(ctx context.Context, id uint, text string, requesterID uint) (*models.Comment, error) {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != requesterID {
		return nil, common.ErrUnauthorized
	}
	if err := forms.ValidateComment(text); err != nil {
		return nil, err
	}

	comment.Text = strings.TrimSpace(text)
	if err := s.db.WithContext(ctx).Model(comment).Update("text", comment.Text).Error; err != nil {
		return nil, fmt.Errorf("update comment %d: %w", id, err)
	}
	return comment, nil
}

// Delete removes a comment owned by requesterID.
func (s *CommentStore) Delete(ctx context.Context, id uint, requesterID uint) error {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != requesterID {
		return common.ErrUnauthorized
	}
	if err := s.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return nil
}

// ListByUser returns at most limit comments by userID, newest first.
func (s *CommentStore) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Pokemon").
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of user %d: %w", userID, err)
	}
	return comments, nil
}

// ListByPokemon returns every comment on a Pokémon with its author, newest first.
func (s *CommentStore) ListByPokemon(ctx context.Context, pokemonID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("pokemon_id = ?", pokemonID).
		Order("timestamp DESC, id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments of pokemon %d: %w", pokemonID, err)
	}
	return comments, nil
}

// ListRecent returns the newest comments site-wide with author and Pokémon.
func (s *CommentStore) ListRecent(ctx context.Context, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Pokemon").
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list recent comments: %w", err)
	}
	return comments, nil
}
