// Package store holds the gorm repositories for users, comments and Pokémon
// references.
package store

import (
	"errors"
	"fmt"
	"strings"

	"pokedex/internal/common"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// wrapGormError maps driver errors to the shared error taxonomy.
func wrapGormError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	if isDuplicateError(err) {
		return &common.DuplicateKeyError{Field: duplicateField(err), Err: err}
	}
	return err
}

func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return true
	}
	return false
}

// duplicateField names the unique column behind a violation. With
// TranslateError on, gorm replaces the driver error, so the caller-supplied
// probe in resolveDuplicate is the usual source; this handles raw driver errors.
func duplicateField(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fieldFromConstraint(pgErr.ConstraintName)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		// "UNIQUE constraint failed: users.username"
		msg := sqliteErr.Error()
		if i := strings.LastIndex(msg, "."); i >= 0 {
			return msg[i+1:]
		}
	}
	return ""
}

func fieldFromConstraint(name string) string {
	// gorm names unique indexes idx_<table>_<column>
	switch {
	case strings.HasSuffix(name, "_username"):
		return "username"
	case strings.HasSuffix(name, "_email"):
		return "email"
	case strings.HasSuffix(name, "_pokemon_name"):
		return "pokemon_name"
	}
	return ""
}

func notFound(what string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", what, id, common.ErrNotFound)
}
