// Package genres provides database operations for genre management.
//
// This package implements the GenreStore interface defined in
// internal/http/genres.go.
package genres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/libreria/internal/database"
	"github.com/mrlokans/libreria/internal/entities"
)

// Repository handles all genre database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new genres repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateGenre persists a new genre. A duplicate name is rejected with
// database.ErrDuplicate.
func (r *Repository) CreateGenre(genre *entities.Genre) error {
	if err := r.db.Create(genre).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: genre %q", database.ErrDuplicate, genre.Name)
		}
		return err
	}
	return nil
}

// UpdateGenre saves changes to an existing genre.
func (r *Repository) UpdateGenre(genre *entities.Genre) error {
	if err := r.db.Save(genre).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: genre %q", database.ErrDuplicate, genre.Name)
		}
		return err
	}
	return nil
}

// GetGenreByID retrieves a genre by ID.
func (r *Repository) GetGenreByID(id uint) (*entities.Genre, error) {
	var genre entities.Genre
	err := r.db.First(&genre, id).Error
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

// ListGenres returns genres ordered by name, optionally narrowed by a
// case-insensitive name search.
func (r *Repository) ListGenres(query string) ([]entities.Genre, error) {
	q := r.db.Model(&entities.Genre{})
	if query != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+query+"%")
	}

	var genres []entities.Genre
	err := q.Order("name ASC").Find(&genres).Error
	return genres, err
}

// DeleteGenre removes a genre and its book associations. Books referencing
// the genre survive; only the association rows go.
func (r *Repository) DeleteGenre(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_genres WHERE genre_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Genre{}, id).Error
	})
}
