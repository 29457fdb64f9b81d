// Package authors provides database operations for author management.
//
// This package implements the AuthorStore interface defined in
// internal/http/authors.go.
package authors

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/libreria/internal/database"
	"github.com/mrlokans/libreria/internal/entities"
)

// Repository handles all author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new authors repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateAuthor persists a new author. A duplicate (first name, last name,
// birth date) triple is rejected with database.ErrDuplicate.
func (r *Repository) CreateAuthor(author *entities.Author) error {
	if err := r.db.Create(author).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: author %s", database.ErrDuplicate, author.FullName())
		}
		return err
	}
	return nil
}

// UpdateAuthor saves changes to an existing author. The display title is
// recomputed by the entity's save hook.
func (r *Repository) UpdateAuthor(author *entities.Author) error {
	if err := r.db.Save(author).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: author %s", database.ErrDuplicate, author.FullName())
		}
		return err
	}
	return nil
}

// GetAuthorByID retrieves an author together with their books.
func (r *Repository) GetAuthorByID(id uint) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Preload("Books").First(&author, id).Error
	if err != nil {
		return nil, err
	}
	return &author, nil
}

// ListAuthors returns authors ordered by (last name, first name), optionally
// narrowed by a case-insensitive name search and an exact nationality filter.
func (r *Repository) ListAuthors(query, nationality string) ([]entities.Author, error) {
	q := r.db.Model(&entities.Author{})
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("LOWER(first_name) LIKE LOWER(?) OR LOWER(last_name) LIKE LOWER(?)", pattern, pattern)
	}
	if nationality != "" {
		q = q.Where("nationality = ?", nationality)
	}

	var authors []entities.Author
	err := q.Order("last_name ASC, first_name ASC").Find(&authors).Error
	return authors, err
}

// DeleteAuthor removes an author and everything that depends on it: the
// author's books, their details, and their genre associations. The cascade is
// executed explicitly inside one transaction so a partial delete can never
// be observed.
func (r *Repository) DeleteAuthor(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var bookIDs []uint
		if err := tx.Model(&entities.Book{}).Where("author_id = ?", id).Pluck("id", &bookIDs).Error; err != nil {
			return err
		}

		if len(bookIDs) > 0 {
			if err := tx.Exec("DELETE FROM book_genres WHERE book_id IN ?", bookIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("book_id IN ?", bookIDs).Delete(&entities.BookDetail{}).Error; err != nil {
				return err
			}
			if err := tx.Where("author_id = ?", id).Delete(&entities.Book{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&entities.Author{}, id).Error
	})
}
