// Package books provides database operations for book management, including
// the filtered catalog listing.
//
// This package implements the BookStore interfaces defined in
// internal/http/books.go and internal/catalog/service.go.
package books

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/libreria/internal/database"
	"github.com/mrlokans/libreria/internal/entities"
)

// Filter narrows the catalog listing. Nil price bounds mean "no bound";
// GenreName matches case-insensitively against any associated genre's name.
type Filter struct {
	GenreName string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Limit     int
}

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook persists a new book along with its optional detail record and
// associates the given genres. A duplicate ISBN is rejected with
// database.ErrDuplicate.
func (r *Repository) CreateBook(book *entities.Book, genreIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Genres").Create(book).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("%w: ISBN %s", database.ErrDuplicate, book.ISBN)
			}
			return err
		}
		return replaceGenres(tx, book, genreIDs)
	})
}

// UpdateBook saves changes to an existing book's own fields. Genre
// associations and the detail record are managed through ReplaceGenres and
// UpsertDetail.
func (r *Repository) UpdateBook(book *entities.Book) error {
	if err := r.db.Omit("Author", "Genres", "Detail").Save(book).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("%w: ISBN %s", database.ErrDuplicate, book.ISBN)
		}
		return err
	}
	return nil
}

// ReplaceGenres resets the book's genre set to exactly the given genres.
func (r *Repository) ReplaceGenres(book *entities.Book, genreIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return replaceGenres(tx, book, genreIDs)
	})
}

func replaceGenres(tx *gorm.DB, book *entities.Book, genreIDs []uint) error {
	var genres []entities.Genre
	if len(genreIDs) > 0 {
		if err := tx.Find(&genres, genreIDs).Error; err != nil {
			return err
		}
		if len(genres) != len(genreIDs) {
			return gorm.ErrRecordNotFound
		}
	}
	if err := tx.Model(book).Association("Genres").Replace(&genres); err != nil {
		return err
	}
	book.Genres = genres
	return nil
}

// GetBookByID retrieves a book with its author, genres and detail eagerly
// loaded.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Preload("Author").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.name ASC")
		}).
		Preload("Detail").
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns books ordered by title for the management surface,
// optionally narrowed by a case-insensitive search over title, ISBN and
// author name. Related records are loaded alongside, matching what the
// catalog listing does, so list views never fetch per record.
func (r *Repository) ListBooks(query string) ([]entities.Book, error) {
	q := r.db.Model(&entities.Book{}).
		Preload("Author").
		Preload("Genres").
		Preload("Detail")
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Joins("JOIN authors ON authors.id = books.author_id").
			Where(`LOWER(books.title) LIKE LOWER(?)
				OR LOWER(books.isbn) LIKE LOWER(?)
				OR LOWER(authors.first_name) LIKE LOWER(?)
				OR LOWER(authors.last_name) LIKE LOWER(?)`,
				pattern, pattern, pattern, pattern)
	}

	var books []entities.Book
	err := q.Order("books.title ASC").Find(&books).Error
	return books, err
}

// ListFiltered returns the newest books matching the filter, bounded by
// f.Limit, with author, genres and detail eagerly loaded. Filters compose
// conjunctively.
func (r *Repository) ListFiltered(f Filter) ([]entities.Book, error) {
	q := r.db.Model(&entities.Book{}).
		Preload("Author").
		Preload("Genres", func(db *gorm.DB) *gorm.DB {
			return db.Order("genres.name ASC")
		}).
		Preload("Detail")

	if f.GenreName != "" {
		q = q.Distinct("books.*").
			Joins("JOIN book_genres ON book_genres.book_id = books.id").
			Joins("JOIN genres ON genres.id = book_genres.genre_id").
			Where("LOWER(genres.name) LIKE LOWER(?)", "%"+f.GenreName+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("books.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("books.price <= ?", *f.MaxPrice)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var books []entities.Book
	err := q.Order("books.created_at DESC").Find(&books).Error
	return books, err
}

// UpsertDetail creates or updates the book's one-to-one detail record.
func (r *Repository) UpsertDetail(bookID uint, summary string, pageCount int) (*entities.BookDetail, error) {
	var detail entities.BookDetail
	err := r.db.Where("book_id = ?", bookID).First(&detail).Error
	switch {
	case err == nil:
		detail.Summary = summary
		detail.PageCount = pageCount
		if err := r.db.Save(&detail).Error; err != nil {
			return nil, err
		}
	case err == gorm.ErrRecordNotFound:
		detail = entities.BookDetail{BookID: bookID, Summary: summary, PageCount: pageCount}
		if err := r.db.Create(&detail).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &detail, nil
}

// DeleteDetail removes the book's detail record, if any.
func (r *Repository) DeleteDetail(bookID uint) error {
	return r.db.Where("book_id = ?", bookID).Delete(&entities.BookDetail{}).Error
}

// DeleteBook removes a book, its detail record and its genre associations in
// one transaction. The genres themselves survive.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_genres WHERE book_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.BookDetail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entities.Book{}, id).Error
	})
}
