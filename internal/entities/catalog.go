package entities

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// notAvailable is the placeholder rendered for absent optional values.
const notAvailable = "N/D"

// MaxISBNLength is the maximum accepted length for an ISBN (ISBN-13).
const MaxISBNLength = 13

var (
	// ErrNotImplemented is returned by DescribeEntity for values that do not
	// implement Describer. It indicates a construction defect, not a runtime
	// condition.
	ErrNotImplemented = errors.New("entity does not implement Describe")

	// ErrInvalidNumber is returned by the Book setters when the input cannot
	// be interpreted as a number of the required kind.
	ErrInvalidNumber = errors.New("value is not a valid number")

	// ErrNegativeValue is returned by the Book setters when the input parses
	// but is negative.
	ErrNegativeValue = errors.New("value must not be negative")
)

// Describer is the capability every catalog entity must provide: a
// human-readable, type-specific summary of the record.
type Describer interface {
	Describe() string
}

// DescribeEntity dispatches to the entity's Describe implementation.
// Passing a value that does not implement Describer returns
// ErrNotImplemented; it never silently yields an empty string.
func DescribeEntity(v any) (string, error) {
	d, ok := v.(Describer)
	if !ok {
		return "", fmt.Errorf("%w: %T", ErrNotImplemented, v)
	}
	return d.Describe(), nil
}

// Base holds the fields shared by every catalog entity. GORM promotes the
// fields of anonymous embedded structs, so concrete entities get a single
// flat table each. CreatedAt is stamped once at first persist and never
// changed; UpdatedAt is stamped on every persist.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"index;size:255" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Author is a person record. Its display title is derived from the name
// fields on every save, so it can never go stale relative to them.
type Author struct {
	Base
	FirstName   string     `gorm:"size:100;index;uniqueIndex:uq_authors_name_birth" json:"first_name"`
	LastName    string     `gorm:"size:100;index;uniqueIndex:uq_authors_name_birth" json:"last_name"`
	BirthDate   *time.Time `gorm:"uniqueIndex:uq_authors_name_birth" json:"birth_date,omitempty"`
	Nationality string     `gorm:"size:100" json:"nationality,omitempty"`
	Website     string     `gorm:"size:2048" json:"website,omitempty"`

	Books []Book `gorm:"foreignKey:AuthorID" json:"books,omitempty"`
}

func (Author) TableName() string {
	return "authors"
}

// FullName returns the author's display name.
func (a *Author) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// BeforeSave keeps the derived title in sync with the name fields.
func (a *Author) BeforeSave(tx *gorm.DB) error {
	a.Title = a.FullName()
	return nil
}

func (a *Author) Describe() string {
	born := notAvailable
	if a.BirthDate != nil {
		born = a.BirthDate.Format("2006-01-02")
	}
	nationality := a.Nationality
	if nationality == "" {
		nationality = notAvailable
	}
	return fmt.Sprintf("%s, nacido el %s, Nacionalidad: %s", a.FullName(), born, nationality)
}

// Genre is a category record. Genres are shared between books through the
// book_genres association table.
type Genre struct {
	Base
	Name string `gorm:"size:100;uniqueIndex" json:"name"`

	Books []Book `gorm:"many2many:book_genres" json:"-"`
}

func (Genre) TableName() string {
	return "genres"
}

// BeforeSave keeps the derived title in sync with the genre name.
func (g *Genre) BeforeSave(tx *gorm.DB) error {
	g.Title = g.Name
	return nil
}

func (g *Genre) Describe() string {
	return fmt.Sprintf("Género: %s", g.Name)
}

// Book is the central catalog record. It belongs to exactly one Author and
// does not outlive it; genres are a shared many-to-many set.
//
// Price and Stock must only be assigned through SetPrice and SetStock, which
// validate the input and leave the prior value untouched on failure. The
// fields stay exported so GORM can persist them, but direct assignment
// bypasses the invariants.
type Book struct {
	Base
	AuthorID    uint            `gorm:"index;not null" json:"author_id"`
	Author      Author          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Genres      []Genre         `gorm:"many2many:book_genres" json:"genres,omitempty"`
	ISBN        string          `gorm:"size:13;uniqueIndex" json:"isbn"`
	PublishedOn *time.Time      `json:"published_on,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(8,2)" json:"price"`
	Stock       int             `json:"stock"`
	Detail      *BookDetail     `gorm:"foreignKey:BookID" json:"detail,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// SetPrice parses raw as an exact decimal, rejects negatives, and stores the
// value rounded to two places. The decimal goes through its string form, so
// "19.99" becomes exactly 19.99 with no binary-float rounding artifacts.
// On failure the stored price is left untouched.
func (b *Book) SetPrice(raw string) error {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: price %q", ErrInvalidNumber, raw)
	}
	if v.IsNegative() {
		return fmt.Errorf("%w: price %s", ErrNegativeValue, v)
	}
	b.Price = v.Round(2)
	return nil
}

// SetStock parses raw as an integer and rejects negatives. Non-integer
// numerics such as "3.5" are invalid input, not rounded. On failure the
// stored stock is left untouched.
func (b *Book) SetStock(raw string) error {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: stock %q", ErrInvalidNumber, raw)
	}
	if n < 0 {
		return fmt.Errorf("%w: stock %d", ErrNegativeValue, n)
	}
	b.Stock = n
	return nil
}

func (b *Book) Describe() string {
	published := notAvailable
	if b.PublishedOn != nil {
		published = b.PublishedOn.Format("2006-01-02")
	}
	return fmt.Sprintf("'%s' de %s · ISBN %s · %s€ · Publicado: %s",
		b.Title, b.Author.FullName(), b.ISBN, b.Price.StringFixed(2), published)
}

// BookDetail is the optional one-to-one extension of a Book holding the
// long-form text. It is exclusively owned by its book and carries no display
// title or lifecycle timestamps of its own.
type BookDetail struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	BookID    uint   `gorm:"uniqueIndex;not null" json:"book_id"`
	Summary   string `gorm:"type:text" json:"summary,omitempty"`
	PageCount int    `gorm:"default:0" json:"page_count"`
}

func (BookDetail) TableName() string {
	return "book_details"
}
