// Package catalog implements the public book listing: optional filters over
// genre and price composed into one bounded, eagerly-loaded query.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/libreria/internal/database/books"
	"github.com/mrlokans/libreria/internal/entities"
)

// MaxResults caps the catalog listing regardless of filters.
const MaxResults = 200

// BookStore is the persistence surface the catalog reads from.
type BookStore interface {
	ListFiltered(f books.Filter) ([]entities.Book, error)
}

// Filters echoes the raw, unparsed query strings back to the caller for
// display alongside the results.
type Filters struct {
	Genero string `json:"genero"`
	Min    string `json:"min"`
	Max    string `json:"max"`
}

// Result is the catalog listing handed to the presentation boundary.
type Result struct {
	Books   []entities.Book `json:"books"`
	Filters Filters         `json:"filters"`
}

// Service produces the filtered catalog listing. It is a pure read with no
// side effects and is safe to repeat.
type Service struct {
	store BookStore
}

// NewService creates a new catalog service.
func NewService(store BookStore) *Service {
	return &Service{store: store}
}

// List returns at most MaxResults books, newest first, matching the given
// raw filter strings. Malformed price bounds are treated as absent, never as
// errors: filtering is a convenience surface, not a data-integrity boundary.
// When both bounds parse and min exceeds max, the bounds are swapped rather
// than rejected.
func (s *Service) List(genero, minRaw, maxRaw string) (*Result, error) {
	genero = strings.TrimSpace(genero)
	minRaw = strings.TrimSpace(minRaw)
	maxRaw = strings.TrimSpace(maxRaw)

	minPrice := toDecimal(minRaw)
	maxPrice := toDecimal(maxRaw)
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		minPrice, maxPrice = maxPrice, minPrice
	}

	found, err := s.store.ListFiltered(books.Filter{
		GenreName: genero,
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		Limit:     MaxResults,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Books: found,
		Filters: Filters{
			Genero: genero,
			Min:    minRaw,
			Max:    maxRaw,
		},
	}, nil
}

// toDecimal leniently parses a price bound. Empty or unparsable input means
// "no bound".
func toDecimal(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &v
}
