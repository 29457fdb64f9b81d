package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/libreria/internal/entities"
)

// AuthorStore defines database operations for author management.
type AuthorStore interface {
	CreateAuthor(author *entities.Author) error
	UpdateAuthor(author *entities.Author) error
	GetAuthorByID(id uint) (*entities.Author, error)
	ListAuthors(query, nationality string) ([]entities.Author, error)
	DeleteAuthor(id uint) error
}

// AuthorsController handles the management endpoints for authors.
type AuthorsController struct {
	store AuthorStore
}

// NewAuthorsController creates a new authors controller.
func NewAuthorsController(store AuthorStore) *AuthorsController {
	return &AuthorsController{store: store}
}

type authorRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	BirthDate   string `json:"birth_date"` // YYYY-MM-DD, optional
	Nationality string `json:"nationality"`
	Website     string `json:"website"`
}

type authorResponse struct {
	entities.Author
	Info string `json:"info"`
}

// ListAuthors returns authors ordered by last name, optionally filtered.
// GET /api/authors?q=&nacionalidad=
func (ac *AuthorsController) ListAuthors(c *gin.Context) {
	authors, err := ac.store.ListAuthors(c.Query("q"), c.Query("nacionalidad"))
	if err != nil {
		respondInternalError(c, err, "list authors")
		return
	}
	c.JSON(http.StatusOK, authors)
}

// GetAuthor returns a single author with books and the descriptive summary.
// GET /api/authors/:id
func (ac *AuthorsController) GetAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.store.GetAuthorByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, err, "get author")
		return
	}

	c.JSON(http.StatusOK, authorResponse{Author: *author, Info: author.Describe()})
}

// CreateAuthor creates a new author. The display title is derived from the
// name fields at save time.
// POST /api/authors
func (ac *AuthorsController) CreateAuthor(c *gin.Context) {
	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "first_name and last_name are required")
		return
	}

	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		respondBadRequest(c, "birth_date must be YYYY-MM-DD")
		return
	}

	author := &entities.Author{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		BirthDate:   birthDate,
		Nationality: req.Nationality,
		Website:     req.Website,
	}
	if err := ac.store.CreateAuthor(author); err != nil {
		respondSaveError(c, err, "create author")
		return
	}

	respondCreated(c, author)
}

// UpdateAuthor updates an existing author's fields. The title is recomputed
// from the new names on save.
// PUT /api/authors/:id
func (ac *AuthorsController) UpdateAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	author, err := ac.store.GetAuthorByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, err, "get author")
		return
	}

	var req authorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "first_name and last_name are required")
		return
	}

	birthDate, err := parseDate(req.BirthDate)
	if err != nil {
		respondBadRequest(c, "birth_date must be YYYY-MM-DD")
		return
	}

	author.FirstName = req.FirstName
	author.LastName = req.LastName
	author.BirthDate = birthDate
	author.Nationality = req.Nationality
	author.Website = req.Website

	if err := ac.store.UpdateAuthor(author); err != nil {
		respondSaveError(c, err, "update author")
		return
	}

	c.JSON(http.StatusOK, author)
}

// DeleteAuthor removes an author and, with it, all of the author's books.
// DELETE /api/authors/:id
func (ac *AuthorsController) DeleteAuthor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ac.store.GetAuthorByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "author")
			return
		}
		respondInternalError(c, err, "get author")
		return
	}

	if err := ac.store.DeleteAuthor(id); err != nil {
		respondInternalError(c, err, "delete author")
		return
	}

	respondSuccess(c, "author deleted")
}
