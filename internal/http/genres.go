package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/libreria/internal/entities"
)

// GenreStore defines database operations for genre management.
type GenreStore interface {
	CreateGenre(genre *entities.Genre) error
	UpdateGenre(genre *entities.Genre) error
	GetGenreByID(id uint) (*entities.Genre, error)
	ListGenres(query string) ([]entities.Genre, error)
	DeleteGenre(id uint) error
}

// GenresController handles the management endpoints for genres.
type GenresController struct {
	store GenreStore
}

// NewGenresController creates a new genres controller.
func NewGenresController(store GenreStore) *GenresController {
	return &GenresController{store: store}
}

type genreRequest struct {
	Name string `json:"name" binding:"required"`
}

type genreResponse struct {
	entities.Genre
	Info string `json:"info"`
}

// ListGenres returns genres ordered by name, optionally searched.
// GET /api/genres?q=
func (gc *GenresController) ListGenres(c *gin.Context) {
	genres, err := gc.store.ListGenres(c.Query("q"))
	if err != nil {
		respondInternalError(c, err, "list genres")
		return
	}
	c.JSON(http.StatusOK, genres)
}

// GetGenre returns a single genre with its descriptive summary.
// GET /api/genres/:id
func (gc *GenresController) GetGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	genre, err := gc.store.GetGenreByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "genre")
			return
		}
		respondInternalError(c, err, "get genre")
		return
	}

	c.JSON(http.StatusOK, genreResponse{Genre: *genre, Info: genre.Describe()})
}

// CreateGenre creates a new genre. Names are globally unique; the display
// title is derived from the name at save time.
// POST /api/genres
func (gc *GenresController) CreateGenre(c *gin.Context) {
	var req genreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	genre := &entities.Genre{Name: req.Name}
	if err := gc.store.CreateGenre(genre); err != nil {
		respondSaveError(c, err, "create genre")
		return
	}

	respondCreated(c, genre)
}

// UpdateGenre renames an existing genre.
// PUT /api/genres/:id
func (gc *GenresController) UpdateGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	genre, err := gc.store.GetGenreByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "genre")
			return
		}
		respondInternalError(c, err, "get genre")
		return
	}

	var req genreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	genre.Name = req.Name
	if err := gc.store.UpdateGenre(genre); err != nil {
		respondSaveError(c, err, "update genre")
		return
	}

	c.JSON(http.StatusOK, genre)
}

// DeleteGenre removes a genre. Books keep existing; only the association
// rows are removed.
// DELETE /api/genres/:id
func (gc *GenresController) DeleteGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := gc.store.GetGenreByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "genre")
			return
		}
		respondInternalError(c, err, "get genre")
		return
	}

	if err := gc.store.DeleteGenre(id); err != nil {
		respondInternalError(c, err, "delete genre")
		return
	}

	respondSuccess(c, "genre deleted")
}
