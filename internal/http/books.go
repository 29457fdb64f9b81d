package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/libreria/internal/entities"
)

// BookStore defines database operations for book management.
type BookStore interface {
	CreateBook(book *entities.Book, genreIDs []uint) error
	UpdateBook(book *entities.Book) error
	ReplaceGenres(book *entities.Book, genreIDs []uint) error
	GetBookByID(id uint) (*entities.Book, error)
	ListBooks(query string) ([]entities.Book, error)
	DeleteBook(id uint) error
	UpsertDetail(bookID uint, summary string, pageCount int) (*entities.BookDetail, error)
	DeleteDetail(bookID uint) error
}

// AuthorGetter is the slice of the author store the books controller needs
// to validate references.
type AuthorGetter interface {
	GetAuthorByID(id uint) (*entities.Author, error)
}

// BooksController handles the management endpoints for books and their
// detail records.
type BooksController struct {
	store   BookStore
	authors AuthorGetter
}

// NewBooksController creates a new books controller.
func NewBooksController(store BookStore, authors AuthorGetter) *BooksController {
	return &BooksController{store: store, authors: authors}
}

// Price and stock travel as strings so they pass through the entity's
// validated setters rather than a float detour.
type createBookRequest struct {
	Title       string            `json:"title" binding:"required"`
	AuthorID    uint              `json:"author_id" binding:"required"`
	ISBN        string            `json:"isbn" binding:"required"`
	PublishedOn string            `json:"published_on"` // YYYY-MM-DD, optional
	Price       string            `json:"price" binding:"required"`
	Stock       string            `json:"stock"`
	GenreIDs    []uint            `json:"genre_ids"`
	Detail      *bookDetailFields `json:"detail"`
}

type updateBookRequest struct {
	Title       *string `json:"title"`
	AuthorID    *uint   `json:"author_id"`
	ISBN        *string `json:"isbn"`
	PublishedOn *string `json:"published_on"`
	Price       *string `json:"price"`
	Stock       *string `json:"stock"`
	GenreIDs    *[]uint `json:"genre_ids"`
}

type bookDetailFields struct {
	Summary   string `json:"summary"`
	PageCount int    `json:"page_count"`
}

type bookResponse struct {
	entities.Book
	Info string `json:"info"`
}

// ListBooks returns books ordered by title with related records loaded.
// GET /api/books?q=
func (bc *BooksController) ListBooks(c *gin.Context) {
	books, err := bc.store.ListBooks(c.Query("q"))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// GetBook returns a single book with author, genres, detail and the
// descriptive summary.
// GET /api/books/:id
func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(http.StatusOK, bookResponse{Book: *book, Info: book.Describe()})
}

// CreateBook creates a new book with its genre set and optional detail
// record. Price and stock go through the validated setters; a rejected value
// fails the whole request and nothing is persisted.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title, author_id, isbn and price are required")
		return
	}

	if len(req.ISBN) > entities.MaxISBNLength {
		respondBadRequest(c, "isbn must be at most 13 characters")
		return
	}

	if _, err := bc.authors.GetAuthorByID(req.AuthorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondBadRequest(c, "author does not exist")
			return
		}
		respondInternalError(c, err, "get author")
		return
	}

	publishedOn, err := parseDate(req.PublishedOn)
	if err != nil {
		respondBadRequest(c, "published_on must be YYYY-MM-DD")
		return
	}

	book := &entities.Book{
		Base:        entities.Base{Title: req.Title},
		AuthorID:    req.AuthorID,
		ISBN:        req.ISBN,
		PublishedOn: publishedOn,
	}
	if err := book.SetPrice(req.Price); err != nil {
		respondSaveError(c, err, "set price")
		return
	}
	if req.Stock != "" {
		if err := book.SetStock(req.Stock); err != nil {
			respondSaveError(c, err, "set stock")
			return
		}
	}
	if req.Detail != nil {
		book.Detail = &entities.BookDetail{
			Summary:   req.Detail.Summary,
			PageCount: req.Detail.PageCount,
		}
	}

	if err := bc.store.CreateBook(book, req.GenreIDs); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondBadRequest(c, "one or more genres do not exist")
			return
		}
		respondSaveError(c, err, "create book")
		return
	}

	respondCreated(c, book)
}

// UpdateBook applies a partial update. Fields left out of the request keep
// their current values; a rejected price or stock leaves the stored record
// exactly as it was.
// PUT /api/books/:id
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.AuthorID != nil {
		if _, err := bc.authors.GetAuthorByID(*req.AuthorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondBadRequest(c, "author does not exist")
				return
			}
			respondInternalError(c, err, "get author")
			return
		}
		book.AuthorID = *req.AuthorID
	}
	if req.ISBN != nil {
		if len(*req.ISBN) > entities.MaxISBNLength {
			respondBadRequest(c, "isbn must be at most 13 characters")
			return
		}
		book.ISBN = *req.ISBN
	}
	if req.PublishedOn != nil {
		publishedOn, err := parseDate(*req.PublishedOn)
		if err != nil {
			respondBadRequest(c, "published_on must be YYYY-MM-DD")
			return
		}
		book.PublishedOn = publishedOn
	}
	if req.Price != nil {
		if err := book.SetPrice(*req.Price); err != nil {
			respondSaveError(c, err, "set price")
			return
		}
	}
	if req.Stock != nil {
		if err := book.SetStock(*req.Stock); err != nil {
			respondSaveError(c, err, "set stock")
			return
		}
	}

	if err := bc.store.UpdateBook(book); err != nil {
		respondSaveError(c, err, "update book")
		return
	}

	if req.GenreIDs != nil {
		if err := bc.store.ReplaceGenres(book, *req.GenreIDs); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respondBadRequest(c, "one or more genres do not exist")
				return
			}
			respondInternalError(c, err, "replace genres")
			return
		}
	}

	c.JSON(http.StatusOK, book)
}

// DeleteBook removes a book together with its detail record.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := bc.store.GetBookByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	if err := bc.store.DeleteBook(id); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}

	respondSuccess(c, "book deleted")
}

// UpsertDetail creates or replaces the book's one-to-one detail record.
// PUT /api/books/:id/detail
func (bc *BooksController) UpsertDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := bc.store.GetBookByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	var req bookDetailFields
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	if req.PageCount < 0 {
		respondBadRequest(c, "page_count must not be negative")
		return
	}

	detail, err := bc.store.UpsertDetail(id, req.Summary, req.PageCount)
	if err != nil {
		respondInternalError(c, err, "upsert detail")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteDetail removes the book's detail record, if any.
// DELETE /api/books/:id/detail
func (bc *BooksController) DeleteDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.DeleteDetail(id); err != nil {
		respondInternalError(c, err, "delete detail")
		return
	}

	respondSuccess(c, "detail deleted")
}
