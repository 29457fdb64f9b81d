package http

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/libreria/internal/database"
	"github.com/mrlokans/libreria/internal/database/authors"
	"github.com/mrlokans/libreria/internal/database/books"
	"github.com/mrlokans/libreria/internal/database/genres"
	"github.com/mrlokans/libreria/internal/entities"
)

type booksTestEnv struct {
	router     *gin.Engine
	bookRepo   *books.Repository
	authorRepo *authors.Repository
	genreRepo  *genres.Repository
}

func setupBooksTest(t *testing.T) (*booksTestEnv, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_books_api_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	env := &booksTestEnv{
		bookRepo:   books.NewRepository(db.DB),
		authorRepo: authors.NewRepository(db.DB),
		genreRepo:  genres.NewRepository(db.DB),
	}

	controller := NewBooksController(env.bookRepo, env.authorRepo)

	router := gin.New()
	router.GET("/api/books", controller.ListBooks)
	router.POST("/api/books", controller.CreateBook)
	router.GET("/api/books/:id", controller.GetBook)
	router.PUT("/api/books/:id", controller.UpdateBook)
	router.DELETE("/api/books/:id", controller.DeleteBook)
	router.PUT("/api/books/:id/detail", controller.UpsertDetail)
	router.DELETE("/api/books/:id/detail", controller.DeleteDetail)
	env.router = router

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return env, cleanup
}

func (e *booksTestEnv) createAuthor(t *testing.T, first, last string) *entities.Author {
	t.Helper()
	author := &entities.Author{FirstName: first, LastName: last}
	require.NoError(t, e.authorRepo.CreateAuthor(author))
	return author
}

func (e *booksTestEnv) createGenre(t *testing.T, name string) *entities.Genre {
	t.Helper()
	genre := &entities.Genre{Name: name}
	require.NoError(t, e.genreRepo.CreateGenre(genre))
	return genre
}

func TestBooksController_CreateBook(t *testing.T) {
	t.Run("creates a book with genres and detail", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Gabriel", "García Márquez")
		genre := env.createGenre(t, "Novela")

		w := doJSON(t, env.router, "POST", "/api/books", gin.H{
			"title":        "Cien años de soledad",
			"author_id":    author.ID,
			"isbn":         "9780307474728",
			"published_on": "1967-05-30",
			"price":        "19.99",
			"stock":        "5",
			"genre_ids":    []uint{genre.ID},
			"detail": gin.H{
				"summary":    "La saga de los Buendía",
				"page_count": 417,
			},
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var created entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		require.NotZero(t, created.ID)

		stored, err := env.bookRepo.GetBookByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, "19.99", stored.Price.StringFixed(2))
		assert.Equal(t, 5, stored.Stock)
		assert.Len(t, stored.Genres, 1)
		require.NotNil(t, stored.Detail)
		assert.Equal(t, 417, stored.Detail.PageCount)
	})

	t.Run("rejects a non-numeric price", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		w := doJSON(t, env.router, "POST", "/api/books", gin.H{
			"title":     "Bad Price",
			"author_id": author.ID,
			"isbn":      "9780000002001",
			"price":     "abc",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		w := doJSON(t, env.router, "POST", "/api/books", gin.H{
			"title":     "Negative Price",
			"author_id": author.ID,
			"isbn":      "9780000002002",
			"price":     "-5",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects fractional stock", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		w := doJSON(t, env.router, "POST", "/api/books", gin.H{
			"title":     "Bad Stock",
			"author_id": author.ID,
			"isbn":      "9780000002003",
			"price":     "10.00",
			"stock":     "3.5",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an overlong ISBN", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		w := doJSON(t, env.router, "POST", "/api/books", gin.H{
			"title":     "Long ISBN",
			"author_id": author.ID,
			"isbn":      "97800000020041234",
			"price":     "10.00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects an unknown author", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		w := doJSON(t, env.router, "POST", "/api/books", gin.H{
			"title":     "Orphan",
			"author_id": 999,
			"isbn":      "9780000002005",
			"price":     "10.00",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown genre IDs", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		w := doJSON(t, env.router, "POST", "/api/books", gin.H{
			"title":     "Ghost Genres",
			"author_id": author.ID,
			"isbn":      "9780000002006",
			"price":     "10.00",
			"genre_ids": []uint{999},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 409 for a duplicate ISBN", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		payload := gin.H{
			"title":     "Original",
			"author_id": author.ID,
			"isbn":      "9780000002007",
			"price":     "10.00",
		}
		w := doJSON(t, env.router, "POST", "/api/books", payload)
		require.Equal(t, http.StatusCreated, w.Code)

		payload["title"] = "Copycat"
		w = doJSON(t, env.router, "POST", "/api/books", payload)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestBooksController_GetBook(t *testing.T) {
	t.Run("includes the descriptive summary", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Jorge Luis", "Borges")
		book := &entities.Book{
			Base:     entities.Base{Title: "Ficciones"},
			AuthorID: author.ID,
			ISBN:     "9780802130303",
		}
		require.NoError(t, book.SetPrice("12.00"))
		require.NoError(t, env.bookRepo.CreateBook(book, nil))

		w := doJSON(t, env.router, "GET", "/api/books/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t,
			"'Ficciones' de Jorge Luis Borges · ISBN 9780802130303 · 12.00€ · Publicado: N/D",
			response["info"])
	})

	t.Run("returns 404 for an unknown ID", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		w := doJSON(t, env.router, "GET", "/api/books/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_UpdateBook(t *testing.T) {
	t.Run("applies a partial update", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		book := &entities.Book{
			Base:     entities.Base{Title: "Old Title"},
			AuthorID: author.ID,
			ISBN:     "9780000002101",
		}
		require.NoError(t, book.SetPrice("10.00"))
		require.NoError(t, book.SetStock("3"))
		require.NoError(t, env.bookRepo.CreateBook(book, nil))

		w := doJSON(t, env.router, "PUT", "/api/books/1", gin.H{"price": "12.50"})
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := env.bookRepo.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, "12.50", stored.Price.StringFixed(2))
		// Untouched fields keep their values
		assert.Equal(t, "Old Title", stored.Title)
		assert.Equal(t, 3, stored.Stock)
	})

	t.Run("a rejected price leaves the record unchanged", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		book := &entities.Book{
			Base:     entities.Base{Title: "Stable"},
			AuthorID: author.ID,
			ISBN:     "9780000002102",
		}
		require.NoError(t, book.SetPrice("15.00"))
		require.NoError(t, env.bookRepo.CreateBook(book, nil))

		w := doJSON(t, env.router, "PUT", "/api/books/1", gin.H{"price": "-1", "title": "Changed"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		stored, err := env.bookRepo.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, "15.00", stored.Price.StringFixed(2))
		assert.Equal(t, "Stable", stored.Title)
	})

	t.Run("replaces the genre set when genre_ids is present", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		first := env.createGenre(t, "Primero")
		second := env.createGenre(t, "Segundo")

		book := &entities.Book{
			Base:     entities.Base{Title: "Retagged"},
			AuthorID: author.ID,
			ISBN:     "9780000002103",
		}
		require.NoError(t, book.SetPrice("10.00"))
		require.NoError(t, env.bookRepo.CreateBook(book, []uint{first.ID}))

		w := doJSON(t, env.router, "PUT", "/api/books/1", gin.H{"genre_ids": []uint{second.ID}})
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := env.bookRepo.GetBookByID(book.ID)
		require.NoError(t, err)
		require.Len(t, stored.Genres, 1)
		assert.Equal(t, "Segundo", stored.Genres[0].Name)
	})
}

func TestBooksController_DetailEndpoints(t *testing.T) {
	t.Run("PUT detail creates and updates", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		book := &entities.Book{
			Base:     entities.Base{Title: "Detailed"},
			AuthorID: author.ID,
			ISBN:     "9780000002201",
		}
		require.NoError(t, book.SetPrice("10.00"))
		require.NoError(t, env.bookRepo.CreateBook(book, nil))

		w := doJSON(t, env.router, "PUT", "/api/books/1/detail", gin.H{
			"summary":    "First pass",
			"page_count": 100,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, env.router, "PUT", "/api/books/1/detail", gin.H{
			"summary":    "Second pass",
			"page_count": 200,
		})
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := env.bookRepo.GetBookByID(book.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.Detail)
		assert.Equal(t, "Second pass", stored.Detail.Summary)
		assert.Equal(t, 200, stored.Detail.PageCount)
	})

	t.Run("rejects a negative page count", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		book := &entities.Book{
			Base:     entities.Base{Title: "Detailed"},
			AuthorID: author.ID,
			ISBN:     "9780000002202",
		}
		require.NoError(t, book.SetPrice("10.00"))
		require.NoError(t, env.bookRepo.CreateBook(book, nil))

		w := doJSON(t, env.router, "PUT", "/api/books/1/detail", gin.H{"page_count": -10})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 404 for an unknown book", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		w := doJSON(t, env.router, "PUT", "/api/books/999/detail", gin.H{"page_count": 10})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("DELETE detail removes the record, the book survives", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		book := &entities.Book{
			Base:     entities.Base{Title: "Detailed"},
			AuthorID: author.ID,
			ISBN:     "9780000002203",
			Detail:   &entities.BookDetail{Summary: "Droppable", PageCount: 42},
		}
		require.NoError(t, book.SetPrice("10.00"))
		require.NoError(t, env.bookRepo.CreateBook(book, nil))

		w := doJSON(t, env.router, "DELETE", "/api/books/1/detail", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		stored, err := env.bookRepo.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Nil(t, stored.Detail)
	})
}

func TestBooksController_DeleteBook(t *testing.T) {
	t.Run("removes the book", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		author := env.createAuthor(t, "Some", "Author")
		book := &entities.Book{
			Base:     entities.Base{Title: "Short-lived"},
			AuthorID: author.ID,
			ISBN:     "9780000002301",
		}
		require.NoError(t, book.SetPrice("10.00"))
		require.NoError(t, env.bookRepo.CreateBook(book, nil))

		w := doJSON(t, env.router, "DELETE", "/api/books/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, env.router, "GET", "/api/books/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 404 for an unknown ID", func(t *testing.T) {
		env, cleanup := setupBooksTest(t)
		defer cleanup()

		w := doJSON(t, env.router, "DELETE", "/api/books/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_ListBooks(t *testing.T) {
	env, cleanup := setupBooksTest(t)
	defer cleanup()

	author := env.createAuthor(t, "Miguel", "de Cervantes")
	for _, seed := range []struct{ title, isbn string }{
		{"Quijote", "9780000002401"},
		{"Novelas ejemplares", "9780000002402"},
	} {
		book := &entities.Book{
			Base:     entities.Base{Title: seed.title},
			AuthorID: author.ID,
			ISBN:     seed.isbn,
		}
		require.NoError(t, book.SetPrice("10.00"))
		require.NoError(t, env.bookRepo.CreateBook(book, nil))
	}

	t.Run("returns books ordered by title", func(t *testing.T) {
		w := doJSON(t, env.router, "GET", "/api/books", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var listed []entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
		require.Len(t, listed, 2)
		assert.Equal(t, "Novelas ejemplares", listed[0].Title)
		assert.Equal(t, "Quijote", listed[1].Title)
	})

	t.Run("searches by author name", func(t *testing.T) {
		w := doJSON(t, env.router, "GET", "/api/books?q=cervantes", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var listed []entities.Book
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
		assert.Len(t, listed, 2)
	})
}
