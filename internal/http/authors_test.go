package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/libreria/internal/database"
	"github.com/mrlokans/libreria/internal/database/authors"
	"github.com/mrlokans/libreria/internal/entities"
)

func setupAuthorsTest(t *testing.T) (*gin.Engine, *authors.Repository, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_authors_api_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	repo := authors.NewRepository(db.DB)
	controller := NewAuthorsController(repo)

	router := gin.New()
	router.GET("/api/authors", controller.ListAuthors)
	router.POST("/api/authors", controller.CreateAuthor)
	router.GET("/api/authors/:id", controller.GetAuthor)
	router.PUT("/api/authors/:id", controller.UpdateAuthor)
	router.DELETE("/api/authors/:id", controller.DeleteAuthor)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return router, repo, cleanup
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestAuthorsController_CreateAuthor(t *testing.T) {
	t.Run("creates an author and derives the title", func(t *testing.T) {
		router, _, cleanup := setupAuthorsTest(t)
		defer cleanup()

		w := doJSON(t, router, "POST", "/api/authors", gin.H{
			"first_name":  "Gabriel",
			"last_name":   "García Márquez",
			"birth_date":  "1927-03-06",
			"nationality": "Colombiana",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		var created entities.Author
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.NotZero(t, created.ID)
		assert.Equal(t, "Gabriel García Márquez", created.Title)
	})

	t.Run("rejects a missing last name", func(t *testing.T) {
		router, _, cleanup := setupAuthorsTest(t)
		defer cleanup()

		w := doJSON(t, router, "POST", "/api/authors", gin.H{"first_name": "Solo"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects a malformed birth date", func(t *testing.T) {
		router, _, cleanup := setupAuthorsTest(t)
		defer cleanup()

		w := doJSON(t, router, "POST", "/api/authors", gin.H{
			"first_name": "Bad",
			"last_name":  "Date",
			"birth_date": "06/03/1927",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("returns 409 for a duplicate author", func(t *testing.T) {
		router, _, cleanup := setupAuthorsTest(t)
		defer cleanup()

		payload := gin.H{
			"first_name": "Dup",
			"last_name":  "Author",
			"birth_date": "1950-05-05",
		}
		w := doJSON(t, router, "POST", "/api/authors", payload)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doJSON(t, router, "POST", "/api/authors", payload)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthorsController_GetAuthor(t *testing.T) {
	t.Run("includes the descriptive summary", func(t *testing.T) {
		router, repo, cleanup := setupAuthorsTest(t)
		defer cleanup()

		author := &entities.Author{FirstName: "Ana", LastName: "López"}
		require.NoError(t, repo.CreateAuthor(author))

		w := doJSON(t, router, "GET", "/api/authors/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "Ana López, nacido el N/D, Nacionalidad: N/D", response["info"])
	})

	t.Run("returns 404 for an unknown ID", func(t *testing.T) {
		router, _, cleanup := setupAuthorsTest(t)
		defer cleanup()

		w := doJSON(t, router, "GET", "/api/authors/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 400 for a non-numeric ID", func(t *testing.T) {
		router, _, cleanup := setupAuthorsTest(t)
		defer cleanup()

		w := doJSON(t, router, "GET", "/api/authors/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthorsController_UpdateAuthor(t *testing.T) {
	t.Run("renames and recomputes the title", func(t *testing.T) {
		router, repo, cleanup := setupAuthorsTest(t)
		defer cleanup()

		author := &entities.Author{FirstName: "Old", LastName: "Name"}
		require.NoError(t, repo.CreateAuthor(author))

		w := doJSON(t, router, "PUT", "/api/authors/1", gin.H{
			"first_name": "New",
			"last_name":  "Name",
		})
		assert.Equal(t, http.StatusOK, w.Code)

		updated, err := repo.GetAuthorByID(author.ID)
		require.NoError(t, err)
		assert.Equal(t, "New Name", updated.Title)
	})

	t.Run("returns 404 for an unknown ID", func(t *testing.T) {
		router, _, cleanup := setupAuthorsTest(t)
		defer cleanup()

		w := doJSON(t, router, "PUT", "/api/authors/999", gin.H{
			"first_name": "No",
			"last_name":  "Body",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAuthorsController_ListAuthors(t *testing.T) {
	router, repo, cleanup := setupAuthorsTest(t)
	defer cleanup()

	require.NoError(t, repo.CreateAuthor(&entities.Author{FirstName: "Julio", LastName: "Cortázar", Nationality: "Argentina"}))
	require.NoError(t, repo.CreateAuthor(&entities.Author{FirstName: "Carmen", LastName: "Laforet", Nationality: "Española"}))

	t.Run("returns all authors", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/authors", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var listed []entities.Author
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
		assert.Len(t, listed, 2)
	})

	t.Run("filters by nationality", func(t *testing.T) {
		w := doJSON(t, router, "GET", "/api/authors?nacionalidad=Argentina", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		var listed []entities.Author
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
		require.Len(t, listed, 1)
		assert.Equal(t, "Cortázar", listed[0].LastName)
	})
}

func TestAuthorsController_DeleteAuthor(t *testing.T) {
	t.Run("removes the author", func(t *testing.T) {
		router, repo, cleanup := setupAuthorsTest(t)
		defer cleanup()

		author := &entities.Author{FirstName: "Doomed", LastName: "Author"}
		require.NoError(t, repo.CreateAuthor(author))

		w := doJSON(t, router, "DELETE", "/api/authors/1", nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/authors/1", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("returns 404 for an unknown ID", func(t *testing.T) {
		router, _, cleanup := setupAuthorsTest(t)
		defer cleanup()

		w := doJSON(t, router, "DELETE", "/api/authors/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
