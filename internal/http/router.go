package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/libreria/internal/auth"
)

// RouterConfig carries every dependency the router wires up. Nil optional
// fields (sessions, CSRF, auth middleware) disable the corresponding layer.
type RouterConfig struct {
	AuthorStore AuthorStore
	GenreStore  GenreStore
	BookStore   BookStore
	Catalog     CatalogLister

	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	CSRFSecret     []byte
	SecureCookies  bool
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public catalog listing
	catalogController := NewCatalogController(cfg.Catalog)
	router.GET("/libros", catalogController.ListBooks)

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager)
		authController.RegisterRoutes(router)
	}

	// Management API
	api := router.Group("/api")

	authorsController := NewAuthorsController(cfg.AuthorStore)
	api.GET("/authors", authorsController.ListAuthors)
	api.POST("/authors", authorsController.CreateAuthor)
	api.GET("/authors/:id", authorsController.GetAuthor)
	api.PUT("/authors/:id", authorsController.UpdateAuthor)
	api.DELETE("/authors/:id", authorsController.DeleteAuthor)

	genresController := NewGenresController(cfg.GenreStore)
	api.GET("/genres", genresController.ListGenres)
	api.POST("/genres", genresController.CreateGenre)
	api.GET("/genres/:id", genresController.GetGenre)
	api.PUT("/genres/:id", genresController.UpdateGenre)
	api.DELETE("/genres/:id", genresController.DeleteGenre)

	booksController := NewBooksController(cfg.BookStore, cfg.AuthorStore)
	api.GET("/books", booksController.ListBooks)
	api.POST("/books", booksController.CreateBook)
	api.GET("/books/:id", booksController.GetBook)
	api.PUT("/books/:id", booksController.UpdateBook)
	api.DELETE("/books/:id", booksController.DeleteBook)
	api.PUT("/books/:id/detail", booksController.UpsertDetail)
	api.DELETE("/books/:id/detail", booksController.DeleteDetail)

	return router
}
