package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/libreria/internal/auth"
	"github.com/mrlokans/libreria/internal/catalog"
	"github.com/mrlokans/libreria/internal/config"
	"github.com/mrlokans/libreria/internal/database"
	"github.com/mrlokans/libreria/internal/database/authors"
	"github.com/mrlokans/libreria/internal/database/books"
	"github.com/mrlokans/libreria/internal/database/genres"
	"github.com/mrlokans/libreria/internal/database/users"
	http_controllers "github.com/mrlokans/libreria/internal/http"
)

// The repositories must satisfy the interfaces their consumers declare.
var (
	_ http_controllers.AuthorStore = (*authors.Repository)(nil)
	_ http_controllers.GenreStore  = (*genres.Repository)(nil)
	_ http_controllers.BookStore   = (*books.Repository)(nil)
	_ catalog.BookStore            = (*books.Repository)(nil)
	_ auth.UserStore               = (*users.Repository)(nil)
)

// Serve runs the HTTP server until an interrupt or termination signal
// arrives, then shuts down gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the database, repositories, services and router together and
// serves HTTP.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Libreria v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	authorRepo := authors.NewRepository(db.DB)
	genreRepo := genres.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)

	catalogService := catalog.NewService(bookRepo)

	routerCfg := http_controllers.RouterConfig{
		AuthorStore:   authorRepo,
		GenreStore:    genreRepo,
		BookStore:     bookRepo,
		Catalog:       catalogService,
		SecureCookies: cfg.Auth.SecureCookies,
	}

	if cfg.Auth.Mode == config.AuthModeLocal {
		secret := cfg.Auth.SessionSecret
		if secret == "" {
			secret, err = auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate session secret: %v", err)
			}
			log.Printf("WARNING: AUTH_SESSION_SECRET is not set; using an ephemeral secret. Sessions will not survive a restart.")
		}
		csrfSecret, err := hex.DecodeString(secret)
		if err != nil {
			log.Fatalf("AUTH_SESSION_SECRET must be a hex string: %v", err)
		}

		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get underlying database handle: %v", err)
		}
		sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authService := auth.NewService(userRepo, cfg.Auth)

		routerCfg.AuthService = authService
		routerCfg.SessionManager = sessionManager
		routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		routerCfg.CSRFSecret = csrfSecret
	}

	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg)
}
