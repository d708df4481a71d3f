//	@title			Imobiliária API
//	@version		1.0
//	@description	Multi-tenant property listing API: authenticated users manage property records with optional image upload.
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque bearer token from POST /token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/auth"
	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/config"
	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/db"
	appMiddleware "github.com/carlosalbertoprojetos/imobiliaria-api/internal/middleware"
	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/property"
	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/storage"

	_ "github.com/carlosalbertoprojetos/imobiliaria-api/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := newStorage(cfg)
	if err != nil {
		log.Fatalf("blob storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	repo := property.NewPostgresRepository(pool)
	propertySvc := property.NewService(repo, store)
	propertyHandler := property.NewHandler(propertySvc, store)

	authHandler := auth.NewHandler(auth.NewService())

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Public: token exchange and image serving. Image names are unguessable
	// generated strings, which is the whole access model for them.
	r.Post("/token", authHandler.Login)
	r.Get("/uploads/{name}", propertyHandler.GetImage)

	// Protected property endpoints
	r.Route("/properties", func(r chi.Router) {
		r.Use(appMiddleware.RequireToken)
		r.Get("/", propertyHandler.List)
		r.Post("/", propertyHandler.Create)
		r.Get("/{id}", propertyHandler.Get)
		r.Put("/{id}", propertyHandler.Update)
		r.Delete("/{id}", propertyHandler.Delete)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}

// newStorage builds the blob store selected by STORAGE_DRIVER.
func newStorage(cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageDriver == "s3" {
		return storage.NewMinioStorage(
			cfg.StorageEndpoint,
			cfg.StorageAccessKey,
			cfg.StorageSecretKey,
			cfg.StorageBucket,
			cfg.StoragePublicBase,
			cfg.StorageUseSSL,
		)
	}
	return storage.NewLocalStorage(cfg.UploadDir, cfg.StoragePublicBase)
}
