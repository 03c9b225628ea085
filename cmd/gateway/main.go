package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	api "github.com/akhildhavil09/stugrader/internal/api/http"
	auth "github.com/akhildhavil09/stugrader/internal/auth/middleware"
	"github.com/akhildhavil09/stugrader/internal/config"
	"github.com/akhildhavil09/stugrader/internal/db"
	"github.com/akhildhavil09/stugrader/internal/embedding"
	"github.com/akhildhavil09/stugrader/internal/grading"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // optional .env for local dev

	cfg := config.FromEnv()

	// --- Embedding backend (loaded once, shared across requests) ---
	var embedder embedding.Embedder
	switch cfg.EmbedProvider {
	case "ollama":
		embedder = embedding.NewOllamaEmbedder(cfg.OllamaBaseURL, cfg.OllamaModel, cfg.EmbedDims)
	default:
		embedder = embedding.NewLocalEmbedder(cfg.EmbedDims)
	}

	if cfg.CacheEnabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		embedder = embedding.NewCachedEmbedder(embedder, dbh)
	}

	grader := grading.NewGrader(embedder, grading.WithWorkers(cfg.GradeWorkers))

	// --- Auth (local JWT, optional) ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := auth.NewAuthService(secret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, cfg.AdminUser, cfg.AdminPassHash))
		r.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(authSvc))
			pr.Post("/analyze", api.AnalyzeHandler(grader, cfg.MaxUploadBytes))
		})
	} else {
		r.Post("/analyze", api.AnalyzeHandler(grader, cfg.MaxUploadBytes))
	}

	r.Get("/healthz", api.HealthHandler())

	log.Printf("listening on %s (mode=%s, embedder=%s, cache=%v)", cfg.HTTPAddr, cfg.Mode, embedder.Model(), cfg.CacheEnabled)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
