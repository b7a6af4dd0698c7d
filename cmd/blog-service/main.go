package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/inkwell-dev/blog-service/internal/cache"
	"github.com/inkwell-dev/blog-service/internal/config"
	"github.com/inkwell-dev/blog-service/internal/http/handlers/auth"
	"github.com/inkwell-dev/blog-service/internal/http/handlers/blogs"
	"github.com/inkwell-dev/blog-service/internal/http/middleware"
	"github.com/inkwell-dev/blog-service/internal/services/media"
	"github.com/inkwell-dev/blog-service/internal/storage/postgres"
	"github.com/inkwell-dev/blog-service/internal/utils/response"
)

func main() {
	// load config
	cfg := config.MustLoad()

	// database setup
	store, err := postgres.NewPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	slog.Info("Connected to Postgres database")

	// media setup
	mediaSvc, err := media.NewService(cfg)
	if err != nil {
		log.Fatal("Failed to initialize media storage:", err)
	}

	// optional feed cache
	var feed blogs.FeedProvider = store
	var feedCache blogs.FeedInvalidator
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		cacheSvc := cache.NewService(store, redisClient)
		feed = cacheSvc
		feedCache = cacheSvc
		slog.Info("Feed cache enabled", slog.String("redis", cfg.Redis.Address))
	}

	protected := middleware.AuthMiddleware(cfg.JWTSecret, store)

	// setup server
	router := http.NewServeMux()

	router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	router.HandleFunc("POST /auth/signup", auth.SignUp(store, cfg.JWTSecret))
	router.HandleFunc("POST /auth/login", auth.Login(store, cfg.JWTSecret))
	router.HandleFunc("GET /auth/verify", auth.Verify(cfg.JWTSecret))

	router.Handle("GET /auth/me", protected(auth.Me(store)))
	router.Handle("PUT /auth/update", protected(auth.UpdateProfile(store)))
	router.Handle("PUT /auth/preferences", protected(auth.UpdatePreferences(store)))
	router.Handle("POST /auth/avatar", protected(auth.UploadAvatar(store, mediaSvc, cfg.Media.MaxUploadSize)))
	router.Handle("PUT /auth/avatar/select", protected(auth.SelectAvatar(store)))
	router.Handle("DELETE /auth/delete", protected(auth.DeleteAccount(store)))
	router.Handle("POST /auth/stats/post", protected(auth.IncrementPostStat(store)))
	router.Handle("GET /auth/stats", protected(auth.GetStats(store)))

	router.Handle("POST /blogs", protected(blogs.Create(store, mediaSvc, feedCache, cfg.HTTPServer.PublicURL, cfg.Media.MaxUploadSize)))
	router.HandleFunc("GET /blogs", blogs.List(feed))
	router.HandleFunc("GET /blogs/{id}", blogs.Get(store))

	// uploaded files are served straight off disk; with the minio backend
	// the bucket endpoint serves them instead
	if cfg.Media.Backend != "minio" {
		router.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Media.UploadDir))))
	}

	server := http.Server{
		Addr:    cfg.HTTPServer.Address,
		Handler: router,
	}

	log.Println("server started on", cfg.HTTPServer.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-done

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = server.Shutdown(ctx)
	if err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
