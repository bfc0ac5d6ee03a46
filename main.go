package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"readMoreAPI/handlers"
	"readMoreAPI/internal/cache"
	"readMoreAPI/internal/engine"
	"readMoreAPI/middleware"
	"readMoreAPI/services"
	"readMoreAPI/utils"

	_ "net/http/pprof"
)

var (
	dbPool           *pgxpool.Pool
	positionStore    cache.PositionStore
	streakEngine     *engine.Engine
	userService      *services.UserService
	bookService      *services.BookService
	readerService    *services.ReaderService
	challengeService *services.ChallengeService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	log.Println("Successfully connected to Postgres")

	if err := utils.SeedChallenges(ctx, dbPool); err != nil {
		log.Fatal("Failed to seed challenge catalog:", err)
	}

	// The reading-position cache is swappable: Redis when configured,
	// process memory otherwise.
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		redisStore, err := cache.NewRedisPositionStore(redisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
		positionStore = redisStore
		log.Println("Using Redis position cache")
	} else {
		positionStore = cache.NewMemoryPositionStore()
		log.Println("Using in-memory position cache")
	}

	streakEngine = engine.New(services.NewStreakStore(dbPool))
	userService = services.NewUserService(dbPool)
	bookService = services.NewBookService(dbPool)
	readerService = services.NewReaderService(dbPool, bookService, positionStore, streakEngine)
	challengeService = services.NewChallengeService(dbPool)

	middleware.InitPrometheus()
	engine.RegisterMetrics()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService)
	readerHandler := handlers.NewReaderHandler(readerService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "readMore-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER (all routes require auth)
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.ClerkAuthMiddleware)

	api.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	api.HandleFunc("/user/streak", userHandler.GetStreak).Methods("GET")
	api.HandleFunc("/user/stats", userHandler.GetReadingStats).Methods("GET")

	api.HandleFunc("/books", bookHandler.CreateBook).Methods("POST")
	api.HandleFunc("/books/{bookId}", bookHandler.GetBook).Methods("GET")

	api.HandleFunc("/library", bookHandler.GetLibrary).Methods("GET")
	api.HandleFunc("/library", bookHandler.AddToLibrary).Methods("POST")
	api.HandleFunc("/library/{bookId}", bookHandler.RemoveFromLibrary).Methods("DELETE")
	api.HandleFunc("/library/{bookId}/status", bookHandler.UpdateReadingStatus).Methods("PUT")

	api.HandleFunc("/reader/sessions", readerHandler.StartSession).Methods("POST")
	api.HandleFunc("/reader/sessions/{sessionId}/end", readerHandler.EndSession).Methods("PUT")
	api.HandleFunc("/reader/position", readerHandler.UpdatePosition).Methods("POST")
	api.HandleFunc("/reader/books/{bookId}/stats", readerHandler.GetBookStats).Methods("GET")
	api.HandleFunc("/reader/books/{bookId}/sessions", readerHandler.GetSessions).Methods("GET")
	api.HandleFunc("/reader/books/{bookId}/content", readerHandler.GetBookContent).Methods("GET")

	api.HandleFunc("/challenges", challengeHandler.GetChallenges).Methods("GET")
	api.HandleFunc("/challenges/progress", challengeHandler.GetUserProgress).Methods("GET")
	api.HandleFunc("/challenges/{challengeId}/start", challengeHandler.StartChallenge).Methods("POST")
	api.HandleFunc("/challenges/{challengeId}/abandon", challengeHandler.AbandonChallenge).Methods("POST")

	// CORS configuration
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins([]string{"*"}),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
