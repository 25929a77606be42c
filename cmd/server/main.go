package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tmc/langchaingo/llms/openai"

	"gamevault-backend/internal/config"
	"gamevault-backend/internal/database"
	"gamevault-backend/internal/handlers"
	"gamevault-backend/internal/middleware"
	"gamevault-backend/internal/repository"
	"gamevault-backend/internal/router"
	"gamevault-backend/internal/services"
	"gamevault-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting GameVault Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Client ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepository(pool)
	gameRepo := repository.NewGameRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	// ──── Step 5: Initialize Completion Client (Groq, OpenAI-compatible) ────
	llm, err := openai.New(
		openai.WithToken(cfg.GroqAPIKey),
		openai.WithBaseURL(cfg.GroqBaseURL),
		openai.WithModel(cfg.GroqModel),
	)
	if err != nil {
		log.Fatalf("✗ Completion client initialization failed: %v", err)
	}
	log.Printf("✓ Completion client initialized (%s)", cfg.GroqModel)

	// ──── Step 6: Initialize Media Host Client ────
	mediaService, err := services.NewMediaService(cfg.CloudinaryURL)
	if err != nil {
		log.Fatalf("✗ Cloudinary initialization failed: %v", err)
	}
	log.Println("✓ Cloudinary client initialized")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	authService := services.NewAuthService(userRepo, redisClient, jwtAuth)
	assistantService := services.NewAssistantService(gameRepo, postRepo, llm)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	gameHandler := handlers.NewGameHandler(gameRepo)
	adminHandler := handlers.NewAdminHandler(pool, gameRepo, postRepo, commentRepo, mediaService)
	cartHandler := handlers.NewCartHandler(cartRepo, gameRepo, orderRepo)
	libraryHandler := handlers.NewLibraryHandler(orderRepo)
	postHandler := handlers.NewPostHandler(postRepo, mediaService)
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	uploadHandler := handlers.NewUploadHandler(mediaService)
	aiHandler := handlers.NewAIHandler(assistantService)

	// ──── Step 7: Start Mailer Workers ────
	mailer := worker.NewMailer(redisClient, emailService, cfg.MailerWorkers)
	mailer.Start()
	log.Printf("✓ Mailer started (%d goroutines)", cfg.MailerWorkers)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		gameHandler,
		adminHandler,
		cartHandler,
		libraryHandler,
		postHandler,
		commentHandler,
		uploadHandler,
		aiHandler,
		cfg.ClientURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		mailer.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ GameVault Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
