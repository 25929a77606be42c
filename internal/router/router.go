package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gamevault-backend/internal/handlers"
	"gamevault-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	gameHandler *handlers.GameHandler,
	adminHandler *handlers.AdminHandler,
	cartHandler *handlers.CartHandler,
	libraryHandler *handlers.LibraryHandler,
	postHandler *handlers.PostHandler,
	commentHandler *handlers.CommentHandler,
	uploadHandler *handlers.UploadHandler,
	aiHandler *handlers.AIHandler,
	clientURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(clientURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {

		// ──── AI assistant (public) ────
		r.Post("/ai/chat", aiHandler.Chat)

		// ──── Auth Routes (public) ────
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/verify-email-code", authHandler.VerifyEmailCode)
			r.Post("/resend-verification-code", authHandler.ResendVerificationCode)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
			r.Post("/login", authHandler.Login)
			r.Post("/admin/login", authHandler.AdminLogin)
		})

		// ──── Public catalog ────
		r.Get("/games", gameHandler.List)
		r.Get("/games/{id}", gameHandler.Get)

		// ──── Public newsfeed reads ────
		r.Get("/feed", postHandler.Feed)
		r.Get("/posts/{id}/comments", commentHandler.ListByPost)

		// ──── Authenticated routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Get("/me", authHandler.GetMe)

			// Uploads
			r.Post("/upload", uploadHandler.Upload)
			r.Delete("/upload", uploadHandler.Delete)

			// Cart & checkout (no admin purchases)
			r.Route("/cart", func(r chi.Router) {
				r.Use(middleware.BlockAdminPurchase)
				r.Get("/", cartHandler.Get)
				r.Post("/add/{gameId}", cartHandler.Add)
				r.Patch("/update/{gameId}", cartHandler.UpdateItem)
				r.Delete("/remove/{gameId}", cartHandler.RemoveItem)
				r.Post("/checkout", cartHandler.Checkout)
			})

			// Library & keys
			r.With(middleware.BlockAdminPurchase).Get("/library", libraryHandler.List)
			r.Patch("/keys/use/{keyId}", libraryHandler.UseKey)

			// Newsfeed
			r.Get("/my-posts", postHandler.MyPosts)
			r.Post("/posts", postHandler.Create)
			r.Patch("/posts/{id}", postHandler.Update)
			r.Delete("/posts/{id}", postHandler.Delete)
			r.Post("/posts/{id}/react", postHandler.React)

			// Comments
			r.Post("/posts/{id}/comments", commentHandler.Create)
			r.Patch("/comments/{id}", commentHandler.Update)
			r.Delete("/comments/{id}", commentHandler.Delete)

			// ──── Admin routes ────
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/dashboard", adminHandler.Dashboard)

				r.Post("/upload-game", uploadHandler.Upload)
				r.Delete("/upload-game", uploadHandler.Delete)

				r.Get("/games", gameHandler.List)
				r.Get("/games/{id}", gameHandler.Get)
				r.Post("/games", adminHandler.CreateGame)
				r.Put("/games/{id}", adminHandler.UpdateGame)
				r.Delete("/games/{id}", adminHandler.DeleteGame)

				r.Delete("/posts/{id}", adminHandler.DeletePost)
				r.Delete("/comments/{id}", adminHandler.DeleteComment)
			})
		})
	})

	return r
}
