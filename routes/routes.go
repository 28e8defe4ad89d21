package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/playmatch/playmatch-server/handlers"
	"github.com/playmatch/playmatch-server/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	matchHandler *handlers.MatchHandler,
	inviteHandler *handlers.InviteHandler,
	emergencyHandler *handlers.EmergencyHandler,
	paymentHandler *handlers.PaymentHandler,
	teamHandler *handlers.TeamHandler,
	statsHandler *handlers.StatsHandler,
	wsHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Route("/v2", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/otp/request", authHandler.RequestOTP)
			r.Post("/otp/verify", authHandler.VerifyOTP)
			r.Post("/refresh-token", authHandler.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)
				r.Get("/profile", authHandler.GetProfile)
				r.Post("/profile", authHandler.UpdateProfile)
			})
		})

		// Разрешение приглашений — без аутентификации.
		r.Get("/invites/{token}", inviteHandler.Resolve)

		r.Route("/matches", func(r chi.Router) {
			// Просмотр матча доступен анониму в публичной проекции.
			r.With(auth.AuthenticateOptional).Get("/{matchID}", matchHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)

				r.Post("/", matchHandler.Create)
				r.Get("/my-games", matchHandler.MyGames)
				r.Post("/{matchID}/respond", matchHandler.Respond)
				r.Post("/{matchID}/complete", matchHandler.Complete)
				r.Post("/{matchID}/cancel", matchHandler.Cancel)
				r.Post("/{matchID}/backout", matchHandler.LogBackout)

				r.Route("/{matchID}/emergency", func(r chi.Router) {
					r.Post("/request", emergencyHandler.Request)
					r.Get("/requests", emergencyHandler.ListPending)
					r.Post("/{requestID}/approve", emergencyHandler.Approve)
					r.Post("/{requestID}/reject", emergencyHandler.Reject)
				})

				r.Post("/{matchID}/payments/mark", paymentHandler.Mark)
				r.Get("/{matchID}/payments/tracking", paymentHandler.Tracking)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/search", teamHandler.Search)
			r.Get("/{teamID}", teamHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(auth.Authenticate)

				r.Post("/", teamHandler.Create)
				r.Patch("/{teamID}", teamHandler.Update)
				r.Delete("/{teamID}", teamHandler.Delete)
				r.Post("/{teamID}/members", teamHandler.AddMember)
				r.Delete("/{teamID}/members/{userID}", teamHandler.RemoveMember)
				r.Post("/{teamID}/logo", teamHandler.UploadLogo)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/stats", statsHandler.ListAll)
			r.Get("/{playerID}/stats", statsHandler.GetPlayer)
		})
	})

	router.Get("/ws/matches/{matchID}", wsHandler.ServeMatch)
}
