package routes

import (
	"github.com/coachkit/roster-system/handlers"
	appMiddleware "github.com/coachkit/roster-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Player    *handlers.PlayerHandler
	Reference *handlers.ReferenceHandler
	Exercise  *handlers.ExerciseHandler
	WebSocket *handlers.WebSocketHandler
}

func InitRoutes(jwtSecret []byte, h Handlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-Team-ID"},
		MaxAge:         300,
	}))
	router.Use(appMiddleware.Language)

	router.Post("/auth/register", h.Auth.Register)
	router.Post("/auth/login", h.Auth.Login)

	// Защищенные маршруты, требуют валидный JWT
	router.Group(func(r chi.Router) {
		r.Use(appMiddleware.Authenticate(jwtSecret))

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Player.ListPlayers)
			r.Post("/", h.Player.SubmitProfile)
			r.Get("/{playerID}", h.Player.GetPlayer)
			r.Delete("/{playerID}", h.Player.DeletePlayer)
		})

		r.Route("/references", func(r chi.Router) {
			r.Get("/players", h.Reference.ListPlayerRefs)
			r.Get("/{kind}", h.Reference.ListByKind)
		})

		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", h.Exercise.ListExercises)
			r.Post("/", h.Exercise.CreateExercise)
			r.Get("/{exerciseID}", h.Exercise.GetExercise)
			r.Put("/{exerciseID}", h.Exercise.UpdateExercise)
			r.Delete("/{exerciseID}", h.Exercise.DeleteExercise)
		})

		r.Get("/ws/teams/{teamID}", h.WebSocket.ServeWs)
	})

	return router
}
