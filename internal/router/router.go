package router

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/foodbridge-dev/foodbridge/internal/middleware"
	"github.com/foodbridge-dev/foodbridge/internal/middleware/metrics"
	rl "github.com/foodbridge-dev/foodbridge/internal/middleware/ratelimiter"
	"github.com/foodbridge-dev/foodbridge/internal/setup"
)

// New creates and configures the mux router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints combined in that subrouter
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(handlers.CompressHandler)
	r.Use(handlers.CORS(
		handlers.AllowedOrigins(deps.Config.Public.AllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	))
	r.Use(metrics.Middleware)

	// Wildcard OPTIONS handler to avoid 404s for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/ready", h.Ready(deps.Storage)).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	// Auth routes
	auth := v1.PathPrefix("/auth").Subrouter()

	authRegister := auth.NewRoute().Subrouter()
	authRegister.Use(mw.RateLimit(rl.New(1.0/10, 3, 1*time.Hour), mw.GetIP)) // 1 per 10s by IP, small burst
	authRegister.Use(mw.GlobalRateLimit(rl.Rps100()))
	authRegister.HandleFunc("/register", h.Register).Methods("POST")

	authLogin := auth.NewRoute().Subrouter()
	authLogin.Use(mw.RateLimit(rl.OnceInSecond(), mw.GetIP)) // 1 per second by IP
	authLogin.Use(mw.GlobalRateLimit(rl.Rps100()))
	authLogin.HandleFunc("/login", h.Login).Methods("POST")

	auth.HandleFunc("/username_taken", h.UsernameTaken).Methods("GET")
	auth.HandleFunc("/logout", h.Logout).Methods("POST")

	// Admin routes
	admin := v1.PathPrefix("/admin").Subrouter()
	admin.Use(authMw.AdminOnly())
	admin.HandleFunc("/users", h.AllUsers).Methods("GET")
	admin.HandleFunc("/users/watch", h.WatchAllUsers).Methods("GET")
	admin.HandleFunc("/users/pending", h.PendingUsers).Methods("GET")
	admin.HandleFunc("/users/pending/watch", h.WatchPendingUsers).Methods("GET")
	admin.HandleFunc("/users/{userId}/approve", h.ApproveUser).Methods("POST")
	admin.HandleFunc("/users/{userId}/block", h.ToggleBlockUser).Methods("POST")

	// Logged-in user routes
	loggedIn := v1.NewRoute().Subrouter()
	loggedIn.Use(authMw.NeedAuth())
	loggedIn.Use(mw.RateLimit(rl.Rps100(), mw.GetUserIDFromContext)) // 100 RPS per user

	loggedIn.HandleFunc("/posts", h.CreatePost).Methods("POST")
	loggedIn.HandleFunc("/posts", h.MyPosts).Methods("GET")
	loggedIn.HandleFunc("/posts/available", h.AvailablePosts).Methods("GET")
	loggedIn.HandleFunc("/posts/available/watch", h.WatchAvailablePosts).Methods("GET")
	loggedIn.HandleFunc("/posts/{postId}", h.GetPost).Methods("GET")
	loggedIn.HandleFunc("/posts/{postId}", h.UpdatePost).Methods("PUT")
	loggedIn.HandleFunc("/posts/{postId}", h.DeletePost).Methods("DELETE")
	loggedIn.HandleFunc("/posts/{postId}/delivered", h.MarkDelivered).Methods("POST")

	loggedIn.HandleFunc("/requests", h.CreateRequest).Methods("POST")
	loggedIn.HandleFunc("/requests/incoming", h.IncomingRequests).Methods("GET")
	loggedIn.HandleFunc("/requests/outgoing", h.OutgoingRequests).Methods("GET")
	loggedIn.HandleFunc("/requests/{requestId}/status", h.UpdateRequestStatus).Methods("POST")
	loggedIn.HandleFunc("/requests/{requestId}", h.DeleteRequest).Methods("DELETE")

	loggedIn.HandleFunc("/chat/{userId}", h.GetConversation).Methods("GET")
	loggedIn.HandleFunc("/chat/{userId}", h.SendMessage).Methods("POST")
	loggedIn.HandleFunc("/chat/{userId}", h.DeleteConversation).Methods("DELETE")
	loggedIn.HandleFunc("/chat/{userId}/watch", h.WatchConversation).Methods("GET")

	return r
}
