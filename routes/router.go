package routes

import (
	"github.com/gorilla/mux"

	"eventfriend_server/auth"
	"eventfriend_server/metrics"
	"eventfriend_server/middleware"
	"eventfriend_server/services"
	"eventfriend_server/socket"
)

// Dependencies are the handlers' collaborators. Uploads, Feeds and
// ChatRooms are optional.
type Dependencies struct {
	Authenticator *auth.PasswordAuthenticator
	JWT           *auth.JWTManager
	Profiles      *services.UserProfileService
	Events        *services.EventService
	Interests     *services.InterestService
	Chat          *services.ChatService
	Uploads       *services.UploadService
	Feeds         *socket.Feeds
	ChatRooms     *socket.ChatRooms
	Metrics       *metrics.Metrics
}

// NewRouter builds the full application router
func NewRouter(d Dependencies) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging(d.Metrics))
	requireAuth := middleware.RequireAuth(d.JWT)

	RegisterRoutes(r)
	r.Handle("/metrics", d.Metrics.Handler()).Methods("GET")

	RegisterAuthRoutes(r, d.Authenticator, d.JWT, requireAuth)
	RegisterUserProfileRoutes(r, d.Profiles, requireAuth)
	RegisterEventRoutes(r, d.Events, d.Interests, requireAuth)
	RegisterInterestRoutes(r, d.Interests, requireAuth)
	// Chat goes before matches so /api/matches/{id}/messages is not
	// shadowed by the match subrouter.
	RegisterChatRoutes(r, d.Chat, requireAuth)
	RegisterMatchRoutes(r, d.Interests, requireAuth)
	if d.Uploads != nil {
		RegisterUploadRoutes(r, d.Uploads, requireAuth)
	}

	if d.Feeds != nil {
		d.Feeds.RegisterRoutes(r)
	}
	if d.ChatRooms != nil {
		r.PathPrefix("/socket.io/").Handler(d.ChatRooms.Server)
	}
	return r
}
