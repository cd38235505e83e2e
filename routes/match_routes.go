package routes

import (
	"eventfriend_server/controllers"
	"eventfriend_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up routes for matches and their chats under /api/matches
func RegisterMatchRoutes(r *mux.Router, interestService *services.InterestService, requireAuth mux.MiddlewareFunc) {
	controller := controllers.NewMatchController(interestService)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()
	matchRouter.Use(requireAuth)

	matchRouter.HandleFunc("", controller.ListMatches).Methods("GET")
	matchRouter.HandleFunc("/{matchId}", controller.GetMatch).Methods("GET")
	matchRouter.HandleFunc("/{matchId}", controller.Unmatch).Methods("DELETE")
}
