package routes

import (
	"eventfriend_server/controllers"
	"eventfriend_server/services"

	"github.com/gorilla/mux"
)

// RegisterInterestRoutes sets up routes for person-to-person interests under /api/interests
func RegisterInterestRoutes(r *mux.Router, interestService *services.InterestService, requireAuth mux.MiddlewareFunc) {
	controller := controllers.NewInterestController(interestService)

	interestRouter := r.PathPrefix("/api/interests").Subrouter()
	interestRouter.Use(requireAuth)

	interestRouter.HandleFunc("", controller.ListInterests).Methods("GET")
	interestRouter.HandleFunc("", controller.DeclareInterest).Methods("POST")
	interestRouter.HandleFunc("", controller.WithdrawInterest).Methods("DELETE")
}
