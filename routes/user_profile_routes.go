package routes

import (
	"eventfriend_server/controllers"
	"eventfriend_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for user profile operations under /api/profiles
func RegisterUserProfileRoutes(r *mux.Router, userProfileService *services.UserProfileService, requireAuth mux.MiddlewareFunc) {
	controller := controllers.NewUserProfileController(userProfileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()
	profileRouter.Use(requireAuth)

	profileRouter.HandleFunc("/me", controller.GetOwnProfile).Methods("GET")
	profileRouter.HandleFunc("/me", controller.SaveProfile).Methods("PUT")
	profileRouter.HandleFunc("/me", controller.UpdateProfile).Methods("PATCH")
	profileRouter.HandleFunc("/{userId}", controller.GetProfile).Methods("GET")
}
