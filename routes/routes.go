package routes

import (
	"eventfriend_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the public routes for the application
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/welcome", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
	r.HandleFunc("/privacy-policy", PrivacyPolicyHandler).Methods("GET")
}
