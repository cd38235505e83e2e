package routes

import (
	"eventfriend_server/auth"
	"eventfriend_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterAuthRoutes sets up sign-up, sign-in and password reset under /api/auth
func RegisterAuthRoutes(r *mux.Router, authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager, requireAuth mux.MiddlewareFunc) {
	controller := controllers.NewAuthController(authenticator, jwtManager)

	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/signup", controller.SignUp).Methods("POST")
	authRouter.HandleFunc("/signin", controller.SignIn).Methods("POST")
	authRouter.HandleFunc("/password-reset", controller.RequestPasswordReset).Methods("POST")
	authRouter.HandleFunc("/password-reset/confirm", controller.ConfirmPasswordReset).Methods("POST")

	meRouter := authRouter.PathPrefix("/me").Subrouter()
	meRouter.Use(requireAuth)
	meRouter.HandleFunc("", controller.Me).Methods("GET")
}
