package routes

import (
	"eventfriend_server/controllers"
	"eventfriend_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat messages under /api/matches/{matchId}/messages
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, requireAuth mux.MiddlewareFunc) {
	controller := controllers.NewChatController(chatService)

	chatRouter := r.PathPrefix("/api/matches/{matchId}/messages").Subrouter()
	chatRouter.Use(requireAuth)

	chatRouter.HandleFunc("", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("", controller.HandleSendMessage).Methods("POST")
}
