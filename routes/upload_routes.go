package routes

import (
	"eventfriend_server/controllers"
	"eventfriend_server/services"

	"github.com/gorilla/mux"
)

// RegisterUploadRoutes sets up routes for presigned S3 URLs under /api/uploads
func RegisterUploadRoutes(r *mux.Router, uploadService *services.UploadService, requireAuth mux.MiddlewareFunc) {
	controller := controllers.NewUploadController(uploadService)

	uploadRouter := r.PathPrefix("/api/uploads").Subrouter()
	uploadRouter.Use(requireAuth)

	uploadRouter.HandleFunc("/profile-image", controller.GeneratePresignedURL).Methods("POST")
	uploadRouter.HandleFunc("/read-url", controller.GetPresignedReadURL).Methods("POST")
}
