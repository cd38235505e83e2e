package controllers

import (
	"net/http"

	"eventfriend_server/auth"
	"eventfriend_server/services"
	"eventfriend_server/utils"
)

// UploadController hands out presigned S3 URLs for profile images.
type UploadController struct {
	UploadService *services.UploadService
}

func NewUploadController(uploadService *services.UploadService) *UploadController {
	return &UploadController{UploadService: uploadService}
}

// GeneratePresignedURL handles POST /api/uploads/profile-image
func (c *UploadController) GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		writeBadRequest(w)
		return
	}

	ticket, err := c.UploadService.GenerateUploadURL(r.Context(), auth.FromContext(r.Context()), payload.FileName, payload.FileType)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, ticket)
}

// GetPresignedReadURL handles POST /api/uploads/read-url
func (c *UploadController) GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil || payload.Key == "" {
		writeBadRequest(w)
		return
	}

	url, err := c.UploadService.GenerateReadURL(r.Context(), auth.FromContext(r.Context()), payload.Key)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}
