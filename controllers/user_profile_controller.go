package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"eventfriend_server/auth"
	"eventfriend_server/services"
	"eventfriend_server/utils"
)

// UserProfileController handles requests related to user profiles
type UserProfileController struct {
	UserProfileService *services.UserProfileService
}

// NewUserProfileController creates a new instance of UserProfileController
func NewUserProfileController(userProfileService *services.UserProfileService) *UserProfileController {
	return &UserProfileController{UserProfileService: userProfileService}
}

// GetOwnProfile handles GET /api/profiles/me
func (c *UserProfileController) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	view, err := c.UserProfileService.GetOwnProfile(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, view)
}

// SaveProfile handles PUT /api/profiles/me
func (c *UserProfileController) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var input services.ProfileUpdate
	if err := utils.DecodeJSON(r, &input); err != nil {
		writeBadRequest(w)
		return
	}

	view, err := c.UserProfileService.SaveProfile(r.Context(), auth.FromContext(r.Context()), input)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Profile saved successfully!",
		"profile": view,
	})
}

// UpdateProfile handles PATCH /api/profiles/me
func (c *UserProfileController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update services.ProfileUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		writeBadRequest(w)
		return
	}

	view, err := c.UserProfileService.UpdateProfile(r.Context(), auth.FromContext(r.Context()), update)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": view,
	})
}

// GetProfile handles GET /api/profiles/{userId}
func (c *UserProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := c.UserProfileService.GetProfile(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["userId"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, user)
}
