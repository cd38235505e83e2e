package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"eventfriend_server/auth"
	"eventfriend_server/services"
	"eventfriend_server/utils"
)

// MatchController handles HTTP requests for match-related actions
type MatchController struct {
	InterestService *services.InterestService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(interestService *services.InterestService) *MatchController {
	return &MatchController{InterestService: interestService}
}

// ListMatches handles GET /api/matches
func (c *MatchController) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := c.InterestService.ListMatches(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// GetMatch handles GET /api/matches/{matchId}
func (c *MatchController) GetMatch(w http.ResponseWriter, r *http.Request) {
	match, err := c.InterestService.GetMatch(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["matchId"])
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, match)
}

// Unmatch handles DELETE /api/matches/{matchId}. The body is optional.
func (c *MatchController) Unmatch(w http.ResponseWriter, r *http.Request) {
	var req services.UnmatchRequest
	if r.ContentLength > 0 {
		if err := utils.DecodeJSON(r, &req); err != nil {
			writeBadRequest(w)
			return
		}
	}
	req.MatchID = mux.Vars(r)["matchId"]

	if err := c.InterestService.Unmatch(r.Context(), auth.FromContext(r.Context()), req); err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "success", "message": "Unmatched successfully"})
}
