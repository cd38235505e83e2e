package controllers

import (
	"log/slog"
	"net/http"

	"eventfriend_server/auth"
	"eventfriend_server/services"
	"eventfriend_server/utils"
)

// InterestController handles interest declarations.
type InterestController struct {
	InterestService *services.InterestService
}

func NewInterestController(interestService *services.InterestService) *InterestController {
	return &InterestController{InterestService: interestService}
}

type interestRequest struct {
	ToUser  string `json:"toUser"`
	EventID string `json:"eventId"`
}

// DeclareInterest handles POST /api/interests
func (c *InterestController) DeclareInterest(w http.ResponseWriter, r *http.Request) {
	var req interestRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	result, err := c.InterestService.DeclareInterest(r.Context(), auth.FromContext(r.Context()), req.ToUser, req.EventID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if result.Matched {
		slog.Info("🎉 Match created from interest", "matchId", result.Match.MatchID)
	}
	utils.WriteJSONResponse(w, http.StatusCreated, result)
}

// WithdrawInterest handles DELETE /api/interests
func (c *InterestController) WithdrawInterest(w http.ResponseWriter, r *http.Request) {
	var req interestRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	if err := c.InterestService.WithdrawInterest(r.Context(), auth.FromContext(r.Context()), req.ToUser, req.EventID); err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "success", "message": "Interest withdrawn"})
}

// ListInterests handles GET /api/interests
func (c *InterestController) ListInterests(w http.ResponseWriter, r *http.Request) {
	interests, err := c.InterestService.ListInterests(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"interests": interests})
}
