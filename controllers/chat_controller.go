package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"eventfriend_server/auth"
	"eventfriend_server/services"
	"eventfriend_server/utils"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService) *ChatController {
	return &ChatController{ChatService: service}
}

// HandleGetMessages handles GET /api/matches/{matchId}/messages?limit=
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = 0
	}

	messages, err := c.ChatService.GetMessages(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["matchId"], limit)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// HandleSendMessage handles POST /api/matches/{matchId}/messages
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	message, err := c.ChatService.SendMessage(r.Context(), auth.FromContext(r.Context()), mux.Vars(r)["matchId"], req.Text)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, message)
}
