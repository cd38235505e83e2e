package controllers

import (
	"log/slog"
	"net/http"

	"eventfriend_server/auth"
	"eventfriend_server/models"
	"eventfriend_server/utils"
)

// AuthController handles sign-up, sign-in and password reset.
type AuthController struct {
	Authenticator *auth.PasswordAuthenticator
	JWT           *auth.JWTManager
}

func NewAuthController(authenticator *auth.PasswordAuthenticator, jwtManager *auth.JWTManager) *AuthController {
	return &AuthController{Authenticator: authenticator, JWT: jwtManager}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Account *models.Account `json:"account"`
}

func (c *AuthController) issue(w http.ResponseWriter, status int, account *models.Account) {
	token, err := c.JWT.Generate(account.UserID, account.EmailID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, status, sessionResponse{Token: token, Account: account})
}

// SignUp handles POST /api/auth/signup
func (c *AuthController) SignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	account, err := c.Authenticator.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	slog.Info("✅ Account created", "userId", account.UserID)
	c.issue(w, http.StatusCreated, account)
}

// SignIn handles POST /api/auth/signin
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	account, err := c.Authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	c.issue(w, http.StatusOK, account)
}

// RequestPasswordReset handles POST /api/auth/password-reset
func (c *AuthController) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil || req.Email == "" {
		writeBadRequest(w)
		return
	}

	if err := c.Authenticator.RequestPasswordReset(r.Context(), req.Email); err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Password reset code sent to your email!"})
}

// ConfirmPasswordReset handles POST /api/auth/password-reset/confirm
func (c *AuthController) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeBadRequest(w)
		return
	}

	if err := c.Authenticator.ConfirmPasswordReset(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		WriteServiceError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Password reset successfully. You can now sign in."})
}

// Me handles GET /api/auth/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, auth.FromContext(r.Context()))
}
