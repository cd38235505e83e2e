package middleware

import (
	"net/http"
	"strings"

	"eventfriend_server/auth"
	"eventfriend_server/utils"
)

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the token query parameter used by websocket clients.
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", auth.ErrInvalidToken
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", auth.ErrMissingToken
}

// RequireAuth validates the token and puts the session in the request
// context. Requests without a valid token get 401.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := TokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, auth.Message(err))
				return
			}
			sess, err := jwtManager.Validate(token)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, auth.Message(err))
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithSession(r.Context(), sess)))
		})
	}
}
