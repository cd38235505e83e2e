package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventfriend_server/auth"
	"eventfriend_server/services"
	"eventfriend_server/utils"
)

const genericError = "Something went wrong. Please try again."

// statusFor maps a service or auth error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrEventNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateInterest),
		errors.Is(err, services.ErrEventFull),
		errors.Is(err, auth.ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrSelfInterest),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidResetCode),
		errors.Is(err, auth.ErrExpiredResetCode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err as a JSON error body. Unexpected errors are
// logged and replaced with a generic message.
func WriteServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	switch {
	case status == http.StatusInternalServerError:
		slog.Error("❌ Request failed", "error", err)
		utils.WriteError(w, status, genericError)
	case isAuthError(err):
		utils.WriteError(w, status, auth.Message(err))
	default:
		utils.WriteError(w, status, err.Error())
	}
}

func isAuthError(err error) bool {
	for _, target := range []error{
		auth.ErrMissingToken, auth.ErrInvalidToken, auth.ErrInvalidCredentials, auth.ErrEmailExists,
		auth.ErrWeakPassword, auth.ErrInvalidEmail, auth.ErrInvalidResetCode, auth.ErrExpiredResetCode,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func writeBadRequest(w http.ResponseWriter) {
	utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
}
