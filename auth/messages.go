package auth

import "errors"

// Message maps an auth error to the text shown to the user.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials):
		return "Incorrect login information"
	case errors.Is(err, ErrWeakPassword):
		return "Password must be at least 6 characters long."
	case errors.Is(err, ErrEmailExists):
		return "An account with this email already exists."
	case errors.Is(err, ErrInvalidEmail):
		return "Please enter a valid email address."
	case errors.Is(err, ErrExpiredResetCode):
		return "This reset link has expired. Please request a new password reset."
	case errors.Is(err, ErrInvalidResetCode):
		return "Invalid reset link. Please request a new password reset."
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrInvalidToken):
		return "Please sign in to continue."
	default:
		return "Something went wrong. Please try again."
	}
}
