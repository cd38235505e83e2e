package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"eventfriend_server/auth"
	"eventfriend_server/services"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrUnauthenticated, http.StatusUnauthorized},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("load: %w", services.ErrMatchNotFound), http.StatusNotFound},
		{services.ErrEventNotFound, http.StatusNotFound},
		{services.ErrDuplicateInterest, http.StatusConflict},
		{services.ErrEventFull, http.StatusConflict},
		{auth.ErrEmailExists, http.StatusConflict},
		{services.ErrSelfInterest, http.StatusBadRequest},
		{auth.ErrExpiredResetCode, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusFor(tc.err); got != tc.want {
			t.Errorf("statusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestWriteServiceError(t *testing.T) {
	body := func(err error) (int, string) {
		rec := httptest.NewRecorder()
		WriteServiceError(rec, err)
		var out map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return rec.Code, out["error"]
	}

	if code, msg := body(services.ErrMatchNotFound); code != http.StatusNotFound || msg != "Match not found" {
		t.Errorf("got %d %q", code, msg)
	}
	if code, msg := body(errors.New("connection reset")); code != http.StatusInternalServerError || msg != genericError {
		t.Errorf("internal errors must not leak: %d %q", code, msg)
	}
	if code, msg := body(auth.ErrInvalidCredentials); code != http.StatusUnauthorized || msg != "Incorrect login information" {
		t.Errorf("got %d %q", code, msg)
	}
}
