package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playmatch/playmatch-server/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"match not found", services.ErrMatchNotFound, http.StatusNotFound},
		{"participant not found", services.ErrParticipantNotFound, http.StatusNotFound},
		{"match full", services.ErrMatchFull, http.StatusConflict},
		{"already completed", services.ErrMatchAlreadyCompleted, http.StatusConflict},
		{"emergency already requested", services.ErrEmergencyAlreadyRequested, http.StatusConflict},
		{"emergency already processed", services.ErrEmergencyAlreadyProcessed, http.StatusConflict},
		{"invalid match status", services.ErrInvalidMatchStatus, http.StatusBadRequest},
		{"emergency not enabled", services.ErrEmergencyNotEnabled, http.StatusBadRequest},
		{"emergency lock expired", services.ErrEmergencyLockExpired, http.StatusBadRequest},
		{"invite expired", services.ErrInviteExpired, http.StatusBadRequest},
		{"not captain", services.ErrNotCaptain, http.StatusForbidden},
		{"team admin forbidden", services.ErrTeamAdminForbidden, http.StatusForbidden},
		{"invalid token", services.ErrInvalidToken, http.StatusUnauthorized},
		{"invalid otp", services.ErrInvalidOTP, http.StatusUnauthorized},
		{"otp expired", services.ErrOTPExpired, http.StatusUnauthorized},
		{"otp rate limited", services.ErrOTPRateLimited, http.StatusTooManyRequests},
		{"team name conflict", services.ErrTeamNameConflict, http.StatusConflict},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(w, r, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}

	t.Run("validation errors carry field details", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		mapServiceErrorToHTTP(w, r, &services.ValidationError{Fields: map[string]string{"Name": "is required"}})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "is required")
	})
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Thunder XI"}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), r, &dst)
		require.NoError(t, err)
		assert.Equal(t, "Thunder XI", dst.Name)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","bogus":1}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key")
	})

	t.Run("trailing garbage is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}{"name":"y"}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), r, &dst)
		require.Error(t, err)
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst payload
		err := readJSON(httptest.NewRecorder(), r, &dst)
		require.Error(t, err)
	})
}
