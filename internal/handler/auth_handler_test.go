package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/tracktivity/tracktivity-api/internal/dto"
)

func TestWhoAmIReturnsClaims(t *testing.T) {
	app, _ := setupApp(t)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/whoAmI", nil), studentToken(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload dto.WhoAmIResponse
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Ok)
	require.Equal(t, "jdoe@cmu.ac.th", payload.Account)
	require.Equal(t, "John", payload.FirstnameEN)
	require.Equal(t, "650612345", payload.StudentID)
	require.Equal(t, "student", payload.Role)
}

func TestWhoAmIWithoutSession(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/whoAmI", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var payload dto.SessionErrorResponse
	decodeResponse(t, resp, &payload)
	require.False(t, payload.Ok)
	require.NotEmpty(t, payload.Message)
}

func TestWhoAmIRejectsNonGetMethods(t *testing.T) {
	app, _ := setupApp(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := withSession(httptest.NewRequest(method, "/api/whoAmI", nil), studentToken(t))
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode, method)
	}
}

func TestSignInSetsSessionCookie(t *testing.T) {
	app, _ := setupApp(t)

	body, err := json.Marshal(dto.SignInRequest{AuthorizationCode: "good-code"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/signIn", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cookie string
	for _, raw := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(raw, testCookieName+"=") {
			cookie = raw
		}
	}
	require.NotEmpty(t, cookie)
	require.Contains(t, cookie, "HttpOnly")

	var payload struct {
		Success bool              `json:"success"`
		Data    dto.WhoAmIResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "jdoe@cmu.ac.th", payload.Data.Account)
	require.Equal(t, "student", payload.Data.Role)
}

func TestSignInRejectsBadCode(t *testing.T) {
	app, _ := setupApp(t)

	body, err := json.Marshal(dto.SignInRequest{AuthorizationCode: "bad-code"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/signIn", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSignOutExpiresCookie(t *testing.T) {
	app, _ := setupApp(t)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/signOut", nil), studentToken(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cleared bool
	for _, raw := range resp.Header.Values("Set-Cookie") {
		if strings.HasPrefix(raw, testCookieName+"=") && strings.Contains(strings.ToLower(raw), "expires=") {
			cleared = true
		}
	}
	require.True(t, cleared, "expected an expired session cookie")
}

func TestFrontendConfig(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.FrontendConfigResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "https://auth.test/authorize", payload.Data.OAuthRedirectURL)
}
