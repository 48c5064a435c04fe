package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims SessionClaims, secret string) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func sessionTestApp() *fiber.App {
	app := fiber.New()
	app.Use(Session("session-token", testSecret))
	app.Get("/me", func(c *fiber.Ctx) error {
		claims := ClaimsFromCtx(c)
		if claims == nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(fiber.Map{"account": claims.Account, "role": c.Locals(LocalsUserRole)})
	})
	return app
}

func TestSessionResolvesCookie(t *testing.T) {
	app := sessionTestApp()

	token := signedToken(t, SessionClaims{Account: "jdoe@cmu.ac.th", AccountTypeID: "StdAcc"}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session-token", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionResolvesBearerFallback(t *testing.T) {
	app := sessionTestApp()

	token := signedToken(t, SessionClaims{Account: "jdoe@cmu.ac.th", AccountTypeID: "StdAcc"}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSessionIgnoresExpiredToken(t *testing.T) {
	app := sessionTestApp()

	token := signedToken(t, SessionClaims{
		Account:          "jdoe@cmu.ac.th",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	}, testSecret)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session-token", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionIgnoresForgedSignature(t *testing.T) {
	app := sessionTestApp()

	token := signedToken(t, SessionClaims{Account: "jdoe@cmu.ac.th"}, "other-secret")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "session-token", Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestSessionClaimsRoleMapping(t *testing.T) {
	require.Equal(t, RoleStudent, SessionClaims{AccountTypeID: "StdAcc"}.Role())
	require.Equal(t, RoleAdmin, SessionClaims{AccountTypeID: "MISEmpAcc"}.Role())
	require.Equal(t, RoleAdmin, SessionClaims{AccountTypeEN: "MIS Employee"}.Role())
	require.Equal(t, RoleStudent, SessionClaims{AccountTypeID: "AlumAcc"}.Role())
}
