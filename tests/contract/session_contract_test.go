package contract_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tracktivity/tracktivity-api/internal/config"
	"github.com/tracktivity/tracktivity-api/internal/handler"
	"github.com/tracktivity/tracktivity-api/internal/middleware"
)

func TestWhoAmIMatchesContract(t *testing.T) {
	schema := compileSchema(t, "who_am_i.schema.json")

	cfg := config.Config{
		SessionCookieName: "session-token",
		JWTSecret:         contractSecret,
		SessionTTL:        time.Hour,
	}
	authHandler := handler.NewAuthHandler(nil, cfg, validator.New(), zerolog.Nop())

	app := fiber.New()
	app.Use(middleware.Session(cfg.SessionCookieName, cfg.JWTSecret))
	app.All("/api/whoAmI", authHandler.WhoAmI)

	claims := middleware.SessionClaims{
		Account:       "jdoe@cmu.ac.th",
		FirstnameEN:   "John",
		LastnameEN:    "Doe",
		StudentID:     "650612345",
		AccountTypeID: "StdAcc",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(contractSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/whoAmI", nil)
	req.AddCookie(&http.Cookie{Name: cfg.SessionCookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
