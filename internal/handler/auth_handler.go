package handler

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/config"
	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
)

// AuthHandler owns the session lifecycle endpoints.
type AuthHandler struct {
	auth      service.AuthService
	cfg       config.Config
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthHandler constructs the auth handler.
func NewAuthHandler(auth service.AuthService, cfg config.Config, validate *validator.Validate, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		cfg:       cfg,
		validator: validate,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// WhoAmI resolves the session cookie into the signed-in account. The wire
// contract is historical and deliberately not wrapped in APIResponse: the
// claims spread next to an ok flag on success, {ok:false,message} with 401
// otherwise, and a plain 404 for any method other than GET.
func (h *AuthHandler) WhoAmI(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet {
		return c.Status(fiber.StatusNotFound).JSON(dto.SessionErrorResponse{
			Ok:      false,
			Message: "not found",
		})
	}

	claims := middleware.ClaimsFromCtx(c)
	if claims == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.SessionErrorResponse{
			Ok:      false,
			Message: "Your token is invalid or expired, please sign in again",
		})
	}

	return c.JSON(dto.WhoAmIResponse{
		Ok:             true,
		Account:        claims.Account,
		AccountName:    claims.AccountName,
		FirstnameEN:    claims.FirstnameEN,
		LastnameEN:     claims.LastnameEN,
		StudentID:      claims.StudentID,
		OrganizationEN: claims.OrganizationEN,
		AccountTypeID:  claims.AccountTypeID,
		AccountTypeEN:  claims.AccountTypeEN,
		Role:           claims.Role(),
	})
}

// SignIn exchanges an OAuth authorization code for a session cookie.
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "authorization code is required")
	}

	token, claims, err := h.auth.SignIn(c.UserContext(), strings.TrimSpace(req.AuthorizationCode))
	if err != nil {
		h.logger.Warn().Err(err).Msg("sign in rejected")
		return utils.SendError(c, fiber.StatusUnauthorized, "sign in failed")
	}

	c.Cookie(h.sessionCookie(token, time.Now().Add(h.cfg.SessionTTL)))

	return utils.SendSuccess(c, "signed in", dto.WhoAmIResponse{
		Ok:             true,
		Account:        claims.Account,
		AccountName:    claims.AccountName,
		FirstnameEN:    claims.FirstnameEN,
		LastnameEN:     claims.LastnameEN,
		StudentID:      claims.StudentID,
		OrganizationEN: claims.OrganizationEN,
		AccountTypeID:  claims.AccountTypeID,
		AccountTypeEN:  claims.AccountTypeEN,
		Role:           claims.Role(),
	})
}

// SignOut clears the session cookie. Always succeeds, signed in or not, and
// keeps the historical bare {ok:true} shape.
func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	c.Cookie(h.sessionCookie("", time.Unix(0, 0)))
	return c.JSON(fiber.Map{"ok": true})
}

// FrontendConfig exposes the values the landing page needs to start the
// OAuth redirect.
func (h *AuthHandler) FrontendConfig(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "config", dto.FrontendConfigResponse{
		OAuthRedirectURL: h.cfg.OAuthRedirectURL,
	})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    value,
		Expires:  expires,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
