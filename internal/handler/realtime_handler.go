package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/internal/utils"
)

const localsSubscription = "realtime_subscription"

// RealtimeHandler upgrades HTTP requests into snapshot subscriptions.
type RealtimeHandler struct {
	realtime service.RealtimeService
	logger   zerolog.Logger
}

// NewRealtimeHandler constructs the realtime handler.
func NewRealtimeHandler(realtime service.RealtimeService, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		realtime: realtime,
		logger:   logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Upgrade validates the subscription request while fiber context is still
// available, then stashes the options for the websocket handler. The
// published catalog is open to anyone; the pending queue snapshot carries
// every student's submissions and is limited to admins.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return utils.SendError(c, fiber.StatusUpgradeRequired, "websocket upgrade required")
	}

	collection := strings.TrimSpace(c.Query("collection"))
	if collection == "" {
		collection = service.CollectionAdminActivities
	}

	// The request context dies with the upgrade; the subscription needs a
	// context that outlives it.
	opts := service.SubscriptionOptions{
		Collection:    collection,
		CorrelationID: middleware.GetCorrelationID(c),
		Context:       middleware.ContextWithCorrelation(context.Background(), middleware.GetCorrelationID(c)),
	}
	if claims := middleware.ClaimsFromCtx(c); claims != nil {
		opts.UserID = claims.Account
		opts.Role = claims.Role()
	}

	switch collection {
	case service.CollectionAdminActivities:
	case service.CollectionPendingActivities:
		if opts.Role != middleware.RoleAdmin {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "unknown collection")
	}

	c.Locals(localsSubscription, opts)

	return c.Next()
}

// Serve hands the upgraded connection to the snapshot hub and blocks until
// the subscriber goes away.
func (h *RealtimeHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		opts, ok := conn.Locals(localsSubscription).(service.SubscriptionOptions)
		if !ok {
			h.logger.Error().Msg("websocket connection missing subscription options")
			_ = conn.Close()
			return
		}

		h.realtime.ServeConnection(conn, opts)
	})
}
