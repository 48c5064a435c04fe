package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tracktivity/tracktivity-api/internal/config"
	"github.com/tracktivity/tracktivity-api/internal/handler"
	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/internal/observability"
)

// Dependencies aggregates everything route registration needs.
type Dependencies struct {
	Config           config.Config
	Auth             *handler.AuthHandler
	Activities       *handler.ActivityHandler
	AdminActivities  *handler.AdminActivityHandler
	Submissions      *handler.SubmissionHandler
	AdminSubmissions *handler.AdminSubmissionHandler
	Profiles         *handler.ProfileHandler
	Realtime         *handler.RealtimeHandler
	Seed             *handler.SeedHandler
}

// Register wires every route of the API onto the app.
func Register(app *fiber.App, deps Dependencies) {
	app.Get("/api/v1/health", handler.HealthCheck(deps.Config))
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api")

	// Session endpoints. whoAmI keeps its historical contract, including the
	// 404 for non-GET methods, so it is registered across all verbs.
	api.All("/whoAmI", deps.Auth.WhoAmI)
	api.Post("/signIn", middleware.RateLimit("sign_in", 10, time.Minute), deps.Auth.SignIn)
	api.Post("/signOut", deps.Auth.SignOut)
	api.Get("/config", deps.Auth.FrontendConfig)

	// Public catalog.
	api.Get("/activities", deps.Activities.List)

	// Demo-data loader, token guarded inside the service and disabled in
	// production.
	api.Post("/seed/activities", deps.Seed.Seed)

	// Live snapshot subscriptions.
	api.Get("/ws", deps.Realtime.Upgrade, deps.Realtime.Serve())

	// Student endpoints.
	submissions := api.Group("/submissions", middleware.RequireUser())
	submissions.Post("/", middleware.RateLimit("submit", 20, time.Minute), deps.Submissions.Submit)
	submissions.Get("/mine", deps.Submissions.ListMine)

	profile := api.Group("/profile", middleware.RequireUser())
	profile.Get("/", deps.Profiles.Get)
	profile.Put("/image", deps.Profiles.UpdateImage)

	// Admin endpoints.
	admin := api.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))

	admin.Post("/activities", deps.AdminActivities.Create)
	admin.Put("/activities/:id", deps.AdminActivities.Update)
	admin.Delete("/activities/:id", deps.AdminActivities.Delete)
	admin.Post("/activities/images", deps.AdminActivities.UploadImages)
	admin.Delete("/activities/images/*", deps.AdminActivities.DeleteImage)

	admin.Get("/submissions", deps.AdminSubmissions.List)
	admin.Put("/submissions/:id/skills", deps.AdminSubmissions.UpdateSkills)
	admin.Post("/submissions/:id/approve", deps.AdminSubmissions.Approve)
}
