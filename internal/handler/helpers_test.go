package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tracktivity/tracktivity-api/internal/config"
	"github.com/tracktivity/tracktivity-api/internal/handler"
	"github.com/tracktivity/tracktivity-api/internal/middleware"
	"github.com/tracktivity/tracktivity-api/internal/models"
	"github.com/tracktivity/tracktivity-api/internal/repository"
	"github.com/tracktivity/tracktivity-api/internal/router"
	"github.com/tracktivity/tracktivity-api/internal/service"
	"github.com/tracktivity/tracktivity-api/pkg/oauth"
)

const (
	testJWTSecret  = "test-secret"
	testCookieName = "tracktivity-token"
)

type storageStub struct{}

func (s *storageStub) Upload(_ context.Context, folder, name string, reader io.Reader) (string, string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", "", err
	}
	publicID := folder + "/" + name
	return "https://cdn.test/" + publicID, publicID, nil
}

func (s *storageStub) Delete(context.Context, string) error { return nil }

type oauthStub struct {
	info oauth.BasicInfo
}

func (o *oauthStub) Exchange(_ context.Context, code string) (string, error) {
	if code != "good-code" {
		return "", fmt.Errorf("invalid code")
	}
	return "access-token", nil
}

func (o *oauthStub) FetchBasicInfo(context.Context, string) (oauth.BasicInfo, error) {
	return o.info, nil
}

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Activity{}, &models.PendingActivity{}, &models.UserProfile{}))

	cfg := config.Config{
		AppName:           "Tracktivity API",
		AppEnv:            "test",
		JWTSecret:         testJWTSecret,
		SessionCookieName: testCookieName,
		SessionTTL:        time.Hour,
		OAuthRedirectURL:  "https://auth.test/authorize",
		CatalogCacheTTL:   time.Minute,
		MaxUploadMB:       5,
		SeedToken:         "seed-token",
	}

	logger := zerolog.New(io.Discard)
	validate := validator.New()

	activityRepo := repository.NewActivityRepository(db)
	pendingRepo := repository.NewPendingActivityRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	realtimeSvc := service.NewRealtimeService(activityRepo, pendingRepo, nil, "", nil, logger)
	uploadSvc := service.NewUploadService(&storageStub{}, cfg.MaxUploadMB, logger)
	catalogSvc := service.NewCatalogService(activityRepo, nil, cfg.CatalogCacheTTL, realtimeSvc, validate, logger)
	submissionSvc := service.NewSubmissionService(pendingRepo, uploadSvc, realtimeSvc, validate, logger)
	reviewSvc := service.NewReviewService(pendingRepo, realtimeSvc, validate, logger)
	profileSvc := service.NewProfileService(profileRepo, uploadSvc, logger)
	authSvc := service.NewAuthService(&oauthStub{info: oauth.BasicInfo{
		Account:       "jdoe@cmu.ac.th",
		FirstnameEN:   "John",
		LastnameEN:    "Doe",
		StudentID:     "650612345",
		AccountTypeID: "StdAcc",
	}}, cfg.JWTSecret, cfg.SessionTTL, logger)
	seedSvc := service.NewSeedService(catalogSvc, true, cfg.SeedToken, logger)

	app := fiber.New()
	middleware.Register(app, middleware.Config{
		SessionCookieName: cfg.SessionCookieName,
		JWTSecret:         cfg.JWTSecret,
	})

	router.Register(app, router.Dependencies{
		Config:           cfg,
		Auth:             handler.NewAuthHandler(authSvc, cfg, validate, logger),
		Activities:       handler.NewActivityHandler(catalogSvc, logger),
		AdminActivities:  handler.NewAdminActivityHandler(catalogSvc, uploadSvc, logger),
		Submissions:      handler.NewSubmissionHandler(submissionSvc, logger),
		AdminSubmissions: handler.NewAdminSubmissionHandler(reviewSvc, logger),
		Profiles:         handler.NewProfileHandler(profileSvc, logger),
		Realtime:         handler.NewRealtimeHandler(realtimeSvc, logger),
		Seed:             handler.NewSeedHandler(seedSvc, logger),
	})

	return app, db
}

func studentToken(t *testing.T) string {
	return signToken(t, middleware.SessionClaims{
		Account:       "jdoe@cmu.ac.th",
		FirstnameEN:   "John",
		LastnameEN:    "Doe",
		StudentID:     "650612345",
		AccountTypeID: "StdAcc",
	})
}

func adminToken(t *testing.T) string {
	return signToken(t, middleware.SessionClaims{
		Account:       "staff@cmu.ac.th",
		FirstnameEN:   "Sam",
		LastnameEN:    "Staff",
		AccountTypeID: "MISEmpAcc",
	})
}

func signToken(t *testing.T, claims middleware.SessionClaims) string {
	t.Helper()
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: token})
	return req
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}
