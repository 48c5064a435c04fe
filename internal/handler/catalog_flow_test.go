package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/tracktivity/tracktivity-api/internal/dto"
	"github.com/tracktivity/tracktivity-api/internal/models"
)

func createActivity(t *testing.T, app *fiber.App, draft dto.ActivityDraft) dto.ActivityResponse {
	t.Helper()

	body, err := json.Marshal(draft)
	require.NoError(t, err)

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/admin/activities", bytes.NewReader(body)), adminToken(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload struct {
		Data dto.ActivityResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.NotZero(t, payload.Data.ID)
	return payload.Data
}

func TestCatalogPublishAndPublicList(t *testing.T) {
	app, _ := setupApp(t)

	createActivity(t, app, dto.ActivityDraft{
		Name:        "Hackathon",
		Description: "Annual hackathon",
		Dates:       []string{"2026-09-12"},
		Skills:      []models.Skill{{Name: "Teamwork", Level: 4}},
	})
	createActivity(t, app, dto.ActivityDraft{
		Name:        "Startup Pitch Night",
		Description: "Pitch practice",
		Skills:      []models.Skill{{Name: "Entrepreneurial Mindset", Level: 3}},
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/activities", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.ActivityListResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, 2, payload.Data.Total)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/activities?skill=Teamwork", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	decodeResponse(t, resp, &payload)
	require.Equal(t, 1, payload.Data.Total)
	require.Equal(t, "Hackathon", payload.Data.Items[0].Name)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/activities?skill=Juggling", nil))
	require.NoError(t, err)
	decodeResponse(t, resp, &payload)
	require.Zero(t, payload.Data.Total)
}

func TestCatalogUpdateAndDelete(t *testing.T) {
	app, _ := setupApp(t)

	created := createActivity(t, app, dto.ActivityDraft{
		Name:        "Hackathon",
		Description: "Annual hackathon",
		Skills:      []models.Skill{{Name: "Teamwork", Level: 4}},
	})

	update, err := json.Marshal(dto.ActivityDraft{Name: "Hackathon 2026", Description: "Rescheduled"})
	require.NoError(t, err)

	id := strconv.FormatUint(uint64(created.ID), 10)
	req := withSession(httptest.NewRequest(http.MethodPut, "/api/admin/activities/"+id, bytes.NewReader(update)), adminToken(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.ActivityResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Equal(t, "Hackathon 2026", payload.Data.Name)
	require.Empty(t, payload.Data.Skills, "update replaces every field")

	req = withSession(httptest.NewRequest(http.MethodDelete, "/api/admin/activities/"+id, nil), adminToken(t))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	listResp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/activities", nil))
	require.NoError(t, err)
	var list struct {
		Data dto.ActivityListResponse `json:"data"`
	}
	decodeResponse(t, listResp, &list)
	require.Zero(t, list.Data.Total)
}

func TestCatalogMutationsRequireAdmin(t *testing.T) {
	app, _ := setupApp(t)

	body, err := json.Marshal(dto.ActivityDraft{Name: "x", Description: "y"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/activities", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = withSession(httptest.NewRequest(http.MethodPost, "/api/admin/activities", bytes.NewReader(body)), studentToken(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCatalogUpdateUnknownActivity(t *testing.T) {
	app, _ := setupApp(t)

	body, err := json.Marshal(dto.ActivityDraft{Name: "x", Description: "y"})
	require.NoError(t, err)

	req := withSession(httptest.NewRequest(http.MethodPut, "/api/admin/activities/999", bytes.NewReader(body)), adminToken(t))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestActivityImageUpload(t *testing.T) {
	app, _ := setupApp(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range []string{"poster.png", "banner.png"} {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/admin/activities/images", body), adminToken(t))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Data dto.ImageUploadResponse `json:"data"`
	}
	decodeResponse(t, resp, &payload)
	require.Len(t, payload.Data.Images, 2)
	for _, image := range payload.Data.Images {
		require.NotEmpty(t, image.URL)
		require.NotEmpty(t, image.PublicID)
	}
}

func TestActivityImageUploadRejectsUnknownType(t *testing.T) {
	app, _ := setupApp(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("images", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("plain text"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/admin/activities/images", body), adminToken(t))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestActivityImageDelete(t *testing.T) {
	app, _ := setupApp(t)

	req := withSession(httptest.NewRequest(http.MethodDelete, "/api/admin/activities/images/images%2Fposter-abc", nil), adminToken(t))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
