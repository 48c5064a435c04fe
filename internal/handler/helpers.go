package handler

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tracktivity/tracktivity-api/internal/models"
)

func parseParamID(c *fiber.Ctx) (uint, error) {
	raw := strings.TrimSpace(c.Params("id"))
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

// parseSkillsField decodes the skills array travelling as a JSON string
// inside a multipart form.
func parseSkillsField(raw string) ([]models.Skill, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var skills []models.Skill
	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return nil, err
	}
	return skills, nil
}
