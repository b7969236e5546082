package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-portal/internal/validation"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// parseBody decodes a JSON body. Anything undecodable is a 400, never a 500.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return apperrors.NewValidationError("request body is required", nil)
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid request body", map[string]any{"body": []string{err.Error()}})
	}
	return nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.Field(key, "must be an integer")
	}
	return value, nil
}
