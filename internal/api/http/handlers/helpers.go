package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/service"
	apperrors "github.com/spec-kit/event-ticketing/pkg/util/errorutil"
)

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return service.Actor{}, apperrors.NewUnauthorized("user required")
	}
	return service.Actor{UserID: principal.User.ID, Role: principal.User.Role}, nil
}

func parsePage(c *fiber.Ctx) service.Page {
	limit := parseInt(c.Query("limit"), 0)
	if page := parseInt(c.Query("page"), 0); page > 0 {
		normalized := service.NormalizePage(limit, 0)
		return service.NormalizePage(normalized.Limit, (page-1)*normalized.Limit)
	}
	return service.NormalizePage(limit, parseInt(c.Query("offset"), 0))
}

// parseTime accepts RFC3339 or a bare date.
func parseTime(val string) (*time.Time, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, val); err == nil {
			return &t, nil
		}
	}
	return nil, apperrors.NewValidationError("invalid date", map[string]any{"value": val})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func parseBool(val string) (bool, bool) {
	if val == "" {
		return false, false
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return parsed, true
}

func parseDecimal(field, val string) (*decimal.Decimal, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(val)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid number", map[string]any{field: val})
	}
	return &parsed, nil
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
