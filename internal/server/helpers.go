package server

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"catalog/internal/models"
	"catalog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/pageSize query parameters.
type Pagination struct {
	Page     int
	PageSize int
}

// parsePagination reads page and pageSize, defaulting to 1 and 10. Range
// checks belong to the service; only non-integers are rejected here.
func parsePagination(c *fiber.Ctx) (Pagination, error) {
	page, err := queryInt(c, "page", service.DefaultPage)
	if err != nil {
		return Pagination{}, err
	}
	pageSize, err := queryInt(c, "pageSize", service.DefaultPageSize)
	if err != nil {
		return Pagination{}, err
	}
	return Pagination{Page: page, PageSize: pageSize}, nil
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.NewValidationError(key + " must be an integer")
	}
	return v, nil
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "productId" -> "product ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// callerHandle is the username AuthRequired stored for the request.
func callerHandle(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}

func respondSuccess(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func badBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid request body"))
}
