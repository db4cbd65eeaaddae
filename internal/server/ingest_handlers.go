package server

import (
	"log/slog"
	"strings"

	"catalog/internal/middleware"
	"catalog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// IngestProducts handles POST /api/admin/loading/products?path=
// The location may be an http(s) URL, an s3://bucket/key object or a local path.
func (s *Server) IngestProducts(c *fiber.Ctx) error {
	location := strings.TrimSpace(c.Query("path"))
	if location == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("path is required"))
	}

	report, err := s.services.Ingest.Ingest(c.UserContext(), location)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "Product ingestion failed",
			slog.String("location", location),
			slog.String("code", models.ErrorCode(err)),
		)
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Products loaded successfully", report)
}
