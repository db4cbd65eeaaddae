package server

import (
	"catalog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ForgotPassword handles POST /api/forgot-password?email=
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	if err := s.services.PasswordReset.ForgotPassword(c.UserContext(), c.Query("email")); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Password reset email sent", nil)
}

// ResetPassword handles POST /api/reset-password?token=&newPassword=
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	err := s.services.PasswordReset.ResetPassword(c.UserContext(), c.Query("token"), c.Query("newPassword"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Password reset successfully", nil)
}
