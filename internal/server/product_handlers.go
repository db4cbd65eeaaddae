package server

import (
	"net/url"

	"catalog/internal/models"
	"catalog/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListProducts handles GET /api/products?page=&pageSize=
func (s *Server) ListProducts(c *fiber.Ctx) error {
	p, err := parsePagination(c)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	page, err := s.services.Products.ListProducts(c.UserContext(), p.Page, p.PageSize)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Products retrieved successfully",
		"data":     page.Items,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

// GetProduct handles GET /api/products/:id
func (s *Server) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	product, err := s.services.Products.GetProduct(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Product retrieved successfully", product)
}

// FindProductByName handles GET /api/products/name/:name
func (s *Server) FindProductByName(c *fiber.Ctx) error {
	name := c.Params("name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}

	product, err := s.services.Products.FindProductByName(c.UserContext(), name)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Product retrieved successfully", product)
}

// CreateProduct handles POST /api/products
func (s *Server) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	product, err := s.services.Products.CreateProduct(c.UserContext(), req, callerHandle(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, fiber.StatusCreated, "Product created successfully", product)
}

// UpdateProduct handles PUT /api/products/:id
func (s *Server) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	product, err := s.services.Products.UpdateProduct(c.UserContext(), id, req, callerHandle(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /api/products/:id
func (s *Server) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.services.Products.DeleteProduct(c.UserContext(), id, callerHandle(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return respondSuccess(c, fiber.StatusOK, "Product deleted successfully", nil)
}

// ToggleLike handles POST /api/products/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.services.Likes.ToggleLike(c.UserContext(), id, callerHandle(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	message := "Product unliked"
	if result.Liked {
		message = "Product liked"
	}
	return respondSuccess(c, fiber.StatusOK, message, result)
}
