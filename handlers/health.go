package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/internship-hub/placement-api/database"
	"github.com/internship-hub/placement-api/utils/response"
)

// HandleCheckHealth reports whether the store is reachable
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.Error(c, fiber.StatusServiceUnavailable, "Storage unreachable", "UNHEALTHY")
		}
		return response.Success(c, fiber.Map{"status": "ok"})
	}
}
