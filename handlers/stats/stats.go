package stats

import (
	"github.com/gofiber/fiber/v2"

	"github.com/internship-hub/placement-api/services"
	"github.com/internship-hub/placement-api/utils/middleware"
	"github.com/internship-hub/placement-api/utils/response"
)

// StatsHandler serves aggregate projections over the actor-visible requests
type StatsHandler struct {
	query *services.QueryService
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(query *services.QueryService) *StatsHandler {
	return &StatsHandler{query: query}
}

// StatsResponse is one aggregate projection. Buckets is set for count
// dimensions, Recent for the recent-requests dimension.
type StatsResponse struct {
	Dimension string                `json:"dimension"`
	Buckets   []services.StatBucket `json:"buckets,omitempty"`
	Recent    interface{}           `json:"recent,omitempty"`
}

// Get computes one projection: ?dimension=department|company|status|recent
func (h *StatsHandler) Get(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	dimension := services.StatDimension(c.Query("dimension", string(services.StatByStatus)))

	buckets, recent, err := h.query.Stats(c.Context(), actor, dimension)
	if err != nil {
		return response.DomainError(c, err)
	}

	res := StatsResponse{Dimension: string(dimension), Buckets: buckets}
	if recent != nil {
		res.Recent = recent
	}
	return response.Success(c, res)
}
