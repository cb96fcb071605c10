package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/PacifistaPx0/helpdesk/internal/auth"
	"github.com/PacifistaPx0/helpdesk/internal/service"
	apperrors "github.com/PacifistaPx0/helpdesk/pkg/util"
)

// DashboardHandler exposes read-only aggregate metrics.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats handles GET /dashboard/stats.
func (h *DashboardHandler) Stats(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	stats, err := h.dashboard.Stats(c.UserContext(), identity.UserID, identity.Role)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
