package handlers

import (
	"log/slog"
	"net/http"

	"github.com/sproutify/sproutify-platform/internal/api/middleware"
	service "github.com/sproutify/sproutify-platform/internal/services"
	"github.com/sproutify/sproutify-platform/internal/utils/response"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// DashboardStats godoc
//	@Summary		Storefront dashboard statistics
//	@Description	Aggregated counts, total sales, the latest orders and low-stock products. Admin only.
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	models.DashboardStats
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Operator access required"
//	@Security		BearerAuth
//	@Router			/admin/stats [get]
func (h *AdminHandler) DashboardStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		stats, err := h.adminService.DashboardStats(r.Context())
		if err != nil {
			logger.Error("Failed to build dashboard stats", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, stats)
	}
}
