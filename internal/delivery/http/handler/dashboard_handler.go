package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/pkg/errors"
	"github.com/arthropod-dashboard/internal/pkg/utils"
	"github.com/arthropod-dashboard/internal/pkg/validator"
	"github.com/arthropod-dashboard/internal/usecase"
	"github.com/arthropod-dashboard/internal/usecase/dto"
)

// DashboardHandler обрабатывает запросы агрегированных видов
type DashboardHandler struct {
	dashboardUC *usecase.DashboardUseCase
	logger      *zap.Logger
}

// NewDashboardHandler создает новый экземпляр DashboardHandler
func NewDashboardHandler(dashboardUC *usecase.DashboardUseCase, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardUC: dashboardUC,
		logger:      logger,
	}
}

// parseSelection decodes and validates the filter request body. An
// empty body is a valid unrestricted selection.
func (h *DashboardHandler) parseSelection(c *fiber.Ctx) (domain.FilterSelection, error) {
	var req dto.FilterRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			h.logger.Debug("Failed to parse filter request", zap.Error(err))
			return domain.FilterSelection{}, errors.ErrInvalidRequest
		}
	}

	if err := validator.Validate(req); err != nil {
		h.logger.Debug("Filter request validation failed", zap.Error(err))
		return domain.FilterSelection{}, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		})
	}

	sel, err := req.ToSelection()
	if err != nil {
		return domain.FilterSelection{}, errors.ErrInvalidRequest
	}
	if sel.DateFrom != nil && sel.DateTo != nil && sel.DateFrom.After(*sel.DateTo) {
		return domain.FilterSelection{}, errors.ErrInvalidDateRange
	}
	return sel, nil
}

// GetDashboard godoc
// @Summary Get every dashboard view for one filter selection
// @Description Recomputes composition, temporal-by-region, site totals, monthly abundance, diversity and the summary for the given selection, the way the interactive dashboard refreshes all charts per interaction.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param selection body dto.FilterRequest false "Filter selection; absent sets mean no restriction, empty sets match nothing"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/dashboard [post]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	sel, err := h.parseSelection(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	started := time.Now()
	resp, err := h.dashboardUC.Dashboard(c.Context(), sel)
	if err != nil {
		h.logger.Error("Failed to compute dashboard", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, &utils.Meta{
		Total:    resp.Summary.Records,
		TimeMSec: float64(time.Since(started).Microseconds()) / 1000,
	})
}

// GetComposition godoc
// @Summary Community composition view
// @Description Per-site totals for the top-10 taxa of the filtered set, remaining taxa collapsed into the "Other" bucket.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param selection body dto.FilterRequest false "Filter selection"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/composition [post]
func (h *DashboardHandler) GetComposition(c *fiber.Ctx) error {
	sel, err := h.parseSelection(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	rows, err := h.dashboardUC.Composition(c.Context(), sel)
	if err != nil {
		h.logger.Error("Failed to compute composition view", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, rows, &utils.Meta{Total: len(rows)})
}

// GetTemporalByRegion godoc
// @Summary Quarterly abundance by land-use region
// @Description Total counts grouped by (region, quarter) over the filtered set. Empty pairs are omitted, not zero-filled.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param selection body dto.FilterRequest false "Filter selection"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/temporal-by-region [post]
func (h *DashboardHandler) GetTemporalByRegion(c *fiber.Ctx) error {
	sel, err := h.parseSelection(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	rows, err := h.dashboardUC.TemporalByRegion(c.Context(), sel)
	if err != nil {
		h.logger.Error("Failed to compute temporal view", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, rows, &utils.Meta{Total: len(rows)})
}

// GetSiteTotals godoc
// @Summary Per-site totals for map bubble sizing
// @Description Total counts per site with coordinates. Sites lacking coordinate metadata are excluded from this view only.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param selection body dto.FilterRequest false "Filter selection"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/site-totals [post]
func (h *DashboardHandler) GetSiteTotals(c *fiber.Ctx) error {
	sel, err := h.parseSelection(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	rows, err := h.dashboardUC.SiteTotals(c.Context(), sel)
	if err != nil {
		h.logger.Error("Failed to compute spatial view", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, rows, &utils.Meta{Total: len(rows)})
}

// GetMonthlyAbundance godoc
// @Summary Monthly abundance time series
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param selection body dto.FilterRequest false "Filter selection"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/monthly-abundance [post]
func (h *DashboardHandler) GetMonthlyAbundance(c *fiber.Ctx) error {
	sel, err := h.parseSelection(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	rows, err := h.dashboardUC.MonthlyAbundance(c.Context(), sel)
	if err != nil {
		h.logger.Error("Failed to compute monthly view", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, rows, &utils.Meta{Total: len(rows)})
}

// GetDiversity godoc
// @Summary Diversity metrics per site and year
// @Description Species richness and Shannon index over per-taxon summed counts of the filtered set.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param selection body dto.FilterRequest false "Filter selection"
// @Success 200 {object} utils.SuccessResponse
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/dashboard/diversity [post]
func (h *DashboardHandler) GetDiversity(c *fiber.Ctx) error {
	sel, err := h.parseSelection(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	rows, err := h.dashboardUC.Diversity(c.Context(), sel)
	if err != nil {
		h.logger.Error("Failed to compute diversity view", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, rows, &utils.Meta{Total: len(rows)})
}
