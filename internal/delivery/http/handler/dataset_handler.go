package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/pkg/errors"
	"github.com/arthropod-dashboard/internal/pkg/utils"
	"github.com/arthropod-dashboard/internal/usecase"
	"github.com/arthropod-dashboard/internal/usecase/dto"
)

// DatasetHandler обрабатывает запросы жизненного цикла датасета
type DatasetHandler struct {
	dashboardUC *usecase.DashboardUseCase
	logger      *zap.Logger
}

// NewDatasetHandler создает новый экземпляр DatasetHandler
func NewDatasetHandler(dashboardUC *usecase.DashboardUseCase, logger *zap.Logger) *DatasetHandler {
	return &DatasetHandler{
		dashboardUC: dashboardUC,
		logger:      logger,
	}
}

// Health godoc
// @Summary Liveness check
// @Tags Dataset
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *DatasetHandler) Health(c *fiber.Ctx) error {
	summary, loaded := h.dashboardUC.Summary()
	return c.JSON(dto.HealthResponse{
		Status:        "healthy",
		DatasetLoaded: loaded,
		Records:       summary.Records,
	})
}

// Reload godoc
// @Summary Rebuild the joined relation from the source relations
// @Description The manual invalidation hook: rebuilds the in-memory dataset and drops every cached aggregate. A malformed source fails the whole reload and leaves the previous dataset in place.
// @Tags Dataset
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/dataset/reload [post]
func (h *DatasetHandler) Reload(c *fiber.Ctx) error {
	ctx := c.Context()

	h.logger.Info("Handling dataset reload request")

	summary, err := h.dashboardUC.Reload(ctx)
	if err != nil {
		// A DATA_FORMAT_ERROR unwraps to 422; everything else is a 500.
		h.logger.Error("Dataset reload failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, summary, nil)
}

// GetSummary godoc
// @Summary Load summary of the current dataset
// @Tags Dataset
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/dataset/summary [get]
func (h *DatasetHandler) GetSummary(c *fiber.Ctx) error {
	summary, loaded := h.dashboardUC.Summary()
	if !loaded {
		return utils.SendError(c, errors.ErrDatasetNotLoaded)
	}

	return utils.SendSuccess(c, summary, nil)
}
