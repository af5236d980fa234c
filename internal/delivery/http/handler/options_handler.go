package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/pkg/utils"
	"github.com/arthropod-dashboard/internal/usecase"
)

// OptionsHandler обрабатывает запросы доменов фильтров
type OptionsHandler struct {
	optionsUC *usecase.OptionsUseCase
	logger    *zap.Logger
}

// NewOptionsHandler создает новый экземпляр OptionsHandler
func NewOptionsHandler(optionsUC *usecase.OptionsUseCase, logger *zap.Logger) *OptionsHandler {
	return &OptionsHandler{
		optionsUC: optionsUC,
		logger:    logger,
	}
}

// GetOptions godoc
// @Summary Get selectable filter domains
// @Description Sorted site and year lists, trap list, the top-100 taxa by total count over the unfiltered dataset, and the overall date range. Independent of any current filter state.
// @Tags Options
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /api/v1/options [get]
func (h *OptionsHandler) GetOptions(c *fiber.Ctx) error {
	ctx := c.Context()

	h.logger.Debug("Handling get options request")

	options, err := h.optionsUC.Options(ctx)
	if err != nil {
		h.logger.Error("Failed to get filter options", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, options, nil)
}
