package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/panelmgmt/pms-core/internal/controller"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/middleware"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/service"
	"github.com/rs/zerolog/log"
)

type MetricController struct {
	metricService service.MetricService
}

func NewMetricController(metricService service.MetricService) *MetricController {
	return &MetricController{metricService: metricService}
}

// MyMetrics godoc
// @Summary List the caller's metrics across all panels
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.MetricResponse
// @Router /me/metrics [get]
func (c *MetricController) MyMetrics(ctx *gin.Context) {
	metrics, err := c.metricService.MetricsForUser(ctx.Request.Context(), middleware.GetUserID(ctx))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ToMetricResponses(metrics))
}

// MyPanelMetric godoc
// @Summary Get the caller's metric for one panel
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {object} dto.MetricResponse
// @Router /panels/{panel_id}/metrics/me [get]
func (c *MetricController) MyPanelMetric(ctx *gin.Context) {
	metric, err := c.metricService.MetricFor(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	var resp dto.MetricResponse
	if err := copier.Copy(&resp, metric); err != nil {
		log.Error().Err(err).Msg("MyPanelMetric: response mapping failed")
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ToMetricResponses maps metric rows onto the wire form.
func ToMetricResponses(metrics []model.Metric) []dto.MetricResponse {
	resp := make([]dto.MetricResponse, 0, len(metrics))
	for _, m := range metrics {
		var r dto.MetricResponse
		if err := copier.Copy(&r, &m); err != nil {
			log.Error().Err(err).Str("userID", m.UserID).Str("panelID", m.PanelID).Msg("Metric response mapping failed")
			continue
		}
		resp = append(resp, r)
	}
	return resp
}
