package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/panelmgmt/pms-core/internal/controller"
	userctrl "github.com/panelmgmt/pms-core/internal/controller/user"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/service"
	"github.com/rs/zerolog/log"
)

type PanelAdminController struct {
	panelService    service.PanelService
	questionService service.QuestionService
	distribution    service.DistributionService
	clusterService  service.ClusterService
	scoringService  service.ScoringService
	metricService   service.MetricService
	sweepService    service.SweepService
}

func NewPanelAdminController(
	panelService service.PanelService,
	questionService service.QuestionService,
	distribution service.DistributionService,
	clusterService service.ClusterService,
	scoringService service.ScoringService,
	metricService service.MetricService,
	sweepService service.SweepService,
) *PanelAdminController {
	return &PanelAdminController{
		panelService:    panelService,
		questionService: questionService,
		distribution:    distribution,
		clusterService:  clusterService,
		scoringService:  scoringService,
		metricService:   metricService,
		sweepService:    sweepService,
	}
}

// CreatePanel godoc
// @Summary (Admin) Create a panel
// @Description Creates the panel and fans out a metric row for every enrolled student.
// @Tags Admin - Panels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param panel body dto.CreatePanelRequest true "Panel data"
// @Success 201 {object} dto.PanelResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or deadline ordering"
// @Router /admin/panels [post]
func (c *PanelAdminController) CreatePanel(ctx *gin.Context) {
	var req dto.CreatePanelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreatePanel: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	panel, err := c.panelService.CreatePanel(ctx.Request.Context(), req)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	var resp dto.PanelResponse
	if err := copier.Copy(&resp, panel); err != nil {
		log.Error().Err(err).Msg("Admin CreatePanel: response mapping failed")
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ReplacePanel godoc
// @Summary (Admin) Replace a panel record
// @Description Overwrites every field of the panel. There is no partial merge.
// @Tags Admin - Panels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Param panel body dto.CreatePanelRequest true "Full panel data"
// @Success 200 {object} dto.PanelResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/panels/{panel_id} [patch]
func (c *PanelAdminController) ReplacePanel(ctx *gin.Context) {
	var req dto.CreatePanelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin ReplacePanel: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	panel, err := c.panelService.ReplacePanel(ctx.Request.Context(), ctx.Param("panel_id"), req)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	var resp dto.PanelResponse
	if err := copier.Copy(&resp, panel); err != nil {
		log.Error().Err(err).Msg("Admin ReplacePanel: response mapping failed")
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// PanelQuestions godoc
// @Summary (Admin) List every question of a panel
// @Tags Admin - Panels
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {array} dto.QuestionResponse
// @Router /admin/panels/{panel_id}/questions [get]
func (c *PanelAdminController) PanelQuestions(ctx *gin.Context) {
	questions, err := c.questionService.PanelQuestions(ctx.Request.Context(), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	resp := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		var r dto.QuestionResponse
		if err := copier.Copy(&r, &q); err != nil {
			log.Error().Err(err).Str("questionID", q.ID).Msg("Question response mapping failed")
			continue
		}
		resp = append(resp, r)
	}
	ctx.JSON(http.StatusOK, resp)
}

// Distribute godoc
// @Summary (Admin) Trigger the tagging distribution
// @Description Computes and persists the tagging assignment if it does not exist yet. Idempotent.
// @Tags Admin - Panels
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 409 {object} dto.ErrorResponse "Not enough questions to distribute"
// @Router /admin/panels/{panel_id}/distribute [post]
func (c *PanelAdminController) Distribute(ctx *gin.Context) {
	if _, err := c.distribution.DistributeTagQuestions(ctx.Request.Context(), ctx.Param("panel_id")); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Tagging distribution ready"})
}

// Cluster godoc
// @Summary (Admin) Compute similarity clusters
// @Description Groups the panel's questions by recorded similarity and snapshots the top clusters for voting.
// @Tags Admin - Panels
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {array} dto.ClusterResponse
// @Router /admin/panels/{panel_id}/cluster [post]
func (c *PanelAdminController) Cluster(ctx *gin.Context) {
	clusters, err := c.clusterService.GroupSimilarQuestions(ctx.Request.Context(), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	resp := make([]dto.ClusterResponse, len(clusters))
	for i, cl := range clusters {
		resp[i] = dto.ClusterResponse{
			RepresentativeID:   cl.RepresentativeID,
			RepresentativeText: cl.RepresentativeText,
			MemberIDs:          cl.MemberIDs,
			Likes:              cl.Likes,
			Dislikes:           cl.Dislikes,
			NetScore:           cl.NetScore,
		}
	}
	ctx.JSON(http.StatusOK, resp)
}

// ScorePanel godoc
// @Summary (Admin) Recompute grades for a panel
// @Description Recomputes every student's grade from recorded participation. Idempotent over unchanged inputs.
// @Tags Admin - Panels
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {array} dto.MetricResponse
// @Router /admin/panels/{panel_id}/score [post]
func (c *PanelAdminController) ScorePanel(ctx *gin.Context) {
	metrics, err := c.scoringService.ScorePanel(ctx.Request.Context(), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, userctrl.ToMetricResponses(metrics))
}

// PanelMetrics godoc
// @Summary (Admin) List every student metric for a panel
// @Tags Admin - Panels
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {array} dto.MetricResponse
// @Router /admin/panels/{panel_id}/metrics [get]
func (c *PanelAdminController) PanelMetrics(ctx *gin.Context) {
	metrics, err := c.metricService.MetricsForPanel(ctx.Request.Context(), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, userctrl.ToMetricResponses(metrics))
}

// TriggerSweep godoc
// @Summary (Admin) Run the deadline sweep now
// @Description Runs the same pass the schedule runs: panels whose stage deadline passed recently get their next stage computed.
// @Tags Admin - Panels
// @Produce json
// @Security BearerAuth
// @Success 202 {object} dto.MessageResponse
// @Router /admin/sweep [post]
func (c *PanelAdminController) TriggerSweep(ctx *gin.Context) {
	// Runs detached: the request context dies with this handler.
	go c.sweepService.SweepOnce(context.Background())
	ctx.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Sweep started"})
}
