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

type PanelController struct {
	panelService service.PanelService
}

func NewPanelController(panelService service.PanelService) *PanelController {
	return &PanelController{panelService: panelService}
}

// ListPanels godoc
// @Summary List panels visible to the caller
// @Description Panelists see their own panels, students and admins see all of them.
// @Tags Panels
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.PanelResponse
// @Router /panels [get]
func (c *PanelController) ListPanels(ctx *gin.Context) {
	panels, err := c.panelService.PanelsFor(ctx.Request.Context(), middleware.GetRole(ctx), middleware.GetEmail(ctx))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toPanelResponses(panels))
}

// GetPanel godoc
// @Summary Get one panel
// @Tags Panels
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {object} dto.PanelResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /panels/{panel_id} [get]
func (c *PanelController) GetPanel(ctx *gin.Context) {
	panel, err := c.panelService.PanelByID(ctx.Request.Context(), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	var resp dto.PanelResponse
	if err := copier.Copy(&resp, panel); err != nil {
		log.Error().Err(err).Msg("GetPanel: response mapping failed")
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListPublicPanels godoc
// @Summary List public panels
// @Description Unauthenticated listing of panels marked public.
// @Tags Panels
// @Produce json
// @Success 200 {array} dto.PanelResponse
// @Router /public/panels [get]
func (c *PanelController) ListPublicPanels(ctx *gin.Context) {
	panels, err := c.panelService.PublicPanels(ctx.Request.Context())
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toPanelResponses(panels))
}

func toPanelResponses(panels []model.Panel) []dto.PanelResponse {
	resp := make([]dto.PanelResponse, 0, len(panels))
	for _, p := range panels {
		var r dto.PanelResponse
		if err := copier.Copy(&r, &p); err != nil {
			log.Error().Err(err).Str("panelID", p.ID).Msg("Panel response mapping failed")
			continue
		}
		resp = append(resp, r)
	}
	return resp
}
