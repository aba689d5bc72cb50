package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panelmgmt/pms-core/internal/controller"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/middleware"
	"github.com/panelmgmt/pms-core/internal/service"
	"github.com/rs/zerolog/log"
)

type VotingController struct {
	votingService service.VotingService
}

func NewVotingController(votingService service.VotingService) *VotingController {
	return &VotingController{votingService: votingService}
}

// VotingList godoc
// @Summary Get the ranked clusters to vote on
// @Description Returns the cluster snapshot computed after the tagging deadline.
// @Tags Voting
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {array} dto.ClusterResponse
// @Failure 404 {object} dto.ErrorResponse "Clusters not computed yet"
// @Router /panels/{panel_id}/voting [get]
func (c *VotingController) VotingList(ctx *gin.Context) {
	clusters, err := c.votingService.VotingList(ctx.Request.Context(), ctx.Param("panel_id"))
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

// SubmitVoteOrder godoc
// @Summary Submit a ranked ballot
// @Description The ballot lists question ids most-preferred first. Each position awards descending points.
// @Tags Voting
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Param ballot body dto.VoteOrderRequest true "Ranked question ids"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Voting closed or invalid ballot"
// @Router /panels/{panel_id}/voting [post]
func (c *VotingController) SubmitVoteOrder(ctx *gin.Context) {
	var req dto.VoteOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitVoteOrder: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	err := c.votingService.SubmitVoteOrder(ctx.Request.Context(), ctx.Param("panel_id"), middleware.GetUserID(ctx), req.VoteOrder)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Ballot recorded"})
}

// FinalList godoc
// @Summary Get the final ranked question list
// @Description The top questions by accumulated vote score, ties kept in cluster-rank order.
// @Tags Voting
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {array} dto.FinalQuestionResponse
// @Failure 404 {object} dto.ErrorResponse "Clusters not computed yet"
// @Router /panels/{panel_id}/final [get]
func (c *VotingController) FinalList(ctx *gin.Context) {
	final, err := c.votingService.FinalList(ctx.Request.Context(), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	resp := make([]dto.FinalQuestionResponse, len(final))
	for i, q := range final {
		resp[i] = dto.FinalQuestionResponse{ID: q.ID, Text: q.Text, Score: q.Score}
	}
	ctx.JSON(http.StatusOK, resp)
}
