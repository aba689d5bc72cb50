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

type QuestionController struct {
	questionService service.QuestionService
}

func NewQuestionController(questionService service.QuestionService) *QuestionController {
	return &QuestionController{questionService: questionService}
}

// SubmitQuestion godoc
// @Summary Submit one question to a panel
// @Description Rejected after the panel's question deadline or past the per-student quota.
// @Tags Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question body dto.SubmitQuestionRequest true "Question"
// @Success 201 {object} dto.SubmittedQuestionResponse
// @Failure 400 {object} dto.ErrorResponse "Deadline passed or invalid input"
// @Failure 404 {object} dto.ErrorResponse "Unknown panel"
// @Router /questions [post]
func (c *QuestionController) SubmitQuestion(ctx *gin.Context) {
	var req dto.SubmitQuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitQuestion: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	question, err := c.questionService.SubmitQuestion(ctx.Request.Context(), middleware.GetUserID(ctx), req.PanelID, req.Question)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.SubmittedQuestionResponse{Message: "Question submitted", QuestionID: question.ID})
}

// SubmitQuestionBatch godoc
// @Summary Submit several questions at once
// @Description All questions are validated together; either every question is created or none.
// @Tags Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questions body dto.BatchSubmitQuestionsRequest true "Questions"
// @Success 201 {array} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /questions/batch [post]
func (c *QuestionController) SubmitQuestionBatch(ctx *gin.Context) {
	var req dto.BatchSubmitQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitQuestionBatch: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	questions, err := c.questionService.SubmitQuestionBatch(ctx.Request.Context(), middleware.GetUserID(ctx), req.PanelID, req.Questions)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, toQuestionResponses(questions))
}

// MyQuestions godoc
// @Summary List the caller's submitted questions for a panel
// @Tags Questions
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {array} dto.QuestionResponse
// @Router /panels/{panel_id}/questions/mine [get]
func (c *QuestionController) MyQuestions(ctx *gin.Context) {
	questions, err := c.questionService.SubmittedQuestions(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toQuestionResponses(questions))
}

// TaggingAssignment godoc
// @Summary Get the caller's tagging assignment for a panel
// @Description The first request after the question deadline triggers the panel-wide distribution. Refused once the caller has submitted reactions.
// @Tags Tagging
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Success 200 {object} dto.TaggingAssignmentResponse
// @Failure 400 {object} dto.ErrorResponse "Tagging deadline passed"
// @Failure 403 {object} dto.ErrorResponse "Tagging already submitted"
// @Failure 409 {object} dto.ErrorResponse "Not enough questions to distribute"
// @Router /panels/{panel_id}/tagging [get]
func (c *QuestionController) TaggingAssignment(ctx *gin.Context) {
	assignment, err := c.questionService.TaggingAssignment(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("panel_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.TaggingAssignmentResponse{Questions: assignment})
}

// SubmitTagging godoc
// @Summary Submit reactions to assigned questions
// @Description Reactions must reference questions from the caller's assignment. Duplicate reactions are ignored.
// @Tags Tagging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Param tagging body dto.TaggingRequest true "Liked, disliked and flagged question ids"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /panels/{panel_id}/tagging [post]
func (c *QuestionController) SubmitTagging(ctx *gin.Context) {
	var req dto.TaggingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitTagging: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	err := c.questionService.SubmitTagging(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("panel_id"), req.Liked, req.Disliked, req.Flagged)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Reactions recorded"})
}

// MarkSimilar godoc
// @Summary Mark groups of questions as similar
// @Description Each group links all its members pairwise. Links are undirected and deduplicated.
// @Tags Tagging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param panel_id path string true "Panel ID"
// @Param groups body dto.MarkSimilarRequest true "Groups of similar question ids"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /panels/{panel_id}/similar [post]
func (c *QuestionController) MarkSimilar(ctx *gin.Context) {
	var req dto.MarkSimilarRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("MarkSimilar: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	err := c.questionService.MarkSimilar(ctx.Request.Context(), middleware.GetUserID(ctx), ctx.Param("panel_id"), req.Similar)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Similarity recorded"})
}

func toQuestionResponses(questions []model.Question) []dto.QuestionResponse {
	resp := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		var r dto.QuestionResponse
		if err := copier.Copy(&r, &q); err != nil {
			log.Error().Err(err).Str("questionID", q.ID).Msg("Question response mapping failed")
			continue
		}
		resp = append(resp, r)
	}
	return resp
}
