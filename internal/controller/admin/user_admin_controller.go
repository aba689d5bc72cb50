package admin

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/panelmgmt/pms-core/internal/controller"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/model"
	"github.com/panelmgmt/pms-core/internal/repository"
	"github.com/panelmgmt/pms-core/internal/service"
	"github.com/rs/zerolog/log"
)

type UserAdminController struct {
	userService   service.UserService
	rosterService service.RosterService
	auditLogs     repository.AuditLogRepository
}

func NewUserAdminController(
	userService service.UserService,
	rosterService service.RosterService,
	auditLogs repository.AuditLogRepository,
) *UserAdminController {
	return &UserAdminController{
		userService:   userService,
		rosterService: rosterService,
		auditLogs:     auditLogs,
	}
}

// CreateUser godoc
// @Summary (Admin) Create a user
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body dto.CreateUserRequest true "User data"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input or UIN already registered"
// @Router /admin/users [post]
func (c *UserAdminController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateUser: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	user, err := c.userService.CreateUser(ctx.Request.Context(), req)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	var resp dto.UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		log.Error().Err(err).Msg("Admin CreateUser: response mapping failed")
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// ListUsers godoc
// @Summary (Admin) List all users
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserResponse
// @Router /admin/users [get]
func (c *UserAdminController) ListUsers(ctx *gin.Context) {
	users, err := c.userService.Users(ctx.Request.Context())
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserResponses(users))
}

// GetUser godoc
// @Summary (Admin) Get one user
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{user_id} [get]
func (c *UserAdminController) GetUser(ctx *gin.Context) {
	user, err := c.userService.UserByID(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}

	var resp dto.UserResponse
	if err := copier.Copy(&resp, user); err != nil {
		log.Error().Err(err).Msg("Admin GetUser: response mapping failed")
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ImportRegistrarRoster godoc
// @Summary (Admin) Import a registrar roster CSV
// @Description Request body is the raw CSV export. Rows upsert student accounts by UIN.
// @Tags Admin - Users
// @Accept plain
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed CSV"
// @Router /admin/roster/registrar [post]
func (c *UserAdminController) ImportRegistrarRoster(ctx *gin.Context) {
	count, err := c.rosterService.ImportRegistrarCSV(ctx.Request.Context(), ctx.Request.Body)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: rosterMessage(count)})
}

// ImportLMSRoster godoc
// @Summary (Admin) Import an LMS roster CSV
// @Description Request body is the raw CSV export. Rows without a usable UIN are skipped.
// @Tags Admin - Users
// @Accept plain
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed CSV"
// @Router /admin/roster/lms [post]
func (c *UserAdminController) ImportLMSRoster(ctx *gin.Context) {
	count, err := c.rosterService.ImportLMSCSV(ctx.Request.Context(), ctx.Request.Body)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: rosterMessage(count)})
}

// AuditTrail godoc
// @Summary (Admin) List recorded request audit entries
// @Tags Admin - Users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.AuditLog
// @Router /admin/audit [get]
func (c *UserAdminController) AuditTrail(ctx *gin.Context) {
	entries, err := c.auditLogs.FindAll()
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, entries)
}

func rosterMessage(count int) string {
	return fmt.Sprintf("Student data processed successfully with %d records", count)
}

func toUserResponses(users []model.User) []dto.UserResponse {
	resp := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		var r dto.UserResponse
		if err := copier.Copy(&r, &u); err != nil {
			log.Error().Err(err).Str("userID", u.ID).Msg("User response mapping failed")
			continue
		}
		resp = append(resp, r)
	}
	return resp
}
