package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/panelmgmt/pms-core/internal/controller"
	"github.com/panelmgmt/pms-core/internal/dto"
	"github.com/panelmgmt/pms-core/internal/service"
	"github.com/rs/zerolog/log"
)

type AuthController struct {
	tokenService service.TokenService
}

func NewAuthController(tokenService service.TokenService) *AuthController {
	return &AuthController{tokenService: tokenService}
}

// GoogleLogin godoc
// @Summary Exchange a Google id token for an API token
// @Description Verifies the Google id token and issues an internal token for the matching account. The account must already exist.
// @Tags Auth
// @Accept json
// @Produce json
// @Param login body dto.GoogleLoginRequest true "Google id token"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse "Token rejected"
// @Failure 404 {object} dto.ErrorResponse "No account for this email"
// @Router /auth/login [post]
func (c *AuthController) GoogleLogin(ctx *gin.Context) {
	var req dto.GoogleLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("GoogleLogin: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	token, err := c.tokenService.ExchangeGoogleToken(ctx.Request.Context(), req.Token)
	if err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// PanelLogin godoc
// @Summary Request a panelist magic-link login email
// @Description After a captcha check, emails the panelist a sign-in link for the caller's frontend.
// @Tags Auth
// @Accept json
// @Produce json
// @Param login body dto.PanelLoginRequest true "Panelist email, captcha token and caller URL"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Captcha rejected or invalid input"
// @Failure 403 {object} dto.ErrorResponse "Account is not a panelist"
// @Failure 404 {object} dto.ErrorResponse "No account for this email"
// @Router /auth/panel-login [post]
func (c *AuthController) PanelLogin(ctx *gin.Context) {
	var req dto.PanelLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("PanelLogin: failed to bind JSON")
		controller.WriteBindError(ctx, err)
		return
	}

	if err := c.tokenService.RequestPanelLogin(ctx.Request.Context(), req.Email, req.Token, req.CallerURL); err != nil {
		controller.WriteError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "Login link sent"})
}
