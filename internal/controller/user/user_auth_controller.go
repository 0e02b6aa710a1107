package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/examroom/internal/controller/respond"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/middleware"
	"github.com/lshigami/examroom/internal/service"
)

type UserAuthController struct {
	authService service.AuthService
}

func NewUserAuthController(authService service.AuthService) *UserAuthController {
	return &UserAuthController{authService: authService}
}

// Login godoc
// @Summary Log in
// @Description Exchanges email and password for a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Router /auth/login [post]
func (c *UserAuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !respond.Bind(ctx, &req) {
		return
	}
	resp, err := c.authService.Login(ctx.Request.Context(), req)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (c *UserAuthController) Me(ctx *gin.Context) {
	me, err := c.authService.Me(ctx.Request.Context(), middleware.Identity(ctx))
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, me)
}
