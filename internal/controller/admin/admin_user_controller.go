package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/examroom/internal/controller/respond"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/middleware"
	"github.com/lshigami/examroom/internal/service"
)

type AdminUserController struct {
	authService service.AuthService
}

func NewAdminUserController(authService service.AuthService) *AdminUserController {
	return &AdminUserController{authService: authService}
}

// CreateUser godoc
// @Summary (Admin) Create a user account
// @Description Creates a teacher, student or admin account. Students must have a class.
// @Tags Admin - Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body dto.CreateUserRequest true "Account data"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Email already in use"
// @Router /admin/users [post]
func (c *AdminUserController) CreateUser(ctx *gin.Context) {
	var req dto.CreateUserRequest
	if !respond.Bind(ctx, &req) {
		return
	}
	user, err := c.authService.CreateUser(ctx.Request.Context(), middleware.Identity(ctx), req)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, user)
}
