package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/examroom/internal/controller/admin"
	"github.com/lshigami/examroom/internal/controller/student"
	"github.com/lshigami/examroom/internal/controller/teacher"
	"github.com/lshigami/examroom/internal/controller/user"
	"github.com/lshigami/examroom/internal/middleware"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/service"
)

type Controller struct {
	authService service.AuthService
	auth        *user.UserAuthController
	admin       *admin.AdminUserController
	teacher     *teacher.TeacherExamController
	student     *student.StudentExamController
}

func NewController(
	authService service.AuthService,
	authCtrl *user.UserAuthController,
	adminCtrl *admin.AdminUserController,
	teacherCtrl *teacher.TeacherExamController,
	studentCtrl *student.StudentExamController,
) *Controller {
	return &Controller{
		authService: authService,
		auth:        authCtrl,
		admin:       adminCtrl,
		teacher:     teacherCtrl,
		student:     studentCtrl,
	}
}

func (ctrl *Controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		authGroup.POST("/login", ctrl.auth.Login)
		authGroup.GET("/me", middleware.RequireAuth(ctrl.authService), ctrl.auth.Me)

		admins := apiV1.Group("/admin", middleware.RequireAuth(ctrl.authService), middleware.RequireRole(model.RoleAdmin))
		admins.POST("/users", ctrl.admin.CreateUser)

		teachers := apiV1.Group("/teacher", middleware.RequireAuth(ctrl.authService), middleware.RequireRole(model.RoleTeacher))
		teachers.POST("/exams", ctrl.teacher.CreateExam)
		teachers.GET("/exams", ctrl.teacher.ListExams)
		teachers.GET("/exams/:exam_id", ctrl.teacher.GetExam)
		teachers.PUT("/exams/:exam_id", ctrl.teacher.UpdateExam)
		teachers.DELETE("/exams/:exam_id", ctrl.teacher.DeleteExam)
		teachers.POST("/exams/:exam_id/questions", ctrl.teacher.AddQuestion)
		teachers.GET("/exams/:exam_id/results", ctrl.teacher.ExamResults)
		teachers.PUT("/questions/:question_id", ctrl.teacher.UpdateQuestion)
		teachers.DELETE("/questions/:question_id", ctrl.teacher.DeleteQuestion)
		teachers.POST("/questions/:question_id/explanation", ctrl.teacher.DraftExplanation)

		students := apiV1.Group("/student", middleware.RequireAuth(ctrl.authService), middleware.RequireRole(model.RoleStudent))
		students.GET("/exams", ctrl.student.ListExams)
		students.GET("/exams/:exam_id", ctrl.student.GetExam)
		students.POST("/exams/:exam_id/start", ctrl.student.StartExam)
		students.POST("/exams/:exam_id/submit", ctrl.student.SubmitExam)
		students.GET("/submissions", ctrl.student.ListSubmissions)
		students.GET("/submissions/:submission_id", ctrl.student.GetSubmission)
	}
}
