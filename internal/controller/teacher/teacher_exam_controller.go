package teacher

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/examroom/internal/controller/respond"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/middleware"
	"github.com/lshigami/examroom/internal/service"
)

type TeacherExamController struct {
	examService     service.ExamService
	questionService service.QuestionService
	resultService   service.ResultService
}

func NewTeacherExamController(
	examService service.ExamService,
	questionService service.QuestionService,
	resultService service.ResultService,
) *TeacherExamController {
	return &TeacherExamController{
		examService:     examService,
		questionService: questionService,
		resultService:   resultService,
	}
}

// CreateExam godoc
// @Summary Create an exam
// @Description Status "draft" hides the exam from students; any other status is derived from the exam window.
// @Tags Teacher - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam body dto.ExamRequest true "Exam data"
// @Success 201 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /teacher/exams [post]
func (c *TeacherExamController) CreateExam(ctx *gin.Context) {
	var req dto.ExamRequest
	if !respond.Bind(ctx, &req) {
		return
	}
	exam, err := c.examService.CreateExam(ctx.Request.Context(), middleware.Identity(ctx), req)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, exam)
}

// ListExams godoc
// @Summary List my exams
// @Tags Teacher - Exams
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.ExamResponse
// @Router /teacher/exams [get]
func (c *TeacherExamController) ListExams(ctx *gin.Context) {
	exams, err := c.examService.ListTeacherExams(ctx.Request.Context(), middleware.Identity(ctx))
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// GetExam godoc
// @Summary Get one of my exams with its questions and answer key
// @Tags Teacher - Exams
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamResponse
// @Failure 403 {object} dto.ErrorResponse "Exam belongs to another teacher"
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/exams/{exam_id} [get]
func (c *TeacherExamController) GetExam(ctx *gin.Context) {
	examID, ok := respond.ID(ctx, "exam_id")
	if !ok {
		return
	}
	exam, err := c.examService.GetTeacherExam(ctx.Request.Context(), middleware.Identity(ctx), examID)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// UpdateExam godoc
// @Summary Update exam metadata
// @Tags Teacher - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Param exam body dto.ExamRequest true "Exam data"
// @Success 200 {object} dto.ExamResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/exams/{exam_id} [put]
func (c *TeacherExamController) UpdateExam(ctx *gin.Context) {
	examID, ok := respond.ID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.ExamRequest
	if !respond.Bind(ctx, &req) {
		return
	}
	exam, err := c.examService.UpdateExam(ctx.Request.Context(), middleware.Identity(ctx), examID, req)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// DeleteExam godoc
// @Summary Delete an exam and its questions
// @Tags Teacher - Exams
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Exam already has submissions"
// @Router /teacher/exams/{exam_id} [delete]
func (c *TeacherExamController) DeleteExam(ctx *gin.Context) {
	examID, ok := respond.ID(ctx, "exam_id")
	if !ok {
		return
	}
	if err := c.examService.DeleteExam(ctx.Request.Context(), middleware.Identity(ctx), examID); err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// AddQuestion godoc
// @Summary Add a question to an exam
// @Description Options must contain exactly the labels A, B, C and D. Content is stored verbatim, math markup included.
// @Tags Teacher - Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Param question body dto.QuestionRequest true "Question data"
// @Success 201 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Exam already has submissions"
// @Router /teacher/exams/{exam_id}/questions [post]
func (c *TeacherExamController) AddQuestion(ctx *gin.Context) {
	examID, ok := respond.ID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.QuestionRequest
	if !respond.Bind(ctx, &req) {
		return
	}
	q, err := c.questionService.CreateQuestion(ctx.Request.Context(), middleware.Identity(ctx), examID, req)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, q)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags Teacher - Questions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param question_id path int true "Question ID"
// @Param question body dto.QuestionRequest true "Question data"
// @Success 200 {object} dto.QuestionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Exam already has submissions"
// @Router /teacher/questions/{question_id} [put]
func (c *TeacherExamController) UpdateQuestion(ctx *gin.Context) {
	questionID, ok := respond.ID(ctx, "question_id")
	if !ok {
		return
	}
	var req dto.QuestionRequest
	if !respond.Bind(ctx, &req) {
		return
	}
	q, err := c.questionService.UpdateQuestion(ctx.Request.Context(), middleware.Identity(ctx), questionID, req)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, q)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags Teacher - Questions
// @Security BearerAuth
// @Param question_id path int true "Question ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Exam already has submissions"
// @Router /teacher/questions/{question_id} [delete]
func (c *TeacherExamController) DeleteQuestion(ctx *gin.Context) {
	questionID, ok := respond.ID(ctx, "question_id")
	if !ok {
		return
	}
	if err := c.questionService.DeleteQuestion(ctx.Request.Context(), middleware.Identity(ctx), questionID); err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// DraftExplanation godoc
// @Summary Draft an explanation with Gemini
// @Description Asks the LLM to explain the correct answer and stores the text on the question.
// @Tags Teacher - Questions
// @Produce json
// @Security BearerAuth
// @Param question_id path int true "Question ID"
// @Success 200 {object} dto.ExplanationResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse "LLM not configured or unavailable"
// @Router /teacher/questions/{question_id}/explanation [post]
func (c *TeacherExamController) DraftExplanation(ctx *gin.Context) {
	questionID, ok := respond.ID(ctx, "question_id")
	if !ok {
		return
	}
	resp, err := c.questionService.DraftExplanation(ctx.Request.Context(), middleware.Identity(ctx), questionID)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ExamResults godoc
// @Summary Results of an exam
// @Description Per-student scores and per-question correct rates.
// @Tags Teacher - Results
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamResultsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /teacher/exams/{exam_id}/results [get]
func (c *TeacherExamController) ExamResults(ctx *gin.Context) {
	examID, ok := respond.ID(ctx, "exam_id")
	if !ok {
		return
	}
	results, err := c.resultService.ExamResults(ctx.Request.Context(), middleware.Identity(ctx), examID)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, results)
}
