package student

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lshigami/examroom/internal/controller/respond"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/middleware"
	"github.com/lshigami/examroom/internal/service"
)

type StudentExamController struct {
	examService       service.ExamService
	submissionService service.SubmissionService
}

func NewStudentExamController(examService service.ExamService, submissionService service.SubmissionService) *StudentExamController {
	return &StudentExamController{examService: examService, submissionService: submissionService}
}

// ListExams godoc
// @Summary List exams for my class
// @Description Published exams assigned to the caller's class, with effective status and the caller's submission status
// @Tags Student - Exams
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.StudentExamResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /student/exams [get]
func (c *StudentExamController) ListExams(ctx *gin.Context) {
	exams, err := c.examService.ListStudentExams(ctx.Request.Context(), middleware.Identity(ctx))
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exams)
}

// GetExam godoc
// @Summary Get an exam to take
// @Description Exam with its questions, without correct answers. Questions are omitted before the exam starts.
// @Tags Student - Exams
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.StudentExamResponse
// @Failure 403 {object} dto.ErrorResponse "Exam belongs to another class"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Router /student/exams/{exam_id} [get]
func (c *StudentExamController) GetExam(ctx *gin.Context) {
	examID, ok := respond.ID(ctx, "exam_id")
	if !ok {
		return
	}
	exam, err := c.examService.GetStudentExam(ctx.Request.Context(), middleware.Identity(ctx), examID)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, exam)
}

// StartExam godoc
// @Summary Open an exam session
// @Description Creates or resumes the caller's in-progress submission and returns the exam end time and remaining seconds
// @Tags Student - Exams
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Success 200 {object} dto.ExamSessionResponse
// @Failure 403 {object} dto.ErrorResponse "Exam belongs to another class"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 409 {object} dto.ErrorResponse "Exam not started yet or already submitted"
// @Router /student/exams/{exam_id}/start [post]
func (c *StudentExamController) StartExam(ctx *gin.Context) {
	examID, ok := respond.ID(ctx, "exam_id")
	if !ok {
		return
	}
	session, err := c.submissionService.StartExam(ctx.Request.Context(), middleware.Identity(ctx), examID)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// SubmitExam godoc
// @Summary Submit answers for grading
// @Description Grades the whole batch in one transaction and completes the caller's submission. A null answer marks the question as unanswered.
// @Tags Student - Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exam_id path int true "Exam ID"
// @Param submission body dto.SubmitExamRequest true "Answers"
// @Success 200 {object} dto.SubmissionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid answers"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse "Not a student or wrong class"
// @Failure 404 {object} dto.ErrorResponse "Exam not found"
// @Failure 409 {object} dto.ErrorResponse "Exam not started yet or already submitted"
// @Router /student/exams/{exam_id}/submit [post]
func (c *StudentExamController) SubmitExam(ctx *gin.Context) {
	examID, ok := respond.ID(ctx, "exam_id")
	if !ok {
		return
	}
	var req dto.SubmitExamRequest
	if !respond.Bind(ctx, &req) {
		return
	}
	result, err := c.submissionService.SubmitExam(ctx.Request.Context(), middleware.Identity(ctx), examID, req)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// ListSubmissions godoc
// @Summary List my submissions
// @Tags Student - Results
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.SubmissionSummaryResponse
// @Router /student/submissions [get]
func (c *StudentExamController) ListSubmissions(ctx *gin.Context) {
	subs, err := c.submissionService.ListMySubmissions(ctx.Request.Context(), middleware.Identity(ctx))
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, subs)
}

// GetSubmission godoc
// @Summary Get one of my submissions
// @Description Per-question answers with correctness. Correct answers and explanations are included once the submission is completed.
// @Tags Student - Results
// @Produce json
// @Security BearerAuth
// @Param submission_id path int true "Submission ID"
// @Success 200 {object} dto.SubmissionDetailResponse
// @Failure 403 {object} dto.ErrorResponse "Submission belongs to another student"
// @Failure 404 {object} dto.ErrorResponse
// @Router /student/submissions/{submission_id} [get]
func (c *StudentExamController) GetSubmission(ctx *gin.Context) {
	submissionID, ok := respond.ID(ctx, "submission_id")
	if !ok {
		return
	}
	detail, err := c.submissionService.GetMySubmission(ctx.Request.Context(), middleware.Identity(ctx), submissionID)
	if err != nil {
		respond.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}
