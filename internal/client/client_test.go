package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lshigami/examroom/internal/dto"
)

type recorder struct {
	mu       sync.Mutex
	requests []dto.SubmitExamRequest
}

func (r *recorder) add(req dto.SubmitExamRequest) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return len(r.requests)
}

func (r *recorder) all() []dto.SubmitExamRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]dto.SubmitExamRequest(nil), r.requests...)
}

func newStubServer(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	authed := func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer tok-1" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "missing or invalid token"})
		}
	}

	submitted := &recorder{}
	r.POST("/api/v1/auth/login", func(c *gin.Context) {
		var req dto.LoginRequest
		assert.NoError(t, c.ShouldBindJSON(&req))
		if req.Password != "secret123" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "invalid email or password"})
			return
		}
		c.JSON(http.StatusOK, dto.LoginResponse{Token: "tok-1", User: dto.UserResponse{ID: 7, Email: req.Email, Role: "student"}})
	})
	r.POST("/api/v1/student/exams/:exam_id/start", authed, func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.ExamSessionResponse{
			Submission:       dto.SubmissionResponse{ID: 3, ExamID: 1, UserID: 7, Status: "in_progress"},
			EndTime:          time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
			RemainingSeconds: 1800,
		})
	})
	r.POST("/api/v1/student/exams/:exam_id/submit", authed, func(c *gin.Context) {
		var req dto.SubmitExamRequest
		assert.NoError(t, c.ShouldBindJSON(&req))
		if submitted.add(req) > 1 {
			c.JSON(http.StatusConflict, dto.ErrorResponse{Message: "exam has already been submitted"})
			return
		}
		score := 3
		c.JSON(http.StatusOK, dto.SubmissionResponse{ID: 3, ExamID: 1, UserID: 7, Score: &score, Status: "completed"})
	})
	r.GET("/api/v1/student/exams/:exam_id", authed, func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Message: "validation failed",
			Fields:  map[string]string{"exam_id": "must be a positive integer"},
		})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, submitted
}

func TestClientExamFlow(t *testing.T) {
	srv, submitted := newStubServer(t)
	c := New(srv.URL+"/", srv.Client())
	ctx := context.Background()

	login, err := c.Login(ctx, "stu@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, uint(7), login.User.ID)

	session, err := c.StartExam(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), session.RemainingSeconds)
	assert.Equal(t, "in_progress", session.Submission.Status)

	a := "A"
	res, err := c.Submit(ctx, 1, []dto.AnswerInput{{QuestionID: 10, Answer: &a}, {QuestionID: 11}})
	require.NoError(t, err)
	assert.Equal(t, 3, *res.Score)
	sent := submitted.all()
	require.Len(t, sent, 1)
	assert.Equal(t, uint(11), sent[0].Answers[1].QuestionID)
	assert.Nil(t, sent[0].Answers[1].Answer)

	_, err = c.Submit(ctx, 1, []dto.AnswerInput{{QuestionID: 10, Answer: &a}})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "exam has already been submitted", apiErr.Message)
}

func TestClientErrors(t *testing.T) {
	srv, _ := newStubServer(t)
	ctx := context.Background()

	t.Run("bad credentials", func(t *testing.T) {
		c := New(srv.URL, srv.Client())
		_, err := c.Login(ctx, "stu@example.com", "nope")
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	})

	t.Run("no token", func(t *testing.T) {
		c := New(srv.URL, srv.Client())
		_, err := c.StartExam(ctx, 1)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "missing or invalid token", apiErr.Message)
	})

	t.Run("field errors", func(t *testing.T) {
		c := New(srv.URL, srv.Client())
		_, err := c.Login(ctx, "stu@example.com", "secret123")
		require.NoError(t, err)
		_, err = c.GetExam(ctx, 1)
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "must be a positive integer", apiErr.Fields["exam_id"])
		assert.Contains(t, err.Error(), "exam_id: must be a positive integer")
	})
}
