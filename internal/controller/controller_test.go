package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"

	"github.com/lshigami/examroom/config"
	"github.com/lshigami/examroom/internal/controller/admin"
	"github.com/lshigami/examroom/internal/controller/student"
	"github.com/lshigami/examroom/internal/controller/teacher"
	"github.com/lshigami/examroom/internal/controller/user"
	"github.com/lshigami/examroom/internal/dto"
	"github.com/lshigami/examroom/internal/middleware"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
	"github.com/lshigami/examroom/internal/repository/memory"
	"github.com/lshigami/examroom/internal/service"
	"github.com/lshigami/examroom/internal/validation"
)

const password = "correct-horse"

type testServer struct {
	router  *gin.Engine
	store   repository.Store
	examID  uint
	qIDs    []uint
	student string
	teacher string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, validation.Init())
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := memory.NewStore(memory.Open())
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	teacherUser := &model.User{Name: "Ms. Lan", Email: "lan@school.test", PasswordHash: string(hash), Role: model.RoleTeacher}
	require.NoError(t, store.Users().Create(ctx, teacherUser))
	studentUser := &model.User{Name: "Minh", Email: "minh@school.test", PasswordHash: string(hash), Role: model.RoleStudent, ClassName: "10A"}
	require.NoError(t, store.Users().Create(ctx, studentUser))

	now := time.Now().UTC()
	exam := &model.Exam{
		Title: "Algebra midterm", Subject: "Math", ClassName: "10A",
		StartTime: now.Add(-10 * time.Minute), EndTime: now.Add(50 * time.Minute),
		DurationMinutes: 60, Status: model.ExamStatusUpcoming, CreatedBy: teacherUser.ID,
	}
	require.NoError(t, store.Exams().Create(ctx, exam))
	var qIDs []uint
	for i, correct := range []string{"A", "B", "C"} {
		q := &model.Question{
			ExamID: exam.ID, Content: fmt.Sprintf("Question %d", i+1),
			Options:       datatypes.NewJSONType(model.Options{"A": "a", "B": "b", "C": "c", "D": "d"}),
			CorrectAnswer: correct, Points: i + 1, Position: i,
		}
		require.NoError(t, store.Questions().Create(ctx, q))
		qIDs = append(qIDs, q.ID)
	}

	cfg := &config.Config{Auth: config.Auth{JWTSecret: "test-secret", TokenTTL: time.Hour}}
	clock := service.SystemClock()
	conv := service.NewScoreConverterService()
	authSvc := service.NewAuthService(store, cfg, clock)
	examSvc := service.NewExamService(store, clock)
	explSvc, err := service.NewExplanationService(cfg)
	require.NoError(t, err)
	ctrl := NewController(
		authSvc,
		user.NewUserAuthController(authSvc),
		admin.NewAdminUserController(authSvc),
		teacher.NewTeacherExamController(examSvc, service.NewQuestionService(store, explSvc), service.NewResultService(store, conv, clock)),
		student.NewStudentExamController(examSvc, service.NewSubmissionService(store, conv, clock)),
	)

	router := gin.New()
	router.Use(middleware.RequestLogger())
	ctrl.RegisterRoutes(router)

	srv := &testServer{router: router, store: store, examID: exam.ID, qIDs: qIDs}
	srv.student = srv.login(t, "minh@school.test")
	srv.teacher = srv.login(t, "lan@school.test")
	return srv
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp dto.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func (s *testServer) submitPath() string {
	return fmt.Sprintf("/api/v1/student/exams/%d/submit", s.examID)
}

func (s *testServer) answers(labels ...string) map[string]any {
	items := make([]map[string]any, 0, len(labels))
	for i, l := range labels {
		items = append(items, map[string]any{"question_id": s.qIDs[i], "answer": l})
	}
	return map[string]any{"answers": items}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSubmitExamEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, srv.submitPath(), srv.student, srv.answers("A", "B", "D"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result dto.SubmissionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "completed", result.Status)
	require.NotNil(t, result.Score)
	assert.Equal(t, 3, *result.Score)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	rec = srv.do(t, http.MethodPost, srv.submitPath(), srv.student, srv.answers("A", "B", "C"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/student/submissions/%d", result.ID), srv.student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail dto.SubmissionDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, 6, detail.MaxScore)
	assert.Len(t, detail.Answers, 3)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/teacher/exams/%d/results", srv.examID), srv.teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var results dto.ExamResultsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results.Submissions, 1)
	assert.Equal(t, "Minh", results.Submissions[0].StudentName)
}

func TestQuestionEditsAfterSubmitAreConflicts(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, srv.submitPath(), srv.student, srv.answers("A", "B", "D"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result dto.SubmissionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	rec = srv.do(t, http.MethodPut, fmt.Sprintf("/api/v1/teacher/questions/%d", srv.qIDs[1]), srv.teacher, dto.QuestionRequest{
		Content:       "Question 2",
		Options:       map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"},
		CorrectAnswer: "A",
		Points:        10,
		Position:      1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/teacher/questions/%d", srv.qIDs[0]), srv.teacher, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/student/submissions/%d", result.ID), srv.student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail dto.SubmissionDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, 3, *detail.Score)
	assert.Equal(t, 6, detail.MaxScore)
	require.NotNil(t, detail.Percentage)
	assert.Equal(t, 50.0, *detail.Percentage)
}

func TestSubmitExamEndpointErrors(t *testing.T) {
	tests := []struct {
		name       string
		token      func(s *testServer) string
		path       func(s *testServer) string
		body       func(s *testServer) any
		wantStatus int
		wantField  string
	}{
		{
			name:       "no token",
			token:      func(*testServer) string { return "" },
			body:       func(s *testServer) any { return s.answers("A") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			token:      func(*testServer) string { return "garbage" },
			body:       func(s *testServer) any { return s.answers("A") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "teacher",
			token:      func(s *testServer) string { return s.teacher },
			body:       func(s *testServer) any { return s.answers("A") },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "empty answers",
			body:       func(*testServer) any { return map[string]any{"answers": []any{}} },
			wantStatus: http.StatusBadRequest,
			wantField:  "answers",
		},
		{
			name:       "invalid label",
			body:       func(s *testServer) any { return s.answers("Z") },
			wantStatus: http.StatusBadRequest,
			wantField:  "answers[0].answer",
		},
		{
			name: "unknown question",
			body: func(s *testServer) any {
				return map[string]any{"answers": []map[string]any{
					{"question_id": s.qIDs[0], "answer": "A"},
					{"question_id": 9999, "answer": "B"},
				}}
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "answers[1].question_id",
		},
		{
			name:       "missing exam",
			path:       func(*testServer) string { return "/api/v1/student/exams/9999/submit" },
			body:       func(s *testServer) any { return s.answers("A") },
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad exam id",
			path:       func(*testServer) string { return "/api/v1/student/exams/abc/submit" },
			body:       func(s *testServer) any { return s.answers("A") },
			wantStatus: http.StatusBadRequest,
			wantField:  "exam_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			token := srv.student
			if tt.token != nil {
				token = tt.token(srv)
			}
			path := srv.submitPath()
			if tt.path != nil {
				path = tt.path(srv)
			}

			rec := srv.do(t, http.MethodPost, path, token, tt.body(srv))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			resp := decodeError(t, rec)
			assert.NotEmpty(t, resp.Message)
			if tt.wantField != "" {
				assert.Contains(t, resp.Fields, tt.wantField)
			}

			subs, err := srv.store.Submissions().FindAllByExam(context.Background(), srv.examID)
			require.NoError(t, err)
			assert.Empty(t, subs)
		})
	}
}

func TestStartExamEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/student/exams/%d/start", srv.examID), srv.student, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var session dto.ExamSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "in_progress", session.Submission.Status)
	assert.InDelta(t, 50*60, session.RemainingSeconds, 5)

	rec = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/student/exams/%d", srv.examID), srv.student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct_answer")
}

func TestExplanationWithoutKeyIsUnavailable(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/teacher/questions/%d/explanation", srv.qIDs[0]), srv.teacher, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/teacher/questions/%d/explanation", srv.qIDs[0]), srv.student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/v1/admin/users", srv.teacher, dto.CreateUserRequest{
		Name: "Hoa", Email: "hoa@school.test", Password: "password1", Role: "student", ClassName: "10A",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/auth/me", srv.teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "teacher", me.Role)
}
