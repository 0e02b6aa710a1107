package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lshigami/examroom/internal/dto"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx reply decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%d: %s (%s)", e.StatusCode, e.Message, strings.Join(parts, ", "))
}

// Client talks to the examroom HTTP API on behalf of one student.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// Login exchanges credentials for a token that is attached to later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	c.token = out.Token
	return &out, nil
}

func (c *Client) ListExams(ctx context.Context) ([]dto.StudentExamResponse, error) {
	var out []dto.StudentExamResponse
	if err := c.do(ctx, http.MethodGet, "/student/exams", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetExam(ctx context.Context, examID uint) (*dto.StudentExamResponse, error) {
	var out dto.StudentExamResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/student/exams/%d", examID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StartExam(ctx context.Context, examID uint) (*dto.ExamSessionResponse, error) {
	var out dto.ExamSessionResponse
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/student/exams/%d/start", examID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Submit(ctx context.Context, examID uint, answers []dto.AnswerInput) (*dto.SubmissionResponse, error) {
	var out dto.SubmissionResponse
	path := fmt.Sprintf("/student/exams/%d/submit", examID)
	if err := c.do(ctx, http.MethodPost, path, dto.SubmitExamRequest{Answers: answers}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSubmission(ctx context.Context, submissionID uint) (*dto.SubmissionDetailResponse, error) {
	var out dto.SubmissionDetailResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/student/submissions/%d", submissionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var e dto.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Message != "" {
			apiErr.Message = e.Message
			apiErr.Fields = e.Fields
		}
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
