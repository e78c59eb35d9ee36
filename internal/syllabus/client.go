// Package syllabus is the HTTP gateway to the remote syllabus service:
// upload a course PDF, get back an AI-generated summary and study plan.
package syllabus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// UploadError is a failed or rejected upload. Message carries the
// server-supplied reason when one could be extracted.
type UploadError struct {
	Status  int
	Message string
}

func (e *UploadError) Error() string { return e.Message }

// ValidationError is returned for a missing file or course name before
// any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StudyPlan is the AI-generated plan attached to a processed syllabus.
type StudyPlan struct {
	OverallStrategy      string   `json:"overallStrategy"`
	DifficultyAssessment string   `json:"difficultyAssessment"`
	EstimatedStudyHours  int      `json:"estimatedStudyHours"`
	RecommendedResources []string `json:"recommendedResources,omitempty"`
}

// ImportantDate is a deadline/holiday/exam/break extracted from the
// syllabus. Date is an ISO local date-time string as the service emits it.
type ImportantDate struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	Type        string `json:"type,omitempty"`
}

// Exam is a scheduled exam extracted from the syllabus.
type Exam struct {
	Title    string `json:"title"`
	Type     string `json:"type,omitempty"`
	DateTime string `json:"dateTime"`
	Location string `json:"location,omitempty"`
	Duration int    `json:"duration,omitempty"`
}

// Result is the processed syllabus returned by the upload endpoint.
type Result struct {
	ID                 string          `json:"id"`
	CourseName         string          `json:"courseName"`
	AIGeneratedSummary string          `json:"aiGeneratedSummary"`
	StudyPlan          *StudyPlan      `json:"studyPlan"`
	ImportantDates     []ImportantDate `json:"importantDates,omitempty"`
	Exams              []Exam          `json:"exams,omitempty"`
}

// Client talks to the syllabus service (<base>/upload).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL. Uploads get a longer
// leash than auth calls since the service runs PDF extraction and an LLM
// pass before answering; timeout zero falls back to 120s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Upload sends the PDF as a multipart form (file, userId, courseName) and
// decodes the processed syllabus.
func (c *Client) Upload(ctx context.Context, file io.Reader, filename, userID, courseName string) (*Result, error) {
	if file == nil {
		return nil, &ValidationError{Message: "Please choose a PDF file to upload."}
	}
	if strings.TrimSpace(courseName) == "" {
		return nil, &ValidationError{Message: "Please provide a course name."}
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Message: "You must be logged in to upload a syllabus."}
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("syllabus: build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("syllabus: read file: %w", err)
	}
	if err := mw.WriteField("userId", userID); err != nil {
		return nil, fmt.Errorf("syllabus: build form: %w", err)
	}
	if err := mw.WriteField("courseName", courseName); err != nil {
		return nil, fmt.Errorf("syllabus: build form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("syllabus: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("syllabus: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("syllabus: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UploadError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("syllabus: decode response: %w", err)
	}
	return &res, nil
}

// errorMessage extracts a human-readable reason from an error response,
// which the service emits either as {message} JSON or as plain text.
func errorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Sprintf("Upload failed: %d", resp.StatusCode)
	}
	var er struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &er); err == nil && er.Message != "" {
		return er.Message
	}
	return strings.TrimSpace(string(raw))
}
