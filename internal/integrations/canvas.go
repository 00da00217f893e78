package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CanvasClient wraps the Canvas LMS REST API for course and assignment reads.
type CanvasClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewCanvas creates a Canvas client for an institution's instance.
func NewCanvas(baseURL, token string) *CanvasClient {
	return &CanvasClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Course is one active course.
type Course struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Code string `json:"course_code"`
}

// Courses lists the user's active courses.
func (c *CanvasClient) Courses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.get(ctx, "/api/v1/courses?enrollment_state=active&per_page=50", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Assignment is one course assignment.
type Assignment struct {
	ID      int       `json:"id"`
	Name    string    `json:"name"`
	DueAt   time.Time `json:"due_at"`
	HTMLURL string    `json:"html_url"`
}

// Assignments lists a course's assignments ordered by due date.
func (c *CanvasClient) Assignments(ctx context.Context, courseID int) ([]Assignment, error) {
	var assignments []Assignment
	path := fmt.Sprintf("/api/v1/courses/%d/assignments?order_by=due_at&per_page=50", courseID)
	if err := c.get(ctx, path, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (c *CanvasClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("Canvas returned %d: %s", resp.StatusCode, truncateBody(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
