package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kurihiro0119/github-issue-importer/internal/domain"
	apperrors "github.com/kurihiro0119/github-issue-importer/internal/errors"
)

// Client is the API client for the importer backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// errorBody is the backend's failure payload
type errorBody struct {
	Msg string `json:"msg"`
}

// APIError is a non-2xx backend response
type APIError struct {
	StatusCode int
	Msg        string
	Body       string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Msg)
	}
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Body)
}

// CreateRepository submits the full repository record.
// The submitted ID is the durable key once this returns nil.
func (c *Client) CreateRepository(ctx context.Context, repo *domain.Repository) error {
	if err := c.post(ctx, "/api/v1/repositories", repo, nil); err != nil {
		return apperrors.NewPersistFailedError(err)
	}
	return nil
}

// CreateIssue submits one issue scoped to its repository.
// A backend "msg" is carried verbatim as the error message.
func (c *Client) CreateIssue(ctx context.Context, issue *domain.Issue) error {
	if err := c.post(ctx, "/api/v1/issues", issue, nil); err != nil {
		detail := ""
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			detail = apiErr.Msg
		}
		return apperrors.NewIssueSaveFailedError(issue.Number, detail, err)
	}
	return nil
}

// GetRepository retrieves a registered repository by id
func (c *Client) GetRepository(ctx context.Context, id string) (*domain.Repository, error) {
	path := fmt.Sprintf("/api/v1/repositories/%s", url.PathEscape(id))

	var response struct {
		Data *domain.Repository `json:"data"`
	}
	if err := c.get(ctx, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListRepositories retrieves the repositories registered by a user
func (c *Client) ListRepositories(ctx context.Context, username string) ([]*domain.Repository, error) {
	path := fmt.Sprintf("/api/v1/users/%s/repositories", url.PathEscape(username))

	var response struct {
		Data []*domain.Repository `json:"data"`
	}
	if err := c.get(ctx, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// ListIssues retrieves the issues imported into a repository
func (c *Client) ListIssues(ctx context.Context, repositoryID string) ([]*domain.StoredIssue, error) {
	path := fmt.Sprintf("/api/v1/repositories/%s/issues", url.PathEscape(repositoryID))

	var response struct {
		Data []*domain.StoredIssue `json:"data"`
	}
	if err := c.get(ctx, path, nil, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck(ctx context.Context) error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Msg = eb.Msg
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
