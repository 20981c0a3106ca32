package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storyforge/storyforge/pkg/models"
)

// APIError is a non-2xx response from the relay, carrying whatever
// structure the relay's error envelope provided.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" && e.Details != e.Message {
		return fmt.Sprintf("%s (status %d): %s", e.Message, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// errorEnvelope matches the relay's error responses. Jira rejections
// are forwarded verbatim, so their errorMessages field is read too.
type errorEnvelope struct {
	Error         string            `json:"error"`
	Details       string            `json:"details"`
	Message       string            `json:"message"`
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}

// Client calls a running relay on behalf of the CLI.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a relay client for the given base URL, for
// example "http://localhost:4000".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// CreateJiraIssue submits a Jira issue through the relay. The token is
// sent once in a header and never retained.
func (c *Client) CreateJiraIssue(ctx context.Context, token string, req models.JiraIssueRequest) (*models.CreatedJiraIssue, error) {
	var created models.CreatedJiraIssue
	if err := c.post(ctx, "/api/jira/issue", jiraTokenHeader, token, req, &created); err != nil {
		return nil, err
	}
	if created.Key == "" {
		return nil, fmt.Errorf("relay returned no issue key")
	}
	return &created, nil
}

// CreateGitHubIssue submits a GitHub issue through the relay.
func (c *Client) CreateGitHubIssue(ctx context.Context, token string, req models.GitHubIssueRequest) (*models.CreatedGitHubIssue, error) {
	var created models.CreatedGitHubIssue
	if err := c.post(ctx, "/api/github/issue", githubTokenHeader, token, req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) post(ctx context.Context, path, tokenHeader, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tokenHeader, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("relay unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read relay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, respBody)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode relay response: %w", err)
	}
	return nil
}

// decodeAPIError extracts the most useful message from an error body,
// falling back to the raw text when it is not the known envelope.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		switch {
		case env.Error != "":
			apiErr.Message = env.Error
			apiErr.Details = env.Details
			if apiErr.Details == "" {
				apiErr.Details = env.Message
			}
		case len(env.ErrorMessages) > 0:
			apiErr.Message = strings.Join(env.ErrorMessages, "; ")
		case len(env.Errors) > 0:
			parts := make([]string, 0, len(env.Errors))
			for field, msg := range env.Errors {
				parts = append(parts, field+": "+msg)
			}
			apiErr.Message = strings.Join(parts, "; ")
		}
	}

	if apiErr.Message == "" {
		text := strings.TrimSpace(string(body))
		if len(text) > 200 {
			text = text[:200] + "..."
		}
		if text == "" {
			text = http.StatusText(status)
		}
		apiErr.Message = text
	}
	return apiErr
}
