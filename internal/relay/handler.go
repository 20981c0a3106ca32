package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storyforge/storyforge/internal/config"
	gh "github.com/storyforge/storyforge/internal/github"
	"github.com/storyforge/storyforge/internal/logging"
	"github.com/storyforge/storyforge/pkg/models"
)

const (
	jiraTokenHeader   = "x-jira-auth-token"
	githubTokenHeader = "x-github-auth-token"
)

// handler serves the two relay routes. Credentials arrive per request
// in headers and are never stored.
type handler struct {
	cfg        *config.Config
	httpClient *http.Client
}

func newHandler(cfg *config.Config) *handler {
	return &handler{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateJiraIssue forwards the request body verbatim to the Jira issue
// creation endpoint, attaching the bearer token from the request
// header. The upstream status and body are passed back unchanged so
// the caller sees exactly what Jira said.
func (h *handler) CreateJiraIssue(c *gin.Context) {
	token := c.GetHeader(jiraTokenHeader)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Jira token is required"})
		return
	}
	if h.cfg.Jira.BaseURL == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Jira base URL is not configured"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	upstreamURL := h.cfg.Jira.BaseURL + "/rest/api/2/issue"
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodPost, upstreamURL, bytes.NewReader(body))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Jira proxy error", "details": err.Error()})
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	logging.Debug("forwarding jira issue creation",
		"url", upstreamURL,
		"token", logging.MaskSensitive(token))

	resp, err := h.httpClient.Do(req)
	if err != nil {
		logging.Error("jira upstream unreachable", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Jira proxy error", "details": err.Error()})
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Jira proxy error", "details": err.Error()})
		return
	}

	if json.Valid(respBody) {
		c.Data(resp.StatusCode, "application/json", respBody)
	} else {
		c.Data(resp.StatusCode, "text/plain; charset=utf-8", respBody)
	}
}

// CreateGitHubIssue validates the payload, runs the repository
// pre-flight check, then creates the issue. Failures are classified
// so the caller gets actionable guidance instead of a bare status.
func (h *handler) CreateGitHubIssue(c *gin.Context) {
	token := c.GetHeader(githubTokenHeader)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "GitHub token is required"})
		return
	}

	var req models.GitHubIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload", "details": err.Error()})
		return
	}
	if req.Owner == "" || req.Repo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Owner and repo are required"})
		return
	}

	client, err := gh.NewClient(token, h.cfg.GitHub.APIBaseURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "GitHub proxy error", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()

	if err := client.CheckRepository(ctx, req.Owner, req.Repo); err != nil {
		var accessErr *gh.RepoAccessError
		if errors.As(err, &accessErr) {
			c.JSON(statusOrDefault(accessErr.StatusCode), gin.H{
				"error":    "Repository not found or no access",
				"details":  accessErr.Details,
				"status":   accessErr.StatusCode,
				"rawError": accessErr.Raw,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "GitHub proxy error", "details": err.Error()})
		return
	}

	issue, err := client.CreateIssue(ctx, req.Owner, req.Repo, req.Title, req.Body, req.Labels)
	if err != nil {
		var accessErr *gh.RepoAccessError
		var upstreamErr *gh.UpstreamError
		switch {
		case errors.As(err, &accessErr):
			c.JSON(statusOrDefault(accessErr.StatusCode), gin.H{
				"error":     "SAML SSO Authorization Required",
				"message":   accessErr.Raw,
				"details":   accessErr.Details,
				"samlError": true,
			})
		case errors.As(err, &upstreamErr):
			c.JSON(statusOrDefault(upstreamErr.StatusCode), gin.H{
				"error":   upstreamErr.Message,
				"status":  upstreamErr.StatusCode,
				"details": upstreamErr.Message,
			})
		default:
			logging.Error("github upstream unreachable", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "GitHub proxy error", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"number":   issue.GetNumber(),
		"html_url": issue.GetHTMLURL(),
	})
}

// statusOrDefault guards against upstream errors that carried no
// response, which would otherwise panic gin with status 0.
func statusOrDefault(status int) int {
	if status == 0 {
		return http.StatusInternalServerError
	}
	return status
}
