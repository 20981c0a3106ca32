// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/storyforge/storyforge/internal/logging"
)

// ssoMarkers are the substrings GitHub places in error bodies when an
// organization enforces SAML SSO and the token has not been authorized
// for it. They can appear with any HTTP status.
var ssoMarkers = []string{"SAML enforcement", "organization SAML"}

// RepoAccessError describes a repository that could not be reached
// during the pre-flight check (or an SSO rejection during creation).
// Details carries user-facing remediation guidance.
type RepoAccessError struct {
	Owner      string
	Repo       string
	StatusCode int

	// Raw is the upstream error text the classification was based on
	Raw string

	// Details is the remediation message shown to the user
	Details string

	// SSO indicates the failure was an organization SAML rejection
	SSO bool
}

func (e *RepoAccessError) Error() string {
	return fmt.Sprintf("repository %s/%s not accessible (status %d): %s",
		e.Owner, e.Repo, e.StatusCode, e.Raw)
}

// UpstreamError is a non-SSO failure from the issue-creation call,
// passed through with its upstream status.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github returned status %d: %s", e.StatusCode, e.Message)
}

// Client encapsulates a GitHub API client scoped to one access token.
type Client struct {
	client *github.Client
}

// NewClient creates a GitHub client for the given token. The API base
// URL is overridable for GitHub Enterprise or test servers and must
// end with a slash; empty means api.github.com.
func NewClient(token, apiBaseURL string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("github token is required")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)

	if apiBaseURL != "" && apiBaseURL != "https://api.github.com/" {
		parsedURL, err := url.Parse(apiBaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	return &Client{client: client}, nil
}

// VerifyToken checks that the token authenticates and returns the
// associated login.
func (c *Client) VerifyToken(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("error testing github token: %w", err)
	}
	return user.GetLogin(), nil
}

// CheckRepository verifies that the target repository exists and is
// accessible with this token before any issue is created against it.
// Failures are classified into a RepoAccessError with remediation
// guidance; transport failures are returned as-is.
func (c *Client) CheckRepository(ctx context.Context, owner, repo string) error {
	_, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) {
		return fmt.Errorf("failed to check repository %s/%s: %w", owner, repo, err)
	}

	status := 0
	if errResp.Response != nil {
		status = errResp.Response.StatusCode
	}

	logging.Warn("repository pre-flight check failed",
		"repository", owner+"/"+repo,
		"status_code", status,
		"message", errResp.Message)

	return classifyRepoError(owner, repo, status, errResp.Message)
}

// CreateIssue creates an issue in the repository. Labels are omitted
// from the request entirely when empty, matching the upstream API's
// expectations. SSO rejections are reported as RepoAccessError so
// callers can surface the same remediation guidance as the pre-flight
// path; other upstream rejections become UpstreamError.
func (c *Client) CreateIssue(ctx context.Context, owner, repo, title, body string, labels []string) (*github.Issue, error) {
	req := &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	}
	if len(labels) > 0 {
		req.Labels = &labels
	}

	issue, _, err := c.client.Issues.Create(ctx, owner, repo, req)
	if err == nil {
		logging.Info("created github issue",
			"repository", owner+"/"+repo,
			"issue_number", issue.GetNumber())
		return issue, nil
	}

	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) {
		return nil, fmt.Errorf("failed to create issue in %s/%s: %w", owner, repo, err)
	}

	status := 0
	if errResp.Response != nil {
		status = errResp.Response.StatusCode
	}

	if HasSSOMarker(errResp.Message) {
		return nil, &RepoAccessError{
			Owner:      owner,
			Repo:       repo,
			StatusCode: status,
			Raw:        errResp.Message,
			Details:    ssoRemediation(owner),
			SSO:        true,
		}
	}

	return nil, &UpstreamError{
		StatusCode: status,
		Message:    errResp.Message,
	}
}

// HasSSOMarker reports whether an upstream error body indicates an
// organization SAML SSO rejection.
func HasSSOMarker(s string) bool {
	for _, marker := range ssoMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// classifyRepoError turns a failed pre-flight response into guidance.
// The SSO case wins regardless of status code because GitHub reports
// SAML rejections with varying statuses.
func classifyRepoError(owner, repo string, status int, raw string) *RepoAccessError {
	e := &RepoAccessError{
		Owner:      owner,
		Repo:       repo,
		StatusCode: status,
		Raw:        raw,
	}

	switch {
	case HasSSOMarker(raw):
		e.SSO = true
		e.Details = ssoRemediation(owner)
	case status == 404:
		e.Details = fmt.Sprintf(`Repository "%s/%s" not found. Please check:
- Repository name is correct (case-sensitive)
- Repository exists and is accessible
- Your token has the right permissions`, owner, repo)
	case status == 401:
		e.Details = `Authentication failed. Please check:
- Your GitHub token is valid and not expired
- Token has the required permissions (repo scope)`
	default:
		e.Details = fmt.Sprintf("Repository %s/%s is not accessible.", owner, repo)
	}

	return e
}

// ssoRemediation builds the step-by-step message for authorizing a
// token against an SSO-protected organization.
func ssoRemediation(owner string) string {
	return fmt.Sprintf(`SAML SSO issue: your Personal Access Token needs to be authorized for the organization "%s". Please follow these steps:

1. Go to GitHub Settings -> Developer settings -> Personal access tokens
2. Find your token and click "Configure SSO"
3. Click "Authorize" next to the "%s" organization
4. Try creating the issue again`, owner, owner)
}

// SplitRepository parses an "owner/repo" identifier. It requires
// exactly one separator with non-empty halves.
func SplitRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}
