// Package jira provides a token-scoped Jira client used for
// credential and project verification.
package jira

import (
	"errors"
	"fmt"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/storyforge/storyforge/internal/logging"
)

// Client handles interactions with the Jira API. Issue creation goes
// through the relay, which forwards payloads verbatim; this client
// exists for the read-only checks behind `storyforge doctor`.
type Client struct {
	client *jira.Client
}

// NewClient creates a Jira client authenticating with the same bearer
// scheme the relay attaches to forwarded requests.
func NewClient(baseURL, token string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("jira base url is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("jira token is required")
	}

	tp := jira.BearerAuthTransport{
		Token: token,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("error creating jira client: %w", err)
	}

	return &Client{client: client}, nil
}

// VerifyCredentials checks that the token authenticates and returns
// the account it belongs to.
func (c *Client) VerifyCredentials() (string, error) {
	if c.client == nil {
		return "", errors.New("jira client not initialized")
	}

	user, resp, err := c.client.User.GetSelf()
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return "", fmt.Errorf("failed to verify jira credentials: %v (status: %d)", err, status)
	}

	account := user.DisplayName
	if account == "" {
		account = user.EmailAddress
	}

	logging.Debug("jira authentication successful", "account", account)
	return account, nil
}

// CheckProject verifies that the project exists and is visible to the
// token, returning the project's display name.
func (c *Client) CheckProject(projectKey string) (string, error) {
	if c.client == nil {
		return "", errors.New("jira client not initialized")
	}
	if strings.TrimSpace(projectKey) == "" {
		return "", errors.New("project key is required")
	}

	project, resp, err := c.client.Project.Get(projectKey)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return "", fmt.Errorf("failed to find jira project %q: %v (status: %d)", projectKey, err, status)
	}

	return project.Name, nil
}
