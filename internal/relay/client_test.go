package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyforge/storyforge/pkg/models"
)

func jiraRequest() models.JiraIssueRequest {
	return models.JiraIssueRequest{
		Fields: models.JiraIssueFields{
			Project:     models.JiraProject{Key: "ABC"},
			Summary:     "A story",
			Description: "Body",
			IssueType:   models.JiraIssueType{Name: "Story"},
			Labels:      []string{"JiraAI"},
		},
	}
}

func TestClientCreateJiraIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/jira/issue", r.URL.Path)
		assert.Equal(t, "jira-token", r.Header.Get(jiraTokenHeader))

		var req models.JiraIssueRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ABC", req.Fields.Project.Key)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "10001", "key": "ABC-42"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	created, err := client.CreateJiraIssue(context.Background(), "jira-token", jiraRequest())
	require.NoError(t, err)
	assert.Equal(t, "ABC-42", created.Key)
}

func TestClientCreateJiraIssueRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errorMessages":["Field 'summary' is required"],"errors":{}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.CreateJiraIssue(context.Background(), "jira-token", jiraRequest())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "summary")
}

func TestClientCreateGitHubIssue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/github/issue", r.URL.Path)
		assert.Equal(t, "gh-token", r.Header.Get(githubTokenHeader))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"number": 7, "html_url": "https://github.com/acme/widgets/issues/7"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	created, err := client.CreateGitHubIssue(context.Background(), "gh-token", models.GitHubIssueRequest{
		Owner: "acme",
		Repo:  "widgets",
		Title: "A title",
		Body:  "A body",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, created.Number)
	assert.Equal(t, "https://github.com/acme/widgets/issues/7", created.HTMLURL)
}

func TestClientGitHubEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "SAML SSO Authorization Required", "details": "Authorize the token for acme", "samlError": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.CreateGitHubIssue(context.Background(), "gh-token", models.GitHubIssueRequest{
		Owner: "acme", Repo: "widgets", Title: "T", Body: "B",
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "SAML SSO Authorization Required", apiErr.Message)
	assert.Contains(t, apiErr.Details, "Authorize the token")
	assert.Contains(t, apiErr.Error(), "status 403")
}

func TestClientRelayUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	_, err := client.CreateJiraIssue(context.Background(), "jira-token", jiraRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay unreachable")
}

func TestClientNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.CreateJiraIssue(context.Background(), "jira-token", jiraRequest())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "upstream exploded")
}
