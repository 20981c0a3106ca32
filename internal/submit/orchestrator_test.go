package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyforge/storyforge/pkg/models"
)

// fakeRelay records calls and returns scripted results per platform.
type fakeRelay struct {
	jiraCalls   int
	githubCalls int

	jiraReq   models.JiraIssueRequest
	githubReq models.GitHubIssueRequest

	jiraErr   error
	githubErr error
}

func (f *fakeRelay) CreateJiraIssue(_ context.Context, _ string, req models.JiraIssueRequest) (*models.CreatedJiraIssue, error) {
	f.jiraCalls++
	f.jiraReq = req
	if f.jiraErr != nil {
		return nil, f.jiraErr
	}
	return &models.CreatedJiraIssue{ID: "10001", Key: "ABC-42"}, nil
}

func (f *fakeRelay) CreateGitHubIssue(_ context.Context, _ string, req models.GitHubIssueRequest) (*models.CreatedGitHubIssue, error) {
	f.githubCalls++
	f.githubReq = req
	if f.githubErr != nil {
		return nil, f.githubErr
	}
	return &models.CreatedGitHubIssue{Number: 7, HTMLURL: "https://github.com/acme/widgets/issues/7"}, nil
}

func completeDraft() models.TicketDraft {
	return models.TicketDraft{
		Title:       "Add CSV export",
		Description: "As a user I want to export reports as CSV.",
	}
}

func jiraOptions() Options {
	return Options{
		Jira:      true,
		Project:   "ABC",
		IssueType: "Story",
		JiraToken: "jira-token",
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	o := NewOrchestrator(&fakeRelay{}, "")

	errs := o.Validate(models.TicketDraft{}, Options{Jira: true, GitHub: true})

	// Incomplete draft, missing jira token, project, issue type,
	// missing github token and malformed repository.
	assert.Len(t, errs, 6)
}

func TestValidateNoPlatform(t *testing.T) {
	o := NewOrchestrator(&fakeRelay{}, "")

	errs := o.Validate(completeDraft(), Options{})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "at least one platform")
}

func TestSubmitMalformedRepositoryMakesNoCalls(t *testing.T) {
	relay := &fakeRelay{}
	o := NewOrchestrator(relay, "")

	opts := Options{
		GitHub:      true,
		GitHubToken: "gh-token",
		Repository:  "not-a-repo",
	}
	_, err := o.Submit(context.Background(), completeDraft(), opts)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid repository format")
	assert.Zero(t, relay.jiraCalls)
	assert.Zero(t, relay.githubCalls)
}

func TestSubmitJiraSuccess(t *testing.T) {
	relay := &fakeRelay{}
	o := NewOrchestrator(relay, "https://jira.example.com")

	result, err := o.Submit(context.Background(), completeDraft(), jiraOptions())
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	r := result.Results[0]
	assert.Equal(t, models.PlatformJira, r.Platform)
	assert.True(t, r.Success)
	assert.Contains(t, r.Message, "ABC-42")
	assert.Contains(t, r.Message, "https://jira.example.com/browse/ABC-42")

	assert.Equal(t, "ABC", relay.jiraReq.Fields.Project.Key)
	assert.Equal(t, "Add CSV export", relay.jiraReq.Fields.Summary)
	assert.Equal(t, "Story", relay.jiraReq.Fields.IssueType.Name)
	assert.Equal(t, []string{DefaultLabel}, relay.jiraReq.Fields.Labels)
	assert.True(t, result.AllSucceeded())
}

func TestSubmitCustomLabel(t *testing.T) {
	relay := &fakeRelay{}
	o := NewOrchestrator(relay, "")

	opts := jiraOptions()
	opts.Label = "platform-team"
	_, err := o.Submit(context.Background(), completeDraft(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"platform-team"}, relay.jiraReq.Fields.Labels)
}

func TestSubmitBothPlatformsPartialFailure(t *testing.T) {
	relay := &fakeRelay{
		githubErr: errors.New("SAML SSO Authorization Required (status 403)"),
	}
	o := NewOrchestrator(relay, "")

	opts := jiraOptions()
	opts.GitHub = true
	opts.GitHubToken = "gh-token"
	opts.Repository = "acme/widgets"

	result, err := o.Submit(context.Background(), completeDraft(), opts)
	require.NoError(t, err, "platform failures are reported in the result, not as an error")

	require.Len(t, result.Results, 2)
	assert.Equal(t, models.PlatformJira, result.Results[0].Platform)
	assert.True(t, result.Results[0].Success)
	assert.Equal(t, models.PlatformGitHub, result.Results[1].Platform)
	assert.False(t, result.Results[1].Success)
	assert.Contains(t, result.Results[1].Message, "SAML SSO")
	assert.False(t, result.AllSucceeded())

	assert.Equal(t, 1, relay.jiraCalls)
	assert.Equal(t, 1, relay.githubCalls)
}

func TestSubmitGitHubRequest(t *testing.T) {
	relay := &fakeRelay{}
	o := NewOrchestrator(relay, "")

	opts := Options{
		GitHub:      true,
		GitHubToken: "gh-token",
		Repository:  "acme/widgets",
	}
	result, err := o.Submit(context.Background(), completeDraft(), opts)
	require.NoError(t, err)

	assert.Equal(t, "acme", relay.githubReq.Owner)
	assert.Equal(t, "widgets", relay.githubReq.Repo)
	assert.Equal(t, "Add CSV export", relay.githubReq.Title)
	assert.Equal(t, []string{DefaultLabel}, relay.githubReq.Labels)

	require.Len(t, result.Results, 1)
	assert.Contains(t, result.Results[0].Message, "#7")
}
