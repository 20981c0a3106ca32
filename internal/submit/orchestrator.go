// Package submit coordinates publishing a finished draft to the
// selected platforms through the relay.
package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/storyforge/storyforge/internal/github"
	"github.com/storyforge/storyforge/internal/logging"
	"github.com/storyforge/storyforge/pkg/models"
)

// DefaultLabel is applied to created tickets and issues when the user
// does not choose one, so AI-drafted items stay findable later.
const DefaultLabel = "JiraAI"

// RelayAPI is the part of the relay client the orchestrator needs.
type RelayAPI interface {
	CreateJiraIssue(ctx context.Context, token string, req models.JiraIssueRequest) (*models.CreatedJiraIssue, error)
	CreateGitHubIssue(ctx context.Context, token string, req models.GitHubIssueRequest) (*models.CreatedGitHubIssue, error)
}

// Options selects the target platforms and carries their credentials.
// Tokens live only for the duration of the submission.
type Options struct {
	Jira   bool
	GitHub bool

	// Jira settings
	Project   string
	IssueType string
	JiraToken string

	// Label applied on both platforms; DefaultLabel when empty
	Label string

	// GitHub settings
	Repository  string
	GitHubToken string
}

// Orchestrator submits drafts to one or both platforms.
type Orchestrator struct {
	relay         RelayAPI
	jiraBrowseURL string
}

// NewOrchestrator creates an orchestrator. jiraBaseURL is used only to
// build browse links in success messages and may be empty.
func NewOrchestrator(relay RelayAPI, jiraBaseURL string) *Orchestrator {
	return &Orchestrator{
		relay:         relay,
		jiraBrowseURL: jiraBaseURL,
	}
}

// Validate checks the draft and options, returning every problem at
// once rather than stopping at the first.
func (o *Orchestrator) Validate(draft models.TicketDraft, opts Options) []error {
	var errs []error

	if !opts.Jira && !opts.GitHub {
		errs = append(errs, errors.New("select at least one platform (jira or github)"))
	}
	if !draft.IsComplete() {
		errs = append(errs, errors.New("draft needs both a title and a description"))
	}

	if opts.Jira {
		if opts.JiraToken == "" {
			errs = append(errs, errors.New("jira token is required"))
		}
		if opts.Project == "" {
			errs = append(errs, errors.New("jira project key is required"))
		}
		if opts.IssueType == "" {
			errs = append(errs, errors.New("jira issue type is required"))
		}
	}

	if opts.GitHub {
		if opts.GitHubToken == "" {
			errs = append(errs, errors.New("github token is required"))
		}
		if _, _, err := github.SplitRepository(opts.Repository); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

// Submit validates and then publishes the draft to each selected
// platform independently, so one platform failing does not stop the
// other. The returned error is non-nil only for validation failures;
// per-platform outcomes are reported in the result.
func (o *Orchestrator) Submit(ctx context.Context, draft models.TicketDraft, opts Options) (models.SubmissionResult, error) {
	var result models.SubmissionResult

	if errs := o.Validate(draft, opts); len(errs) > 0 {
		return result, errors.Join(errs...)
	}

	label := opts.Label
	if label == "" {
		label = DefaultLabel
	}

	if opts.Jira {
		result.Results = append(result.Results, o.submitJira(ctx, draft, opts, label))
	}
	if opts.GitHub {
		result.Results = append(result.Results, o.submitGitHub(ctx, draft, opts, label))
	}

	return result, nil
}

func (o *Orchestrator) submitJira(ctx context.Context, draft models.TicketDraft, opts Options, label string) models.PlatformResult {
	req := models.JiraIssueRequest{
		Fields: models.JiraIssueFields{
			Project:     models.JiraProject{Key: opts.Project},
			Summary:     draft.Title,
			Description: draft.Description,
			IssueType:   models.JiraIssueType{Name: opts.IssueType},
			Labels:      []string{label},
		},
	}

	created, err := o.relay.CreateJiraIssue(ctx, opts.JiraToken, req)
	if err != nil {
		logging.Error("jira submission failed", "project", opts.Project, "error", err)
		return models.PlatformResult{
			Platform: models.PlatformJira,
			Message:  fmt.Sprintf("Failed to create Jira ticket: %v", err),
		}
	}

	message := fmt.Sprintf("Jira ticket created: %s", created.Key)
	if o.jiraBrowseURL != "" {
		message = fmt.Sprintf("Jira ticket created: %s (%s/browse/%s)", created.Key, o.jiraBrowseURL, created.Key)
	}

	logging.Info("jira ticket created", "key", created.Key)
	return models.PlatformResult{
		Platform: models.PlatformJira,
		Success:  true,
		Message:  message,
	}
}

func (o *Orchestrator) submitGitHub(ctx context.Context, draft models.TicketDraft, opts Options, label string) models.PlatformResult {
	// Validate already proved the repository splits.
	owner, repo, _ := github.SplitRepository(opts.Repository)

	req := models.GitHubIssueRequest{
		Owner:  owner,
		Repo:   repo,
		Title:  draft.Title,
		Body:   draft.Description,
		Labels: []string{label},
	}

	created, err := o.relay.CreateGitHubIssue(ctx, opts.GitHubToken, req)
	if err != nil {
		logging.Error("github submission failed", "repository", opts.Repository, "error", err)
		return models.PlatformResult{
			Platform: models.PlatformGitHub,
			Message:  fmt.Sprintf("Failed to create GitHub issue: %v", err),
		}
	}

	logging.Info("github issue created", "number", created.Number, "url", created.HTMLURL)
	return models.PlatformResult{
		Platform: models.PlatformGitHub,
		Success:  true,
		Message:  fmt.Sprintf("GitHub issue created: #%d (%s)", created.Number, created.HTMLURL),
	}
}
