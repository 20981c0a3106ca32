// Package models defines data structures shared across the application.
package models

// TicketDraft is the editable title/description pair produced by the
// story generator and consumed at submission time.
type TicketDraft struct {
	// Title is the one-line summary of the story
	Title string `json:"title"`

	// Description is the full body text, including the
	// "Acceptance Criteria:" section when the model produced one
	Description string `json:"description"`
}

// IsComplete reports whether the draft has both fields populated.
// A draft missing either field must never be submitted.
func (d TicketDraft) IsComplete() bool {
	return d.Title != "" && d.Description != ""
}

// QualityCriterion is a single pass/fail check from the AI quality
// assessment of a draft.
type QualityCriterion struct {
	// ID is the stable identifier of the check (e.g. "title", "testable")
	ID string `json:"id"`

	// Name is the human-readable description of the check
	Name string `json:"name"`

	// Passed indicates whether the draft satisfied the check
	Passed bool `json:"passed"`

	// Reason is the model's brief explanation for the verdict
	Reason string `json:"reason"`
}

// QualityAssessment is the structured result of scoring a draft for
// development readiness.
type QualityAssessment struct {
	// Criteria holds the six individual checks, in schema order
	Criteria []QualityCriterion `json:"criteria"`

	// OverallScore is the model's 0-100 readiness score
	OverallScore int `json:"overallScore"`

	// Recommendation is the model's summary verdict, e.g.
	// "Ready for Development", "Good" or "Needs Improvement"
	Recommendation string `json:"recommendation"`
}

// PassedCount returns how many criteria the draft satisfied.
func (a QualityAssessment) PassedCount() int {
	n := 0
	for _, c := range a.Criteria {
		if c.Passed {
			n++
		}
	}
	return n
}

// JiraIssueRequest is the payload accepted by the Jira issue-creation
// API: https://docs.atlassian.com/software/jira/docs/api/REST/latest/#api/2/issue-createIssue
type JiraIssueRequest struct {
	Fields JiraIssueFields `json:"fields"`
}

// JiraIssueFields holds the fields of a Jira issue-creation payload.
type JiraIssueFields struct {
	Project     JiraProject   `json:"project"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	IssueType   JiraIssueType `json:"issuetype"`
	Labels      []string      `json:"labels,omitempty"`
}

// JiraProject identifies the target project by key (e.g. "ABC").
type JiraProject struct {
	Key string `json:"key"`
}

// JiraIssueType identifies the issue type by name (e.g. "Story").
type JiraIssueType struct {
	Name string `json:"name"`
}

// CreatedJiraIssue is the subset of the Jira creation response we
// surface to the user.
type CreatedJiraIssue struct {
	// ID is the numeric issue id
	ID string `json:"id"`

	// Key is the full ticket identifier (e.g. "ABC-123")
	Key string `json:"key"`
}

// GitHubIssueRequest is the payload accepted by the relay's GitHub
// route. Labels are optional and omitted from the upstream call when
// empty.
type GitHubIssueRequest struct {
	Owner  string   `json:"owner"`
	Repo   string   `json:"repo"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
}

// CreatedGitHubIssue is the subset of the GitHub issue representation
// we surface to the user.
type CreatedGitHubIssue struct {
	// Number is the issue number within the repository
	Number int `json:"number"`

	// HTMLURL is the browser link to the created issue
	HTMLURL string `json:"html_url"`
}

// Platform identifies one of the two submission targets.
type Platform string

const (
	// PlatformJira is the Jira ticketing system
	PlatformJira Platform = "jira"
	// PlatformGitHub is the GitHub issue tracker
	PlatformGitHub Platform = "github"
)

// PlatformResult is the outcome of one platform's submission attempt.
// One platform failing never invalidates the other's result.
type PlatformResult struct {
	Platform Platform

	// Success indicates whether the creation call succeeded
	Success bool

	// Message is the human-readable outcome line, including the link
	// to the created resource on success
	Message string
}

// SubmissionResult aggregates per-platform outcomes in fixed order:
// Jira first, then GitHub.
type SubmissionResult struct {
	Results []PlatformResult
}

// AllSucceeded reports whether every attempted platform succeeded.
func (r SubmissionResult) AllSucceeded() bool {
	for _, pr := range r.Results {
		if !pr.Success {
			return false
		}
	}
	return len(r.Results) > 0
}
