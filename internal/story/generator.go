// Package story turns a free-text task description into a structured
// ticket draft by prompting a chat-completion model and parsing the
// semi-structured markdown it returns.
package story

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/storyforge/storyforge/internal/llm"
	"github.com/storyforge/storyforge/internal/logging"
	"github.com/storyforge/storyforge/pkg/models"
)

const systemPrompt = "You are a Jira story writing assistant"

const userPromptTemplate = "Generate a Jira story for : %s. " +
	"The ticket must include the following two clearly labeled sections: " +
	"1. Title - A concise summary of the task or issue. " +
	"2. Description - A detailed explanation of the background, objective, and scope of work. " +
	"Also include 'Acceptance Criteria' - A bullet-point list of specific, testable conditions " +
	"that must be met for the ticket to be considered complete in the description section. " +
	"Format Acceptance Criteria as : * Given..., when..., then... * Given..., when..., then..."

// Section labels arrive either bold-markdown-wrapped or plain; the
// bold form is tried first with the plain form as fallback. Matching
// is first-match-wins when the model repeats a label.
var (
	titleBoldRe  = regexp.MustCompile(`(?i)\*\*Title:?\*\*\s*\n?(.+?)(\n|\r|$)`)
	titlePlainRe = regexp.MustCompile(`(?i)Title:?\s*\n?(.+?)(\n|\r|$)`)

	descBoldRe  = regexp.MustCompile(`(?is)\*\*Description:?\*\*\s*\n?(.*?)(\*\*Acceptance Criteria:?\*\*|$)`)
	descPlainRe = regexp.MustCompile(`(?is)Description:?\s*\n?(.*?)(Acceptance Criteria:?|$)`)

	criteriaBoldRe  = regexp.MustCompile(`(?is)\*\*Acceptance Criteria:?\*\*\s*\n?(.*)`)
	criteriaPlainRe = regexp.MustCompile(`(?is)Acceptance Criteria:?\s*\n?(.*)`)
)

// Generator produces ticket drafts from task descriptions.
type Generator struct {
	completer llm.Completer
	maxTokens int
}

// NewGenerator creates a Generator on top of a chat-completion client.
func NewGenerator(completer llm.Completer, maxTokens int) *Generator {
	return &Generator{
		completer: completer,
		maxTokens: maxTokens,
	}
}

// Generate prompts the model with the task description and parses the
// reply into a draft. On any failure it returns the zero draft and an
// error; callers keep whatever draft they already had.
func (g *Generator) Generate(ctx context.Context, taskDescription string) (models.TicketDraft, error) {
	if strings.TrimSpace(taskDescription) == "" {
		return models.TicketDraft{}, errors.New("task description is required")
	}

	content, err := g.completer.Complete(ctx, systemPrompt,
		fmt.Sprintf(userPromptTemplate, taskDescription),
		llm.CallOptions{MaxTokens: g.maxTokens})
	if err != nil {
		return models.TicketDraft{}, fmt.Errorf("story generation failed: %w", err)
	}

	draft := ParseDraft(content)
	if !draft.IsComplete() {
		logging.Warn("model reply missing sections",
			"has_title", draft.Title != "",
			"has_description", draft.Description != "")
	}

	return draft, nil
}

// ParseDraft extracts the Title, Description and Acceptance Criteria
// sections from a model reply. The description field carries the
// criteria block appended under a literal "Acceptance Criteria:"
// heading when one was found. Absent sections yield empty strings.
func ParseDraft(content string) models.TicketDraft {
	description := extractSection(content, descBoldRe, descPlainRe)
	criteria := extractSection(content, criteriaBoldRe, criteriaPlainRe)

	if criteria != "" {
		description = description + "\n\nAcceptance Criteria:\n" + criteria
		description = strings.TrimSpace(description)
	}

	return models.TicketDraft{
		Title:       extractSection(content, titleBoldRe, titlePlainRe),
		Description: description,
	}
}

// extractSection returns the trimmed first submatch of the bold
// pattern, falling back to the plain pattern when markdown labels are
// absent.
func extractSection(content string, bold, plain *regexp.Regexp) string {
	if m := bold.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := plain.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
