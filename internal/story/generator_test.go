package story

import (
	"context"
	"errors"
	"testing"

	"github.com/storyforge/storyforge/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter returns a canned reply and records invocations.
type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string, opts llm.CallOptions) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

const markdownReply = `**Title:** Add export button to report page

**Description:**
Users need to export reports as CSV.
This covers the monthly report page only.

**Acceptance Criteria:**
* Given a report, when I click export, then a CSV downloads
* Given an empty report, when I click export, then a message is shown`

const plainReply = `Title: Add export button to report page
Description:
Users need to export reports as CSV.
Acceptance Criteria:
* Given a report, when I click export, then a CSV downloads`

func TestParseDraftMarkdownSections(t *testing.T) {
	draft := ParseDraft(markdownReply)

	assert.Equal(t, "Add export button to report page", draft.Title)
	assert.Contains(t, draft.Description, "Users need to export reports as CSV.")
	assert.Contains(t, draft.Description, "This covers the monthly report page only.")
	assert.Contains(t, draft.Description, "Acceptance Criteria:\n* Given a report, when I click export, then a CSV downloads")
	// The criteria block must not leak the markdown label into the body.
	assert.NotContains(t, draft.Description, "**")
}

func TestParseDraftPlainLabelFallback(t *testing.T) {
	draft := ParseDraft(plainReply)

	assert.Equal(t, "Add export button to report page", draft.Title)
	assert.Contains(t, draft.Description, "Users need to export reports as CSV.")
	assert.Contains(t, draft.Description, "Acceptance Criteria:\n* Given a report, when I click export, then a CSV downloads")
}

func TestParseDraftMissingSections(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		title    string
		descPart string
	}{
		{
			name:     "No title",
			content:  "**Description:**\nJust a body.",
			title:    "",
			descPart: "Just a body.",
		},
		{
			name:    "No recognizable sections",
			content: "The model rambled about something else entirely.",
		},
		{
			name:     "Description without criteria",
			content:  "**Title:** T\n**Description:**\nBody only.",
			title:    "T",
			descPart: "Body only.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := ParseDraft(tt.content)
			assert.Equal(t, tt.title, draft.Title)
			if tt.descPart == "" {
				assert.Empty(t, draft.Description)
			} else {
				assert.Contains(t, draft.Description, tt.descPart)
			}
		})
	}
}

func TestParseDraftFirstMatchWins(t *testing.T) {
	content := "**Title:** Real title\n**Description:**\nThe body mentions Title: not this one.\n"
	draft := ParseDraft(content)

	assert.Equal(t, "Real title", draft.Title)
}

func TestParseDraftTrimsWhitespace(t *testing.T) {
	content := "**Title:**   Padded title   \n**Description:**\n\n  padded body  \n\n"
	draft := ParseDraft(content)

	assert.Equal(t, "Padded title", draft.Title)
	assert.Equal(t, "padded body", draft.Description)
}

func TestGenerateSuccess(t *testing.T) {
	completer := &fakeCompleter{reply: markdownReply}
	gen := NewGenerator(completer, 600)

	draft, err := gen.Generate(context.Background(), "add an export button")
	require.NoError(t, err)
	assert.Equal(t, 1, completer.calls)
	assert.True(t, draft.IsComplete())
}

func TestGenerateEmptyTaskDescription(t *testing.T) {
	completer := &fakeCompleter{reply: markdownReply}
	gen := NewGenerator(completer, 600)

	_, err := gen.Generate(context.Background(), "   ")
	require.Error(t, err)
	assert.Zero(t, completer.calls, "no model call should be made for empty input")
}

func TestGenerateModelFailure(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("upstream 500")}
	gen := NewGenerator(completer, 600)

	draft, err := gen.Generate(context.Background(), "add an export button")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "story generation failed")
	assert.Empty(t, draft.Title)
	assert.Empty(t, draft.Description)
}
