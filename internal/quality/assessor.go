// Package quality scores ticket drafts for development readiness with
// a deterministic, session-cached model call.
package quality

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/storyforge/storyforge/internal/llm"
	"github.com/storyforge/storyforge/internal/logging"
	"github.com/storyforge/storyforge/pkg/models"
)

const systemPrompt = "You are a software development expert who evaluates user stories " +
	"for development readiness. Respond only with valid JSON. Be consistent in your " +
	"scoring - identical stories should receive identical scores."

const userPromptTemplate = `
Analyze the following user story for development readiness. Evaluate each criterion and respond with ONLY a JSON object in this exact format:
{
  "criteria": [
    {"id": "title", "name": "Clear and descriptive title", "passed": true/false, "reason": "brief explanation"},
    {"id": "description", "name": "Detailed description with background and objective", "passed": true/false, "reason": "brief explanation"},
    {"id": "acceptance", "name": "Well-defined acceptance criteria with Given/When/Then format", "passed": true/false, "reason": "brief explanation"},
    {"id": "value", "name": "Clear user value or business objective", "passed": true/false, "reason": "brief explanation"},
    {"id": "specific", "name": "Specific and actionable requirements (no vague terms)", "passed": true/false, "reason": "brief explanation"},
    {"id": "testable", "name": "Testable and measurable outcomes", "passed": true/false, "reason": "brief explanation"}
  ],
  "overallScore": 0-100,
  "recommendation": "Ready for Development/Good/Needs Improvement"
}

Story to analyze:
Title: %s
Description: %s`

// Assessor produces cached quality assessments for drafts.
type Assessor struct {
	completer llm.Completer
	cache     Cache
	maxTokens int
	seed      int
}

// NewAssessor creates an Assessor. The cache is injected so callers
// control the session scope (and tests can observe it).
func NewAssessor(completer llm.Completer, cache Cache, maxTokens, seed int) *Assessor {
	return &Assessor{
		completer: completer,
		cache:     cache,
		maxTokens: maxTokens,
		seed:      seed,
	}
}

// Assess returns the quality assessment for a draft, serving repeated
// identical drafts from the cache without a model call. Editing either
// field changes the key, so stale entries are never served. Failures
// never populate the cache.
func (a *Assessor) Assess(ctx context.Context, draft models.TicketDraft) (models.QualityAssessment, error) {
	if !draft.IsComplete() {
		return models.QualityAssessment{}, errors.New("both title and description are required")
	}

	key := CacheKey(draft.Title, draft.Description)

	if raw, ok := a.cache.Get(key); ok {
		var cached models.QualityAssessment
		if err := json.Unmarshal(raw, &cached); err == nil {
			logging.Debug("assessment served from cache", "key", key)
			return cached, nil
		}
		// Corrupted entry: fall through to a fresh assessment, which
		// overwrites it on success.
		logging.Warn("discarding corrupted cache entry", "key", key)
	}

	content, err := a.completer.Complete(ctx, systemPrompt,
		fmt.Sprintf(userPromptTemplate, draft.Title, draft.Description),
		llm.CallOptions{
			MaxTokens:     a.maxTokens,
			Deterministic: true,
			Seed:          a.seed,
		})
	if err != nil {
		return models.QualityAssessment{}, fmt.Errorf("quality assessment failed: %w", err)
	}

	assessment, err := parseAssessment(content)
	if err != nil {
		return models.QualityAssessment{}, err
	}

	if raw, err := json.Marshal(assessment); err == nil {
		a.cache.Put(key, raw)
	}

	return assessment, nil
}

// parseAssessment decodes the model reply, tolerating prose around the
// JSON object by extracting the first balanced brace block.
func parseAssessment(content string) (models.QualityAssessment, error) {
	block, ok := extractJSONObject(content)
	if !ok {
		return models.QualityAssessment{}, errors.New("could not understand assessment response: no JSON object found")
	}

	var assessment models.QualityAssessment
	if err := json.Unmarshal([]byte(block), &assessment); err != nil {
		return models.QualityAssessment{}, fmt.Errorf("could not understand assessment response: %w", err)
	}

	return assessment, nil
}

// extractJSONObject returns the first balanced {...} block in s,
// skipping braces inside JSON strings.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
