package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/config"
	"github.com/storyforge/storyforge/internal/quality"
	"github.com/storyforge/storyforge/internal/story"
	"github.com/storyforge/storyforge/pkg/models"
)

// reviewCmd scores an existing draft against story-writing criteria.
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a ticket draft against story-writing criteria",
	Long: `Review a draft against six story-writing criteria (clear title,
detailed description, acceptance criteria, user value, specificity,
testability) and report a 0-100 readiness score.

The draft comes from --draft (a file written by 'generate --out') or
from --title and --description directly.

Identical drafts always produce identical scores.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := draftFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		completer, err := newCompleter(cmd, cfg)
		if err != nil {
			return err
		}

		assessor := quality.NewAssessor(completer, quality.NewMemoryCache(), cfg.Model.ReviewMaxTokens, cfg.Model.ReviewSeed)
		assessment, err := assessor.Assess(cmd.Context(), draft)
		if err != nil {
			return fmt.Errorf("failed to review draft: %v", err)
		}

		printAssessment(assessment)
		return nil
	},
}

func init() {
	reviewCmd.Flags().String("draft", "", "Path to a draft file written by 'generate --out'")
	reviewCmd.Flags().String("title", "", "Draft title")
	reviewCmd.Flags().String("description", "", "Draft description")
	reviewCmd.Flags().String("api-key", "", "Model API key (defaults to MODEL_API_KEY)")
}

// draftFromFlags loads a draft from --draft or from --title and
// --description. The file form wins when both are given.
func draftFromFlags(cmd *cobra.Command) (models.TicketDraft, error) {
	var draft models.TicketDraft

	path, err := cmd.Flags().GetString("draft")
	if err != nil {
		return draft, err
	}

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return draft, fmt.Errorf("failed to read draft file: %v", err)
		}
		draft = story.ParseDraft(string(content))
	} else {
		draft.Title, err = cmd.Flags().GetString("title")
		if err != nil {
			return draft, err
		}
		draft.Description, err = cmd.Flags().GetString("description")
		if err != nil {
			return draft, err
		}
	}

	if !draft.IsComplete() {
		return draft, fmt.Errorf("draft needs both a title and a description")
	}
	return draft, nil
}
