package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/config"
	"github.com/storyforge/storyforge/internal/llm"
	"github.com/storyforge/storyforge/internal/logging"
	"github.com/storyforge/storyforge/internal/quality"
	"github.com/storyforge/storyforge/internal/story"
	"github.com/storyforge/storyforge/pkg/models"
)

// generateCmd drafts a ticket from a short task description.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a ticket draft from a task description",
	Long: `Generate a structured ticket draft (title, description, acceptance
criteria) from a short task description using the configured model.

The model endpoint is read from MODEL_ENDPOINT, MODEL_DEPLOYMENT and
MODEL_API_VERSION; the API key comes from --api-key or MODEL_API_KEY.

Example:
  storyforge generate --task "Allow exporting reports as CSV" --review`,
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := cmd.Flags().GetString("task")
		if err != nil {
			return err
		}
		if task == "" {
			return fmt.Errorf("task flag is required")
		}

		review, err := cmd.Flags().GetBool("review")
		if err != nil {
			return err
		}

		out, err := cmd.Flags().GetString("out")
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

		generator := story.NewGenerator(completer, cfg.Model.GenerateMaxTokens)
		draft, err := generator.Generate(cmd.Context(), task)
		if err != nil {
			return fmt.Errorf("failed to generate draft: %v", err)
		}

		printDraft(draft)

		if out != "" {
			if err := os.WriteFile(out, []byte(formatDraft(draft)), 0o644); err != nil {
				return fmt.Errorf("failed to write draft to %s: %v", out, err)
			}
			logging.Info("draft written", "path", out)
		}

		if review {
			assessor := quality.NewAssessor(completer, quality.NewMemoryCache(), cfg.Model.ReviewMaxTokens, cfg.Model.ReviewSeed)
			assessment, err := assessor.Assess(cmd.Context(), draft)
			if err != nil {
				return fmt.Errorf("failed to review draft: %v", err)
			}
			printAssessment(assessment)
		}

		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("task", "t", "", "Short description of the work to draft a ticket for")
	generateCmd.Flags().String("api-key", "", "Model API key (defaults to MODEL_API_KEY)")
	generateCmd.Flags().Bool("review", false, "Score the draft against story-writing criteria after generating")
	generateCmd.Flags().StringP("out", "o", "", "Write the draft to a file usable by 'storyforge submit --draft'")
}

// newCompleter builds the model client from flags and environment.
func newCompleter(cmd *cobra.Command, cfg *config.Config) (llm.Completer, error) {
	apiKey, err := cmd.Flags().GetString("api-key")
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		apiKey = os.Getenv("MODEL_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("model api key is required (use --api-key or MODEL_API_KEY)")
	}

	if err := config.ValidateModelConfig(cfg); err != nil {
		return nil, err
	}

	logging.Debug("model client configured",
		"endpoint", cfg.Model.Endpoint,
		"deployment", cfg.Model.Deployment,
		"api_key", logging.MaskSensitive(apiKey))

	return llm.NewClient(cfg.Model, apiKey)
}

// formatDraft renders a draft in the same markdown shape the model
// produces, so files round-trip through story.ParseDraft.
func formatDraft(draft models.TicketDraft) string {
	return fmt.Sprintf("**Title:** %s\n\n**Description:**\n%s\n", draft.Title, draft.Description)
}

func printDraft(draft models.TicketDraft) {
	fmt.Printf("Title: %s\n\n%s\n", draft.Title, draft.Description)
}

func printAssessment(a models.QualityAssessment) {
	fmt.Printf("\nQuality review: %d/100 (%s)\n", a.OverallScore, a.Recommendation)
	for _, c := range a.Criteria {
		mark := "✗"
		if c.Passed {
			mark = "✓"
		}
		fmt.Printf("  %s %s: %s\n", mark, c.Name, c.Reason)
	}
	fmt.Printf("%d of %d criteria passed\n", a.PassedCount(), len(a.Criteria))
}
