package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/config"
	"github.com/storyforge/storyforge/internal/relay"
	"github.com/storyforge/storyforge/internal/submit"
)

// submitCmd publishes a draft to Jira and/or GitHub via the relay.
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a draft to Jira and/or GitHub through the relay",
	Long: `Submit a finished draft to the selected platforms through a running
relay (see 'storyforge serve').

Each platform is submitted independently; one failing does not stop
the other. Tokens are read from flags or the JIRA_TOKEN and
GITHUB_TOKEN environment variables and are sent only to the relay.

Examples:
  storyforge submit --draft draft.md --jira --project ABC --type Story
  storyforge submit --title "..." --description "..." --github --repository acme/widgets`,
	RunE: func(cmd *cobra.Command, args []string) error {
		draft, err := draftFromFlags(cmd)
		if err != nil {
			return err
		}

		opts, err := submitOptionsFromFlags(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		orchestrator := submit.NewOrchestrator(relay.NewClient(cfg.Relay.URL), cfg.Jira.BaseURL)
		result, err := orchestrator.Submit(cmd.Context(), draft, opts)
		if err != nil {
			return err
		}

		for _, r := range result.Results {
			fmt.Println(r.Message)
		}
		if !result.AllSucceeded() {
			return fmt.Errorf("one or more submissions failed")
		}
		return nil
	},
}

func init() {
	submitCmd.Flags().String("draft", "", "Path to a draft file written by 'generate --out'")
	submitCmd.Flags().String("title", "", "Draft title")
	submitCmd.Flags().String("description", "", "Draft description")

	submitCmd.Flags().Bool("jira", false, "Create a Jira ticket")
	submitCmd.Flags().StringP("project", "p", "", "Jira project key")
	submitCmd.Flags().String("type", "Story", "Jira issue type")
	submitCmd.Flags().String("jira-token", "", "Jira bearer token (defaults to JIRA_TOKEN)")

	submitCmd.Flags().Bool("github", false, "Create a GitHub issue")
	submitCmd.Flags().StringP("repository", "r", "", "GitHub repository name (e.g., 'username/repo')")
	submitCmd.Flags().String("github-token", "", "GitHub access token (defaults to GITHUB_TOKEN)")

	submitCmd.Flags().StringP("label", "l", "", "Label applied on both platforms (default JiraAI)")
}

func submitOptionsFromFlags(cmd *cobra.Command) (submit.Options, error) {
	var opts submit.Options
	var err error

	if opts.Jira, err = cmd.Flags().GetBool("jira"); err != nil {
		return opts, err
	}
	if opts.GitHub, err = cmd.Flags().GetBool("github"); err != nil {
		return opts, err
	}
	if opts.Project, err = cmd.Flags().GetString("project"); err != nil {
		return opts, err
	}
	if opts.IssueType, err = cmd.Flags().GetString("type"); err != nil {
		return opts, err
	}
	if opts.Repository, err = cmd.Flags().GetString("repository"); err != nil {
		return opts, err
	}
	if opts.Label, err = cmd.Flags().GetString("label"); err != nil {
		return opts, err
	}

	if opts.JiraToken, err = cmd.Flags().GetString("jira-token"); err != nil {
		return opts, err
	}
	if opts.JiraToken == "" {
		opts.JiraToken = os.Getenv("JIRA_TOKEN")
	}

	if opts.GitHubToken, err = cmd.Flags().GetString("github-token"); err != nil {
		return opts, err
	}
	if opts.GitHubToken == "" {
		opts.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}

	return opts, nil
}
