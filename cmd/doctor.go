package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/config"
	"github.com/storyforge/storyforge/internal/github"
	"github.com/storyforge/storyforge/internal/jira"
)

// doctorCmd verifies configuration and credentials before first use.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and credentials",
	Long: `Check that the configured endpoints and tokens work before drafting
or submitting anything.

Checks run independently; a missing token skips its check rather than
failing the whole run. Tokens are read from JIRA_TOKEN and
GITHUB_TOKEN or the corresponding flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		failed := false

		if err := config.ValidateModelConfig(cfg); err != nil {
			fmt.Printf("✗ model configuration: %v\n", err)
			failed = true
		} else {
			fmt.Printf("✓ model configuration: %s (%s)\n", cfg.Model.Endpoint, cfg.Model.Deployment)
		}

		if !checkJira(cmd, cfg) {
			failed = true
		}
		if !checkGitHub(cmd, cfg) {
			failed = true
		}

		if failed {
			return fmt.Errorf("one or more checks failed")
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().String("jira-token", "", "Jira bearer token (defaults to JIRA_TOKEN)")
	doctorCmd.Flags().StringP("project", "p", "", "Jira project key to verify")
	doctorCmd.Flags().String("github-token", "", "GitHub access token (defaults to GITHUB_TOKEN)")
}

func checkJira(cmd *cobra.Command, cfg *config.Config) bool {
	token, err := cmd.Flags().GetString("jira-token")
	if err != nil {
		return false
	}
	if token == "" {
		token = os.Getenv("JIRA_TOKEN")
	}
	if token == "" {
		fmt.Println("- jira: skipped (no JIRA_TOKEN)")
		return true
	}

	if err := config.ValidateJiraConfig(cfg); err != nil {
		fmt.Printf("✗ jira configuration: %v\n", err)
		return false
	}

	client, err := jira.NewClient(cfg.Jira.BaseURL, token)
	if err != nil {
		fmt.Printf("✗ jira client: %v\n", err)
		return false
	}

	account, err := client.VerifyCredentials()
	if err != nil {
		fmt.Printf("✗ jira credentials: %v\n", err)
		return false
	}
	fmt.Printf("✓ jira credentials: authenticated as %s\n", account)

	projectKey, err := cmd.Flags().GetString("project")
	if err != nil || projectKey == "" {
		return true
	}
	name, err := client.CheckProject(projectKey)
	if err != nil {
		fmt.Printf("✗ jira project %s: %v\n", projectKey, err)
		return false
	}
	fmt.Printf("✓ jira project %s: %s\n", projectKey, name)
	return true
}

func checkGitHub(cmd *cobra.Command, cfg *config.Config) bool {
	token, err := cmd.Flags().GetString("github-token")
	if err != nil {
		return false
	}
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		fmt.Println("- github: skipped (no GITHUB_TOKEN)")
		return true
	}

	client, err := github.NewClient(token, cfg.GitHub.APIBaseURL)
	if err != nil {
		fmt.Printf("✗ github client: %v\n", err)
		return false
	}

	login, err := client.VerifyToken(cmd.Context())
	if err != nil {
		fmt.Printf("✗ github token: %v\n", err)
		return false
	}
	fmt.Printf("✓ github token: authenticated as %s\n", login)
	return true
}
