package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storyforge/storyforge/internal/config"
	"github.com/storyforge/storyforge/internal/logging"
	"github.com/storyforge/storyforge/internal/relay"
)

// serveCmd starts the credential-injecting relay server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local relay server",
	Long: `Start the relay that forwards ticket submissions to Jira and GitHub.

The relay listens on RELAY_PORT (default 4000) and exposes:

  POST /api/jira/issue     forwards the body verbatim to Jira, adding
                           the bearer token from x-jira-auth-token
  POST /api/github/issue   pre-flight checks the repository, then
                           creates the issue with the token from
                           x-github-auth-token

Tokens arrive per request and are never stored or logged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}

		if err := config.ValidateJiraConfig(cfg); err != nil {
			logging.Warn("jira forwarding disabled until configured", "error", err)
		}

		server := relay.NewServer(cfg)
		return server.Run(cmd.Context())
	},
}
