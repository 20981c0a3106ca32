// Package cmd provides the command-line interface for storyforge.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storyforge",
	Short: "Storyforge drafts and submits Jira tickets and GitHub issues",
	Long: `Storyforge turns short task descriptions into well-formed ticket drafts,
reviews them against story-writing criteria, and submits them to Jira
and GitHub through a local credential-injecting relay.

Typical flow:

  storyforge serve                              start the relay
  storyforge generate --task "..." --review     draft a ticket and score it
  storyforge submit --draft draft.md --jira     publish it`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(doctorCmd)
}
