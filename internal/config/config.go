// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults for the model endpoint. These mirror the deployment this
// tool was first built against and are overridable through the
// environment.
const (
	DefaultRelayPort  = 4000
	DefaultAPIVersion = "2025-01-01-preview"
	DefaultDeployment = "gpt-4.1-mini"

	defaultGenerateMaxTokens = 600
	defaultReviewMaxTokens   = 800
	defaultReviewSeed        = 12345
)

// Config holds all configuration parameters for the application.
type Config struct {
	Relay  RelayConfig
	Jira   JiraConfig
	GitHub GitHubConfig
	Model  ModelConfig
}

// RelayConfig holds the relay server and client settings.
type RelayConfig struct {
	// Port the relay server listens on
	Port int

	// URL is the base URL the CLI uses to reach a running relay
	URL string
}

// JiraConfig holds Jira specific configuration.
type JiraConfig struct {
	// BaseURL of the Jira instance, e.g. "https://jira.example.com"
	BaseURL string
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	// APIBaseURL of the GitHub REST API. Overridable for GitHub
	// Enterprise or test servers; must end with a slash.
	APIBaseURL string
}

// ModelConfig holds the chat-completion endpoint settings. The draft
// generator and the quality reviewer share the endpoint but use
// different token budgets and sampling settings.
type ModelConfig struct {
	// Endpoint is the Azure OpenAI resource URL
	Endpoint string

	// Deployment is the model deployment name
	Deployment string

	// APIVersion is the query-string api-version value
	APIVersion string

	// GenerateMaxTokens caps the draft-generation completion
	GenerateMaxTokens int

	// ReviewMaxTokens caps the quality-assessment completion
	ReviewMaxTokens int

	// ReviewTemperature is the sampling temperature for assessments.
	// Zero so identical drafts score identically.
	ReviewTemperature float64

	// ReviewSeed fixes the sampling seed for assessments
	ReviewSeed int
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("relay.port", "RELAY_PORT")
	v.BindEnv("relay.url", "RELAY_URL")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("github.api.url", "GITHUB_API_URL")
	v.BindEnv("model.endpoint", "MODEL_ENDPOINT")
	v.BindEnv("model.deployment", "MODEL_DEPLOYMENT")
	v.BindEnv("model.api.version", "MODEL_API_VERSION")
	v.BindEnv("model.generate.max.tokens", "MODEL_GENERATE_MAX_TOKENS")
	v.BindEnv("model.review.max.tokens", "MODEL_REVIEW_MAX_TOKENS")
	v.BindEnv("model.review.seed", "MODEL_REVIEW_SEED")

	v.SetDefault("relay.port", DefaultRelayPort)
	v.SetDefault("relay.url", fmt.Sprintf("http://localhost:%d", DefaultRelayPort))
	v.SetDefault("github.api.url", "https://api.github.com/")
	v.SetDefault("model.deployment", DefaultDeployment)
	v.SetDefault("model.api.version", DefaultAPIVersion)
	v.SetDefault("model.generate.max.tokens", defaultGenerateMaxTokens)
	v.SetDefault("model.review.max.tokens", defaultReviewMaxTokens)
	v.SetDefault("model.review.seed", defaultReviewSeed)

	config := &Config{
		Relay: RelayConfig{
			Port: v.GetInt("relay.port"),
			URL:  strings.TrimRight(v.GetString("relay.url"), "/"),
		},
		Jira: JiraConfig{
			BaseURL: strings.TrimRight(v.GetString("jira.url"), "/"),
		},
		GitHub: GitHubConfig{
			APIBaseURL: v.GetString("github.api.url"),
		},
		Model: ModelConfig{
			Endpoint:          strings.TrimRight(v.GetString("model.endpoint"), "/"),
			Deployment:        v.GetString("model.deployment"),
			APIVersion:        v.GetString("model.api.version"),
			GenerateMaxTokens: v.GetInt("model.generate.max.tokens"),
			ReviewMaxTokens:   v.GetInt("model.review.max.tokens"),
			ReviewTemperature: 0,
			ReviewSeed:        v.GetInt("model.review.seed"),
		},
	}

	if !strings.HasSuffix(config.GitHub.APIBaseURL, "/") {
		config.GitHub.APIBaseURL += "/"
	}

	return config, nil
}

// ValidateJiraConfig ensures the settings required to reach Jira are present.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.BaseURL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateModelConfig ensures the settings required to call the
// chat-completion endpoint are present.
func ValidateModelConfig(config *Config) error {
	var missingVars []string

	if config.Model.Endpoint == "" {
		missingVars = append(missingVars, "MODEL_ENDPOINT")
	}
	if config.Model.Deployment == "" {
		missingVars = append(missingVars, "MODEL_DEPLOYMENT")
	}
	if config.Model.APIVersion == "" {
		missingVars = append(missingVars, "MODEL_API_VERSION")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}
