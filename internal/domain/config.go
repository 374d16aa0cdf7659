package domain

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultBitbucketBaseURL is the Bitbucket Cloud API host used when no
// base URL is configured explicitly.
const DefaultBitbucketBaseURL = "https://api.bitbucket.org"

// Config is the root server configuration. Values come from an optional
// YAML file and from environment variables; the environment wins.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Services ServicesConfig `yaml:"services"`
}

// ServerConfig holds the identity reported during the MCP handshake.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ServicesConfig defines the remote service configurations.
// Each service is optional - only configured services expose tools.
type ServicesConfig struct {
	Jira      *ServiceConfig `yaml:"jira,omitempty"`
	Bitbucket *ServiceConfig `yaml:"bitbucket,omitempty"`
}

// ServiceConfig defines the endpoint and credentials for one remote service.
type ServiceConfig struct {
	BaseURL string     `yaml:"base_url"`
	Auth    AuthConfig `yaml:"auth"`
}

// AuthConfig defines authentication settings.
// Supports basic authentication (JIRA email + API token, Bitbucket
// username + app password) and bearer token authentication.
type AuthConfig struct {
	Type     string `yaml:"type"` // "basic" or "token"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

// AuthType defines supported authentication methods.
type AuthType int

const (
	// BasicAuth uses username and password authentication
	BasicAuth AuthType = iota
	// TokenAuth uses bearer token authentication
	TokenAuth
)

// String returns the string representation of AuthType.
func (a AuthType) String() string {
	switch a {
	case BasicAuth:
		return "basic"
	case TokenAuth:
		return "token"
	default:
		return "unknown"
	}
}

// ParseAuthType converts a string to AuthType.
func ParseAuthType(s string) AuthType {
	switch s {
	case "basic":
		return BasicAuth
	case "token":
		return TokenAuth
	default:
		return BasicAuth
	}
}

// envConfig mirrors the environment variables of the original deployment.
type envConfig struct {
	JiraURL              string `env:"JIRA_URL"`
	JiraEmail            string `env:"JIRA_EMAIL"`
	JiraAPIToken         string `env:"JIRA_API_TOKEN"`
	BitbucketURL         string `env:"BITBUCKET_URL"`
	BitbucketUsername    string `env:"BITBUCKET_USERNAME"`
	BitbucketAppPassword string `env:"BITBUCKET_APP_PASSWORD"`
}

// LoadConfig builds the server configuration from an optional YAML file and
// the process environment. An empty path means environment-only operation.
// Returns an error if the file is missing, has invalid syntax, or if the
// merged configuration fails validation.
func LoadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("configuration file not found: %s", path)
			}
			return nil, fmt.Errorf("failed to read configuration file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("invalid YAML syntax in configuration file: %w", err)
		}
	}

	if err := config.applyEnvironment(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// applyEnvironment overlays environment variables onto the configuration.
// Environment values take precedence over file values.
func (c *Config) applyEnvironment() error {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	// JIRA Cloud authenticates with email + API token over basic auth.
	if ec.JiraURL != "" || ec.JiraEmail != "" || ec.JiraAPIToken != "" {
		if c.Services.Jira == nil {
			c.Services.Jira = &ServiceConfig{}
		}
		if ec.JiraURL != "" {
			c.Services.Jira.BaseURL = strings.TrimRight(ec.JiraURL, "/")
		}
		if ec.JiraEmail != "" || ec.JiraAPIToken != "" {
			c.Services.Jira.Auth = AuthConfig{
				Type:     "basic",
				Username: ec.JiraEmail,
				Password: ec.JiraAPIToken,
			}
		}
	}

	// Bitbucket Cloud authenticates with username + app password.
	if ec.BitbucketURL != "" || ec.BitbucketUsername != "" || ec.BitbucketAppPassword != "" {
		if c.Services.Bitbucket == nil {
			c.Services.Bitbucket = &ServiceConfig{}
		}
		if ec.BitbucketURL != "" {
			c.Services.Bitbucket.BaseURL = strings.TrimRight(ec.BitbucketURL, "/")
		}
		if ec.BitbucketUsername != "" || ec.BitbucketAppPassword != "" {
			c.Services.Bitbucket.Auth = AuthConfig{
				Type:     "basic",
				Username: ec.BitbucketUsername,
				Password: ec.BitbucketAppPassword,
			}
		}
	}

	if c.Services.Bitbucket != nil && c.Services.Bitbucket.BaseURL == "" {
		c.Services.Bitbucket.BaseURL = DefaultBitbucketBaseURL
	}

	if c.Server.Name == "" {
		c.Server.Name = "jira-bitbucket-mcp-server"
	}
	if c.Server.Version == "" {
		c.Server.Version = "1.0.0"
	}

	return nil
}

// Validate checks the configuration for completeness and correctness.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errors []string

	if c.Services.Jira != nil {
		if err := c.Services.Jira.Validate("JIRA"); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if c.Services.Bitbucket != nil {
		if err := c.Services.Bitbucket.Validate("Bitbucket"); err != nil {
			errors = append(errors, err.Error())
		}
	}

	if c.Services.Jira == nil && c.Services.Bitbucket == nil {
		errors = append(errors, "at least one service (JIRA or Bitbucket) must be configured")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate validates a single service configuration.
func (sc *ServiceConfig) Validate(serviceName string) error {
	var errors []string

	if sc.BaseURL == "" {
		errors = append(errors, fmt.Sprintf("%s base_url is required", serviceName))
	} else {
		parsedURL, err := url.Parse(sc.BaseURL)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s base_url is invalid: %v", serviceName, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("%s base_url must use http or https scheme", serviceName))
		} else if parsedURL.Host == "" {
			errors = append(errors, fmt.Sprintf("%s base_url must include a host", serviceName))
		}
	}

	if err := sc.Auth.Validate(serviceName); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}

// Validate validates authentication configuration.
func (ac *AuthConfig) Validate(serviceName string) error {
	var errors []string

	if ac.Type == "" {
		errors = append(errors, fmt.Sprintf("%s auth type is required", serviceName))
	} else if ac.Type != "basic" && ac.Type != "token" {
		errors = append(errors, fmt.Sprintf("%s auth type '%s' is invalid: must be 'basic' or 'token'", serviceName, ac.Type))
	}

	if ac.Type == "basic" {
		if ac.Username == "" {
			errors = append(errors, fmt.Sprintf("%s username is required for basic auth", serviceName))
		}
		if ac.Password == "" {
			errors = append(errors, fmt.Sprintf("%s password is required for basic auth", serviceName))
		}
	} else if ac.Type == "token" {
		if ac.Token == "" {
			errors = append(errors, fmt.Sprintf("%s token is required for token auth", serviceName))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}

	return nil
}
