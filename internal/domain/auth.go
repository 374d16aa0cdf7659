package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
)

// Credentials stores authentication information for a remote service.
// Supports basic authentication (username/password) and bearer tokens.
type Credentials struct {
	Type     AuthType // BasicAuth or TokenAuth
	Username string   // Used for basic auth
	Password string   // Used for basic auth
	Token    string   // Used for token auth
}

// CredentialStore holds the credentials for each configured service and
// hands out HTTP clients that attach the matching Authorization header.
// Credentials are loaded once at process start and never change.
type CredentialStore struct {
	credentials map[string]*Credentials
}

// NewCredentialStore creates a credential store from explicit credentials,
// keyed by service name ("jira", "bitbucket").
func NewCredentialStore(credentials map[string]*Credentials) *CredentialStore {
	return &CredentialStore{
		credentials: credentials,
	}
}

// NewCredentialStoreFromConfig extracts credentials from the configuration
// for each configured service.
func NewCredentialStoreFromConfig(config *Config) *CredentialStore {
	credentials := make(map[string]*Credentials)

	if config.Services.Jira != nil {
		credentials["jira"] = credentialsFromAuthConfig(&config.Services.Jira.Auth)
	}

	if config.Services.Bitbucket != nil {
		credentials["bitbucket"] = credentialsFromAuthConfig(&config.Services.Bitbucket.Auth)
	}

	return NewCredentialStore(credentials)
}

// credentialsFromAuthConfig converts an AuthConfig to Credentials.
func credentialsFromAuthConfig(authConfig *AuthConfig) *Credentials {
	return &Credentials{
		Type:     ParseAuthType(authConfig.Type),
		Username: authConfig.Username,
		Password: authConfig.Password,
		Token:    authConfig.Token,
	}
}

// Client returns an HTTP client that authenticates every request for the
// given service. Returns an error if the service has no valid credentials.
func (cs *CredentialStore) Client(service string) (*http.Client, error) {
	if err := cs.ValidateCredentials(service); err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: &authenticatedTransport{
			base:        http.DefaultTransport,
			credentials: cs.credentials[service],
		},
	}, nil
}

// ValidateCredentials checks if credentials are properly configured for a service.
// Returns an error if the service is not configured or if credentials are
// missing or incomplete.
func (cs *CredentialStore) ValidateCredentials(service string) error {
	creds, ok := cs.credentials[service]
	if !ok {
		return fmt.Errorf("no credentials configured for service: %s", service)
	}

	switch creds.Type {
	case BasicAuth:
		if creds.Username == "" {
			return fmt.Errorf("username is required for basic authentication: %s", service)
		}
		if creds.Password == "" {
			return fmt.Errorf("password is required for basic authentication: %s", service)
		}
	case TokenAuth:
		if creds.Token == "" {
			return fmt.Errorf("token is required for token authentication: %s", service)
		}
	default:
		return fmt.Errorf("invalid authentication type for service: %s", service)
	}

	return nil
}

// authenticatedTransport is an http.RoundTripper that adds an Authorization
// header to every outbound request.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials *Credentials
}

// RoundTrip implements http.RoundTripper.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())

	switch t.credentials.Type {
	case BasicAuth:
		auth := t.credentials.Username + ":" + t.credentials.Password
		encodedAuth := base64.StdEncoding.EncodeToString([]byte(auth))
		clonedReq.Header.Set("Authorization", "Basic "+encodedAuth)
	case TokenAuth:
		clonedReq.Header.Set("Authorization", "Bearer "+t.credentials.Token)
	}

	return t.base.RoundTrip(clonedReq)
}
