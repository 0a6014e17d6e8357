package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"slices"
)

// OAuthClientPathEnv names a client file to use instead of searching for oauthClient[.<env>].json
const OAuthClientPathEnv = "ROSTER_OAUTH_CLIENT"

// OAuthClientConfig is the client JSON downloaded from the Google Cloud console.
// Desktop clients are stored under "installed" and web clients under "web"; exactly one is set.
type OAuthClientConfig struct {
	Installed *OAuthClient `json:"installed,omitempty" validate:"required_without=Web,excluded_with=Web"`
	Web       *OAuthClient `json:"web,omitempty" validate:"required_without=Installed"`
}

// OAuthClient holds the credentials of one client
type OAuthClient struct {
	ClientID                string   `json:"client_id" validate:"required"`
	ProjectID               string   `json:"project_id" validate:"required"`
	AuthURI                 string   `json:"auth_uri" validate:"required,url"`
	TokenURI                string   `json:"token_uri" validate:"required,url"`
	AuthProviderX509CertURL string   `json:"auth_provider_x509_cert_url,omitempty" validate:"omitempty,url"`
	ClientSecret            string   `json:"client_secret" validate:"required"`
	RedirectURIs            []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
}

// Client returns the credentials of whichever client type the file holds
func (c *OAuthClientConfig) Client() *OAuthClient {
	if c.Installed != nil {
		return c.Installed
	}
	return c.Web
}

// CheckRedirect reports whether the roster's local callback can receive the authorization code.
// Google accepts any loopback port for desktop clients, so they only need a registered
// localhost redirect. Web clients must register the callback URL exactly.
func (c *OAuthClientConfig) CheckRedirect(callbackURL string) error {
	client := c.Client()
	if client == nil {
		return fmt.Errorf("oauth client file has neither an installed nor a web client")
	}

	if c.Web != nil {
		if slices.Contains(client.RedirectURIs, callbackURL) {
			return nil
		}
		return fmt.Errorf("web oauth client %s must list %s in its redirect URIs", client.ClientID, callbackURL)
	}

	for _, uri := range client.RedirectURIs {
		if u, err := url.Parse(uri); err == nil && u.Scheme == "http" && isLoopback(u.Hostname()) {
			return nil
		}
	}
	return fmt.Errorf("desktop oauth client %s has no localhost redirect URI", client.ClientID)
}

func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// LoadOAuthClientWithEnv loads the OAuth client file of an environment.
// ROSTER_OAUTH_CLIENT wins when set. Otherwise env="test" looks for
// "oauthClient.test.json" in the same places as the config file.
func LoadOAuthClientWithEnv(envName string) (*OAuthClientConfig, error) {
	if path := os.Getenv(OAuthClientPathEnv); path != "" {
		return LoadOAuthClientFromPath(path)
	}

	oauthPath, err := findFile(oauthFileName(envName))
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client file (or set %s): %w", OAuthClientPathEnv, err)
	}

	return LoadOAuthClientFromPath(oauthPath)
}

// LoadOAuthClientFromPath loads and validates the OAuth client configuration from a specific path
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth client file: %w", err)
	}

	var oauthCfg OAuthClientConfig
	if err := json.Unmarshal(data, &oauthCfg); err != nil {
		return nil, fmt.Errorf("failed to parse oauth client file %s: %w", path, err)
	}

	if err := ValidateOAuthClient(&oauthCfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &oauthCfg, nil
}

// ValidateOAuthClient validates the OAuth client configuration
func ValidateOAuthClient(cfg *OAuthClientConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("oauth client validation failed: %w", err)
	}
	return nil
}

func oauthFileName(envName string) string {
	if envName == "" {
		return "oauthClient.json"
	}
	return "oauthClient." + envName + ".json"
}
