package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOAuthClient() *OAuthClientConfig {
	return &OAuthClientConfig{
		Installed: &OAuthClient{
			ClientID:                "test-client-id.apps.googleusercontent.com",
			ProjectID:               "test-project",
			AuthURI:                 "https://accounts.google.com/o/oauth2/auth",
			TokenURI:                "https://oauth2.googleapis.com/token",
			AuthProviderX509CertURL: "https://www.googleapis.com/oauth2/v1/certs",
			ClientSecret:            "test-secret",
			RedirectURIs:            []string{"http://localhost", "urn:ietf:wg:oauth:2.0:oob"},
		},
	}
}

func TestValidateOAuthClient(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *OAuthClient)
		wantErr bool
	}{
		{name: "valid", mutate: func(in *OAuthClient) {}},
		{name: "missing client id", mutate: func(in *OAuthClient) { in.ClientID = "" }, wantErr: true},
		{name: "missing secret", mutate: func(in *OAuthClient) { in.ClientSecret = "" }, wantErr: true},
		{name: "invalid auth uri", mutate: func(in *OAuthClient) { in.AuthURI = "not-a-valid-url" }, wantErr: true},
		{name: "no redirect uris", mutate: func(in *OAuthClient) { in.RedirectURIs = nil }, wantErr: true},
		{name: "invalid redirect uri", mutate: func(in *OAuthClient) { in.RedirectURIs = []string{"not a valid uri"} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validOAuthClient()
			tt.mutate(cfg.Installed)

			err := ValidateOAuthClient(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "validation failed")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadOAuthClientFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oauthClient.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "installed": {
    "client_id": "test-client-id.apps.googleusercontent.com",
    "project_id": "test-project",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
    "client_secret": "test-secret",
    "redirect_uris": ["http://localhost"]
  }
}`), 0644))

	cfg, err := LoadOAuthClientFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "test-client-id.apps.googleusercontent.com", cfg.Installed.ClientID)
	assert.Equal(t, []string{"http://localhost"}, cfg.Installed.RedirectURIs)
}

func TestLoadOAuthClientFromPath_Errors(t *testing.T) {
	dir := t.TempDir()

	invalidJSON := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalidJSON, []byte(`{"installed": {"client_id": "test" "project_id": "x"}}`), 0644))
	_, err := LoadOAuthClientFromPath(invalidJSON)
	assert.ErrorContains(t, err, "failed to parse oauth client file")

	missingField := filepath.Join(dir, "missing.json")
	require.NoError(t, os.WriteFile(missingField, []byte(`{"installed": {"client_id": "test"}}`), 0644))
	_, err = LoadOAuthClientFromPath(missingField)
	assert.ErrorContains(t, err, "validation failed")

	_, err = LoadOAuthClientFromPath(filepath.Join(dir, "absent.json"))
	assert.ErrorContains(t, err, "failed to read oauth client file")
}

func TestValidateOAuthClient_ClientType(t *testing.T) {
	web := validOAuthClient()
	web.Web, web.Installed = web.Installed, nil
	assert.NoError(t, ValidateOAuthClient(web))
	assert.Same(t, web.Web, web.Client())

	both := validOAuthClient()
	both.Web = both.Installed
	assert.ErrorContains(t, ValidateOAuthClient(both), "validation failed")

	assert.ErrorContains(t, ValidateOAuthClient(&OAuthClientConfig{}), "validation failed")
}

func TestCheckRedirect(t *testing.T) {
	const callback = "http://localhost:3000/oauth/callback"

	desktop := validOAuthClient()
	assert.NoError(t, desktop.CheckRedirect(callback))

	desktop.Installed.RedirectURIs = []string{"http://127.0.0.1"}
	assert.NoError(t, desktop.CheckRedirect(callback))

	desktop.Installed.RedirectURIs = []string{"urn:ietf:wg:oauth:2.0:oob"}
	assert.ErrorContains(t, desktop.CheckRedirect(callback), "no localhost redirect URI")

	web := &OAuthClientConfig{Web: validOAuthClient().Installed}
	assert.ErrorContains(t, web.CheckRedirect(callback), "must list "+callback)

	web.Web.RedirectURIs = append(web.Web.RedirectURIs, callback)
	assert.NoError(t, web.CheckRedirect(callback))

	assert.Error(t, (&OAuthClientConfig{}).CheckRedirect(callback))
}

func TestLoadOAuthClientWithEnv_PathOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster-client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "web": {
    "client_id": "web-client",
    "project_id": "test-project",
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token",
    "client_secret": "test-secret",
    "redirect_uris": ["http://localhost:3000/oauth/callback"]
  }
}`), 0644))
	t.Setenv(OAuthClientPathEnv, path)

	cfg, err := LoadOAuthClientWithEnv("prod")
	require.NoError(t, err)
	assert.Nil(t, cfg.Installed)
	assert.Equal(t, "web-client", cfg.Client().ClientID)
}
