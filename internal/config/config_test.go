package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "file values",
			body: `
api:
  base_url: http://localhost:9000/api
  timeout: 5s
  log_requests: true
server:
  port: 9000
telemetry:
  traces_enabled: true
  trace_sample_ratio: 0.5
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://localhost:9000/api/", cfg.API.BaseURL)
				assert.Equal(t, 5*time.Second, cfg.API.Timeout)
				assert.True(t, cfg.API.LogRequests)
				assert.Equal(t, ":9000", cfg.Server.Address())
				assert.True(t, cfg.Telemetry.TracesEnabled)
				assert.InDelta(t, 0.5, cfg.Telemetry.TraceSampleRatio, 1e-9)
				assert.Equal(t, "/metrics", cfg.Telemetry.MetricsPath)
			},
		},
		{
			name: "env overrides file",
			body: "api:\n  base_url: http://file/api/\n",
			env: map[string]string{
				"SALESITEMS_API_URL":  "http://env/api",
				"FIREBASE_API_KEY":    "key-1",
				"FIREBASE_PROJECT_ID": "proj-1",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "http://env/api/", cfg.API.BaseURL)
				assert.Equal(t, "key-1", cfg.Auth.APIKey)
				assert.Equal(t, "proj-1", cfg.Auth.ProjectID)
			},
		},
		{
			name: "normalizes bad values",
			body: `
api:
  base_url: "  "
  timeout: -1s
server:
  port: 0
telemetry:
  trace_sample_ratio: 3
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultAPIURL, cfg.API.BaseURL)
				assert.Zero(t, cfg.API.Timeout)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.InDelta(t, 1.0, cfg.Telemetry.TraceSampleRatio, 1e-9)
			},
		},
		{
			name:    "malformed yaml",
			body:    "api: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", writeConfig(t, tt.body))
			for _, key := range []string{"SALESITEMS_API_URL", "FIREBASE_API_KEY", "FIREBASE_PROJECT_ID", "FIREBASE_AUTH_EMULATOR_HOST"} {
				t.Setenv(key, tt.env[key])
			}

			cfg, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Run("explicit path must exist", func(t *testing.T) {
		t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("default path falls back to defaults", func(t *testing.T) {
		cfg, err := loadFile(filepath.Join(t.TempDir(), "config.yaml"), false)
		require.NoError(t, err)
		assert.Equal(t, DefaultAPIURL, cfg.API.BaseURL)
		assert.False(t, cfg.Telemetry.TracesEnabled)
		assert.True(t, cfg.Telemetry.MetricsEnabled)
	})
}

func TestAPIURLFlag(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:8080/api", want: "http://localhost:8080/api/"},
		{in: "https://example.com/api/", want: "https://example.com/api/"},
		{in: "localhost:8080", wantErr: true},
		{in: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var u APIURL
			err := u.Set(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())

			api := APIConfig{BaseURL: DefaultAPIURL}
			api.Override(&u)
			assert.Equal(t, tt.want, api.BaseURL)
		})
	}
}

func TestParseServerFlags(t *testing.T) {
	cfg := ServerConfig{Port: 8080}
	require.NoError(t, ParseServerFlags(&cfg, []string{"-a", "127.0.0.1:9090"}))
	assert.Equal(t, "127.0.0.1:9090", cfg.Address())

	assert.Error(t, ParseServerFlags(&cfg, []string{"-a", "host:port"}))
}

func TestNetAddressSet(t *testing.T) {
	tests := []struct {
		in       string
		wantHost string
		wantPort int
		wantStr  string
		wantErr  bool
	}{
		{in: "localhost:9000", wantHost: "localhost", wantPort: 9000, wantStr: "localhost:9000"},
		{in: "localhost", wantHost: "localhost", wantPort: 8080, wantStr: "localhost:8080"},
		{in: ":7000", wantHost: "", wantPort: 7000, wantStr: ":7000"},
		{in: "[::1]:8081", wantHost: "::1", wantPort: 8081, wantStr: "[::1]:8081"},
		{in: "[::1]", wantHost: "::1", wantPort: 8080, wantStr: "[::1]:8080"},
		{in: "host:port", wantErr: true},
		{in: "::1:80:90", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var a NetAddress
			err := a.Set(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, a.Host)
			assert.Equal(t, tt.wantPort, a.Port)
			assert.Equal(t, tt.wantStr, a.String())

			srv := ServerConfig{Host: a.Host, Port: a.Port}
			assert.Equal(t, tt.wantStr, srv.Address())
		})
	}
}
