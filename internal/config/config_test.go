package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every override for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{EnvConfigPath, EnvDomain, EnvUsername, EnvPassword, EnvClientID, EnvClientSecret, EnvTenancy} {
		t.Setenv(env, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "https", cfg.API.Scheme)
	assert.True(t, cfg.API.VerifySSL)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "PCAP_SDI", cfg.Provisioning.EnvironmentPrefix)
	assert.Equal(t, "e1000", cfg.Provisioning.NICModel)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadFromPath(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `
api:
  domain: sdi.example.com/
  version: "1.2"
  verify_ssl: false
  timeout: 45s
credentials:
  username: alice
  password: hunter2
  client_id: cid
  client_secret: csecret
  tenancy: lab
metrics:
  textfile: /tmp/netcompiler.prom
`)

	cfg, got, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	assert.Equal(t, "sdi.example.com", cfg.API.Domain)
	assert.Equal(t, "https", cfg.API.Scheme)
	assert.Equal(t, "1.2", cfg.API.Version)
	assert.False(t, cfg.API.VerifySSL)
	require.NotNil(t, cfg.API.Timeout)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout.Duration())
	assert.Equal(t, "lab", cfg.Credentials.Tenancy)
	assert.Equal(t, "/tmp/netcompiler.prom", cfg.Metrics.Textfile)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPathErrors(t *testing.T) {
	clearEnv(t)

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, _, err := LoadFromPath(writeConfig(t, "api: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, _, err := LoadFromPath(writeConfig(t, "api:\n  timeout: soon\n"))
		assert.Error(t, err)
	})
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPassword, "from-env")
	t.Setenv(EnvDomain, "env.example.com")

	cfg, _, err := LoadFromPath(writeConfig(t, "credentials:\n  password: from-file\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Credentials.Password)
	assert.Equal(t, "env.example.com", cfg.API.Domain)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.domain")
	assert.Contains(t, err.Error(), "credentials.client_secret")

	cfg.API.Domain = "sdi.example.com"
	cfg.Credentials = Credentials{Username: "u", Password: "p", ClientID: "c", ClientSecret: "s"}
	assert.NoError(t, cfg.Validate())

	cfg.API.Scheme = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestFindConfigPath(t *testing.T) {
	clearEnv(t)

	t.Run("explicit env path", func(t *testing.T) {
		path := writeConfig(t, "version: 1\n")
		t.Setenv(EnvConfigPath, path)
		assert.Equal(t, path, FindConfigPath())
	})

	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		xdg := t.TempDir()
		dir := filepath.Join(xdg, ConfigDirName)
		require.NoError(t, os.MkdirAll(dir, 0755))
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0600))

		t.Setenv("XDG_CONFIG_HOME", xdg)
		t.Chdir(t.TempDir())
		assert.Equal(t, path, FindConfigPath())
	})

	t.Run("directories are skipped", func(t *testing.T) {
		t.Setenv(EnvConfigPath, t.TempDir())
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Setenv("HOME", t.TempDir())
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ConfigFileName), 0755))
		t.Chdir(dir)
		assert.Empty(t, FindConfigPath())
	})
}

func TestDurationYAML(t *testing.T) {
	d := Duration(90 * time.Second)
	out, err := d.MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", out)
}
