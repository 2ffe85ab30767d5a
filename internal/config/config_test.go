package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Resolve reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range append([]string{ModelEnvVar, PromptEnvVar}, APIKeyEnvVars...) {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func noEnvFile(t *testing.T) []string {
	return []string{writeFile(t, "empty.env", "")}
}

func TestResolveFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	s, err := Resolve(Options{EnvFiles: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "gem-key", s.APIKey)
	assert.Equal(t, "env:GEMINI_API_KEY", s.KeySource)
	assert.Empty(t, s.Model)
	assert.Empty(t, s.Prompt)
}

func TestResolveEnvPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GEMCHECK_API_KEY", "own-key")

	s, err := Resolve(Options{EnvFiles: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "own-key", s.APIKey)

	t.Setenv("GEMCHECK_API_KEY", "")
	s, err = Resolve(Options{EnvFiles: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "gem-key", s.APIKey)
}

func TestResolveMissingKey(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(Options{EnvFiles: noEnvFile(t)})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestResolveWhitespaceKeyIsMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "   \t")

	_, err := Resolve(Options{EnvFiles: noEnvFile(t)})
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestResolveDotEnvDoesNotOverrideEnv(t *testing.T) {
	clearEnv(t)
	envFile := writeFile(t, "test.env", "GEMCHECK_API_KEY=from-dotenv\nGEMCHECK_MODEL=models/gemini-1.5-flash\n")

	s, err := Resolve(Options{EnvFiles: []string{envFile}})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", s.APIKey)
	assert.Equal(t, "models/gemini-1.5-flash", s.Model)

	clearEnv(t)
	t.Setenv("GEMCHECK_API_KEY", "real-env")
	s, err = Resolve(Options{EnvFiles: []string{envFile}})
	require.NoError(t, err)
	assert.Equal(t, "real-env", s.APIKey)
}

func TestResolveMissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Resolve(Options{EnvFiles: []string{filepath.Join(t.TempDir(), "nope.env")}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissingAPIKey)
}

func TestResolveJSONConfig(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "gemcheck.json", `{"api_key":"file-key","model":"models/gemini-2.5-flash-lite","prompt":"Hello"}`)

	s, err := Resolve(Options{ConfigPath: path, EnvFiles: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "file-key", s.APIKey)
	assert.Equal(t, "config:"+path, s.KeySource)
	assert.Equal(t, "models/gemini-2.5-flash-lite", s.Model)
	assert.Equal(t, "Hello", s.Prompt)
}

func TestResolveYAMLConfigWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "gemcheck.yaml", "api_key: file-key\nmodel: models/gemini-2.0-flash\nprompt: Hi there\n")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv(PromptEnvVar, "Override")

	s, err := Resolve(Options{ConfigPath: path, EnvFiles: noEnvFile(t)})
	require.NoError(t, err)
	assert.Equal(t, "env-key", s.APIKey)
	assert.Equal(t, "models/gemini-2.0-flash", s.Model)
	assert.Equal(t, "Override", s.Prompt)
}

func TestResolveBadConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")

	_, err := Resolve(Options{ConfigPath: writeFile(t, "bad.json", "{"), EnvFiles: noEnvFile(t)})
	assert.Error(t, err)

	_, err = Resolve(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"), EnvFiles: noEnvFile(t)})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolveCustomGetenv(t *testing.T) {
	clearEnv(t)
	env := map[string]string{"GOOGLE_API_KEY": "injected", ModelEnvVar: "models/x"}

	s, err := Resolve(Options{
		EnvFiles: noEnvFile(t),
		Getenv:   func(k string) string { return env[k] },
	})
	require.NoError(t, err)
	assert.Equal(t, "injected", s.APIKey)
	assert.Equal(t, "models/x", s.Model)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".gemcheck.yaml"), expandHome("~/.gemcheck.yaml"))
	assert.Equal(t, "/etc/gemcheck.json", expandHome("/etc/gemcheck.json"))
}
