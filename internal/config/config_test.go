package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/labtrend-cli/internal/ai"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, c.NarrativeTimeoutSec)
	assert.Equal(t, 3000, c.ExcerptMaxChars)
	assert.Equal(t, 4, c.BatchConcurrency)
	assert.Equal(t, "info", c.LogLevel)

	n := c.Narrative()
	assert.False(t, n.Enabled)
	assert.Contains(t, n.DisabledReason, "no narrative_provider")
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := &Global{NarrativeProvider: "ollama", NarrativeModel: "llama3", NarrativeTimeoutSec: 5, ExcerptMaxChars: 100, OllamaHost: "http://box:11434"}
	require.NoError(t, Save(in, path))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", out.NarrativeProvider)
	assert.Equal(t, "http://box:11434", out.OllamaHost)

	n := out.Narrative()
	require.True(t, n.Enabled, n.DisabledReason)
	assert.Equal(t, 5*time.Second, n.Timeout)
	assert.Equal(t, "http://box:11434", n.Runtime.Host)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("narrative_provider: openrouter\n"), 0o600))
	t.Setenv("LABTREND_NARRATIVE_API_KEY", "sk-test")
	t.Setenv("LABTREND_NARRATIVE_PROVIDER", "gemini")

	c, err := Load(path)
	require.NoError(t, err)
	n := c.Narrative()
	require.True(t, n.Enabled, n.DisabledReason)
	assert.Equal(t, ai.ProviderGemini, n.Provider)
	assert.Equal(t, "sk-test", n.Runtime.APIKey)
	assert.Equal(t, ai.DefaultModel(ai.ProviderGemini), n.Model)
}

func TestNarrativeDisabledReasons(t *testing.T) {
	cases := map[string]Global{
		"needs narrative_api_key": {NarrativeProvider: "openrouter"},
		"unknown":                 {NarrativeProvider: "acme"},
	}
	for want, g := range cases {
		n := g.Narrative()
		assert.False(t, n.Enabled)
		assert.Contains(t, n.DisabledReason, want)
	}
	ollama := Global{NarrativeProvider: " Ollama "}
	assert.True(t, ollama.Narrative().Enabled)
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("narrative_provider: [unclosed\n"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFileIgnoresEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ollama_host: http://file:11434\n"), 0o600))
	t.Setenv("LABTREND_OLLAMA_HOST", "http://env:11434")
	t.Setenv("LABTREND_HTTP_TIMEOUT_SEC", "7")

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://file:11434", c.OllamaHost)
	assert.Equal(t, 60, c.HTTPTimeoutSec)

	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:11434", c.OllamaHost)
	assert.Equal(t, 7, c.HTTPTimeoutSec)
}
