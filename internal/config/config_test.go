package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("CREDITRAG_TEST_DIR", "/data")

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "~", want: home},
		{in: "~/reports", want: filepath.Join(home, "reports")},
		{in: "$CREDITRAG_TEST_DIR/db", want: "/data/db"},
		{in: "/abs/path", want: "/abs/path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestXDGDirectories(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/share")

	assert.Equal(t, "/cfg/creditrag", ConfigDir())
	assert.Equal(t, "/share/creditrag/creditrag.db", DefaultDatabasePath())
}

func TestLoadInstructions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompts.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[instructions]
delinquent_late = "Explain each late payment"
"Public Record" = ""
`), 0o600))

	got, err := LoadInstructions(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"delinquent_late": "Explain each late payment",
		"Public Record":   "",
	}, got)

	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	got, err = LoadInstructions(empty)
	require.NoError(t, err)
	assert.Empty(t, got)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[instructions\n"), 0o600))
	_, err = LoadInstructions(bad)
	assert.Error(t, err)

	_, err = LoadInstructions(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "from-env")
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "openai-env")

	assert.Equal(t, "explicit", APIKey("anthropic", "explicit"))
	assert.Equal(t, "from-env", APIKey("Anthropic", ""))
	assert.Equal(t, "openai-env", APIKey("azure", ""))
	assert.Empty(t, APIKey("ollama", ""))
}
