package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv_Precedence(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(".env", []byte("GW_A=base\nGW_B=base\nGW_C=base\n"), 0o600))
	require.NoError(t, os.WriteFile(".env.prod", []byte("GW_A=prod\nGW_B=prod\n"), 0o600))
	require.NoError(t, os.WriteFile(".env.local", []byte("GW_A=local\n"), 0o600))

	t.Setenv("GW_C", "os")
	for _, k := range []string{"GW_A", "GW_B"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	loaded := LoadDotEnv("prod")
	assert.Equal(t, []string{".env.local", ".env.prod", ".env"}, loaded)
	assert.Equal(t, "local", os.Getenv("GW_A"))
	assert.Equal(t, "prod", os.Getenv("GW_B"))
	assert.Equal(t, "os", os.Getenv("GW_C"))
}
