package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestParseFlagsEnvVars(t *testing.T) {
	cfg, err := parseFlags(nil, env(map[string]string{
		"PORT":                 "9000",
		"DATABASE_URL":         "postgres://test",
		"DATABASE_TYPE":        "postgres",
		"PAGESMITH_API_TOKENS": "abc=alice, def=bob",
	}))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres://test", cfg.DatabaseURL)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, map[string]string{"abc": "alice", "def": "bob"}, cfg.Tokens)
}

func TestParseFlagsCLIOverridesEnv(t *testing.T) {
	cfg, err := parseFlags([]string{"-p", "8080", "-d", "pages.db"}, env(map[string]string{"PORT": "9000"}))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "pages.db", cfg.DatabaseURL)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Empty(t, cfg.Tokens)
}

func TestParseFlagsDefaultsPort(t *testing.T) {
	cfg, err := parseFlags([]string{"-d", ":memory:"}, env(nil))
	require.NoError(t, err)
	assert.Equal(t, 3318, cfg.Port)
}

func TestParseFlagsErrors(t *testing.T) {
	_, err := parseFlags(nil, env(nil))
	assert.ErrorContains(t, err, "database URL required")

	_, err = parseFlags([]string{"-d", "x"}, env(map[string]string{"PORT": "nope"}))
	assert.ErrorContains(t, err, "invalid PORT")

	_, err = parseFlags([]string{"-d", "x", "-t", "mysql"}, env(nil))
	assert.ErrorContains(t, err, "unknown database type")

	_, err = parseFlags([]string{"-d", "x", "-tokens", "justatoken"}, env(nil))
	assert.ErrorContains(t, err, "malformed token pair")
}
