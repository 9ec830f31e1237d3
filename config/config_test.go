package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := Load()
	require.NotEmpty(t, cfg.CORSOrigins(), "default config must allow at least one origin")
}

func TestCORSOrigins(t *testing.T) {
	c := &Config{CORSAllowedOrigins: " http://a.example ,http://b.example, "}
	require.Equal(t, []string{"http://a.example", "http://b.example"}, c.CORSOrigins())
}
