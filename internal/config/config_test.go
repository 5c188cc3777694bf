package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 12, cfg.JWTExpirationHours)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "NAXOS", cfg.BusinessName)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "production")
	t.Setenv("WORKER_POOL_SIZE", "7")
	t.Setenv("REPORT_EMAIL", "gerencia@naxos.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 7, cfg.WorkerPoolSize)
	assert.Equal(t, "gerencia@naxos.test", cfg.ReportEmail)
	assert.True(t, cfg.IsProduction())
}
