package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 70, cfg.BudgetPercent)
	assert.Equal(t, "0 8 * * *", cfg.ReminderSchedule)
	assert.Equal(t, 3, cfg.ReminderDays)
	assert.Equal(t, "finance.events", cfg.AMQPExchange)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.SMTPHost)
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BUDGET_PERCENT", "50")
	t.Setenv("REMINDER_DAYS", "7")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 50, cfg.BudgetPercent)
	assert.Equal(t, 7, cfg.ReminderDays)
}

func TestNewConfigRejectsBadBudget(t *testing.T) {
	t.Setenv("BUDGET_PERCENT", "150")
	_, err := NewConfig()
	assert.Error(t, err)
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("REMINDER_DAYS", "soon")
	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.ReminderDays)
}
