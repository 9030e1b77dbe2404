package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/health"
)

func TestDatabasePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Cleanup(viper.Reset)

	viper.Reset()
	assert.Equal(t, filepath.Join(home, ".local/share/spice/spice.db"), DatabasePath())

	t.Setenv("SPICE_TEST_DIR", "/var/spice")
	viper.Set("database.path", "$SPICE_TEST_DIR/scores.db")
	assert.Equal(t, "/var/spice/scores.db", DatabasePath())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SPICE_TEST_DIR", "/var/spice")

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~", home},
		{"~/data/spice.db", filepath.Join(home, "data/spice.db")},
		{"$SPICE_TEST_DIR/spice.db", "/var/spice/spice.db"},
		{"/abs/path.db", "/abs/path.db"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, expandPath(tt.input))
		})
	}
}

func TestLoadScoringPolicy(t *testing.T) {
	t.Cleanup(viper.Reset)

	viper.Reset()
	policy, err := LoadScoringPolicy()
	require.NoError(t, err)
	assert.Equal(t, health.DefaultPolicy(), policy)

	viper.Set("scoring.anti_gaming_threshold", 1.8)
	viper.Set("scoring.late_payment_window_months", 36)
	viper.Set("scoring.income_floor", 3000.0)
	policy, err = LoadScoringPolicy()
	require.NoError(t, err)
	assert.InDelta(t, 1.8, policy.AntiGamingThreshold, 1e-9)
	assert.Equal(t, 36, policy.LatePaymentWindowMonths)
	assert.InDelta(t, 3000, policy.IncomeFloor, 1e-9)

	viper.Set("scoring.anti_gaming_cap", 1.5)
	_, err = LoadScoringPolicy()
	require.ErrorIs(t, err, common.ErrInvalidConfig)
	assert.ErrorIs(t, err, health.ErrInvalidPolicy)
}

func TestLoadPlaidConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()
	t.Setenv("PLAID_CLIENT_ID", "")
	t.Setenv("PLAID_SECRET", "")
	t.Setenv("PLAID_ACCESS_TOKEN", "")
	t.Setenv("PLAID_ENV", "")

	_, err := LoadPlaidConfig()
	require.ErrorIs(t, err, common.ErrMissingConfig)

	viper.Set("plaid.client_id", "client")
	viper.Set("plaid.secret", "secret")
	t.Setenv("PLAID_ACCESS_TOKEN", "access-sandbox-1")

	cfg, err := LoadPlaidConfig()
	require.NoError(t, err)
	assert.Equal(t, "client", cfg.ClientID)
	assert.Equal(t, "access-sandbox-1", cfg.AccessToken)
	assert.Equal(t, "sandbox", cfg.Environment)
}

func TestLoadServerConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	cfg := LoadServerConfig()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "0 3 * * *", cfg.Schedule)
	assert.Equal(t, 30, cfg.HistoryLimit)

	viper.Set("server.addr", "127.0.0.1:9000")
	viper.Set("score.history_limit", 90)
	viper.Set("server.read_timeout", "5s")
	cfg = LoadServerConfig()
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, 90, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
}
