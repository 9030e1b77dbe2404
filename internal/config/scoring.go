package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/spice-health/internal/common"
	"github.com/Veraticus/spice-health/internal/health"
	"github.com/Veraticus/spice-health/internal/plaid"
)

// LoadScoringPolicy starts from the default policy and applies any scoring.*
// overrides from Viper (config file or SPICE_SCORING_* env vars).
func LoadScoringPolicy() (health.Policy, error) {
	policy := health.DefaultPolicy()

	floats := map[string]*float64{
		"scoring.anti_gaming_threshold":        &policy.AntiGamingThreshold,
		"scoring.anti_gaming_cap":              &policy.AntiGamingCap,
		"scoring.anti_gaming_severe_threshold": &policy.AntiGamingSevereThreshold,
		"scoring.anti_gaming_severe_cap":       &policy.AntiGamingSevereCap,
		"scoring.income_floor":                 &policy.IncomeFloor,
		"scoring.expense_floor":                &policy.ExpenseFloor,
		"scoring.default_buffer_months":        &policy.DefaultBufferMonths,
		"scoring.tip_threshold_pct":            &policy.TipThresholdPct,
	}
	for key, target := range floats {
		if viper.IsSet(key) {
			*target = viper.GetFloat64(key)
		}
	}
	if viper.IsSet("scoring.late_payment_window_months") {
		policy.LatePaymentWindowMonths = viper.GetInt("scoring.late_payment_window_months")
	}

	if err := policy.Validate(); err != nil {
		return policy, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return policy, nil
}

// LoadPlaidConfig loads Plaid configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or SPICE_ env vars)
// 2. Direct environment variables (PLAID_*)
// 3. Default values
func LoadPlaidConfig() (plaid.Config, error) {
	cfg := plaid.Config{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
	}

	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("PLAID_CLIENT_ID")
	}
	if cfg.Secret == "" {
		cfg.Secret = os.Getenv("PLAID_SECRET")
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("PLAID_ACCESS_TOKEN")
	}
	if cfg.Environment == "" {
		cfg.Environment = os.Getenv("PLAID_ENV")
	}
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w: %w", common.ErrMissingConfig, err)
	}
	return cfg, nil
}

// ServerConfig configures `spice serve`.
type ServerConfig struct {
	Addr         string
	Schedule     string
	HistoryLimit int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LoadServerConfig reads server.* and score.history_limit with defaults.
func LoadServerConfig() ServerConfig {
	cfg := ServerConfig{
		Addr:         ":8080",
		Schedule:     "0 3 * * *",
		HistoryLimit: 30,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	if v := viper.GetString("server.addr"); v != "" {
		cfg.Addr = v
	}
	if v := viper.GetString("server.schedule"); v != "" {
		cfg.Schedule = v
	}
	if v := viper.GetInt("score.history_limit"); v > 0 {
		cfg.HistoryLimit = v
	}
	if v := viper.GetDuration("server.read_timeout"); v > 0 {
		cfg.ReadTimeout = v
	}
	if v := viper.GetDuration("server.write_timeout"); v > 0 {
		cfg.WriteTimeout = v
	}
	return cfg
}
