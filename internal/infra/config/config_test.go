package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slavakukuyev/elevator-fleet/internal/constants"
	"github.com/slavakukuyev/elevator-fleet/internal/domain"
)

func TestInitConfig_DefaultValues(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()

	cfg, err := InitConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "DEBUG", cfg.LogLevel) // development default bumps INFO -> DEBUG
	assert.Equal(t, 9, cfg.MaxFloor)
	assert.Equal(t, 0, cfg.MinFloor)
	assert.Equal(t, 2*time.Second, cfg.EachFloorDuration)
	assert.Equal(t, 3*time.Second, cfg.OpenDoorDuration)
	assert.Equal(t, "239.0.0.52:52052", cfg.MulticastAddr)
	assert.Equal(t, 8080, cfg.StatusPort)
	assert.Equal(t, "cost", cfg.AssignerMode)
}

func TestInitConfig_EnvironmentVariables(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()

	envVars := map[string]string{
		"ENV":               "production",
		"DEFAULT_MAX_FLOOR": "20",
		"DEFAULT_MIN_FLOOR": "-5",
		"STATUS_PORT":       "9090",
		"NODE_NAME":         "car-1",
	}
	for k, v := range envVars {
		require.NoError(t, os.Setenv(k, v))
	}

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "WARN", cfg.LogLevel) // production default overrides
	assert.Equal(t, 20, cfg.MaxFloor)
	assert.Equal(t, -5, cfg.MinFloor)
	assert.Equal(t, 9090, cfg.StatusPort)
	assert.Equal(t, "car-1", cfg.NodeName)
	assert.Equal(t, 3, cfg.CircuitBreakerMaxFailures)
}

func TestEnvironmentDefaults_Testing(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()
	require.NoError(t, os.Setenv("ENV", "testing"))

	cfg, err := InitConfig()
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.LogLevel)
	assert.Equal(t, 10*time.Millisecond, cfg.EachFloorDuration)
	assert.Equal(t, 10*time.Millisecond, cfg.OpenDoorDuration)
	assert.False(t, cfg.MetricsEnabled)
	assert.False(t, cfg.WebSocketEnabled)
}

func TestConfigValidation_InvalidFloorConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		minFloor string
		maxFloor string
		wantErr  string
	}{
		{"min equals max", "5", "5", "min floor must be less than max floor"},
		{"min greater than max", "10", "5", "min floor must be less than max floor"},
		{"min below system minimum", "-150", "10", "min floor is below system minimum"},
		{"max exceeds system maximum", "0", "250", "max floor exceeds system maximum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := clearEnvVars()
			defer cleanup()
			require.NoError(t, os.Setenv("DEFAULT_MIN_FLOOR", tt.minFloor))
			require.NoError(t, os.Setenv("DEFAULT_MAX_FLOOR", tt.maxFloor))

			cfg, err := InitConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)

			var domainErr *domain.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, domain.ErrTypeValidation, domainErr.Type)
		})
	}
}

func TestConfigValidation_InvalidStatusPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"too high", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := clearEnvVars()
			defer cleanup()
			require.NoError(t, os.Setenv("STATUS_PORT", tt.port))

			cfg, err := InitConfig()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "status port must be between 1 and 65535")
		})
	}
}

func TestConfigValidation_InvalidEachFloorDuration(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()
	require.NoError(t, os.Setenv("EACH_FLOOR_DURATION", "0s"))

	cfg, err := InitConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "each floor duration must be positive")
}

func TestConfigValidation_ForceMasterAndSlaveConflict(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()
	require.NoError(t, os.Setenv("FORCE_MASTER", "true"))
	require.NoError(t, os.Setenv("FORCE_SLAVE", "true"))

	cfg, err := InitConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "cannot force both master and slave roles")
}

func TestConfigValidation_ExternalAssignerRequiresPath(t *testing.T) {
	cleanup := clearEnvVars()
	defer cleanup()
	require.NoError(t, os.Setenv("ASSIGNER_MODE", "external"))

	cfg, err := InitConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "requires EXTERNAL_ASSIGNER_PATH")
}

func TestConfig_EnvironmentMethods(t *testing.T) {
	tests := []struct {
		environment                              string
		isProduction, isDevelopment, isTesting bool
	}{
		{"production", true, false, false},
		{"prod", true, false, false},
		{"development", false, true, false},
		{"dev", false, true, false},
		{"testing", false, false, true},
		{"test", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			assert.Equal(t, tt.isProduction, cfg.IsProduction())
			assert.Equal(t, tt.isDevelopment, cfg.IsDevelopment())
			assert.Equal(t, tt.isTesting, cfg.IsTesting())
		})
	}
}

func clearEnvVars() func() {
	envVars := []string{
		"ENV", "LOG_LEVEL", "NODE_NAME",
		"DEFAULT_MAX_FLOOR", "DEFAULT_MIN_FLOOR", "EACH_FLOOR_DURATION", "OPEN_DOOR_DURATION",
		"DRIVER_ADDR", "MULTICAST_ADDR", "ADVERTISING_INTERVAL", "DIAL_TIMEOUT",
		"ELECTION_BACKOFF_MIN", "ELECTION_BACKOFF_MAX", "FORCE_MASTER", "FORCE_SLAVE",
		"BACKUP_PATH", "BACKUP_INTERVAL", "ASSIGNER_MODE", "EXTERNAL_ASSIGNER_PATH",
		"ASSIGNER_TIMEOUT", "STATUS_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "METRICS_ENABLED", "METRICS_PATH",
		"HEALTH_ENABLED", "HEALTH_PATH", "STATUS_UPDATE_INTERVAL",
		"WEBSOCKET_ENABLED", "WEBSOCKET_PATH", "WEBSOCKET_WRITE_TIMEOUT",
		"WEBSOCKET_READ_TIMEOUT", "WEBSOCKET_PING_INTERVAL", "WEBSOCKET_MAX_CONNECTIONS",
		"CIRCUIT_BREAKER_MAX_FAILURES", "CIRCUIT_BREAKER_RESET_TIMEOUT",
		"CIRCUIT_BREAKER_HALF_OPEN_LIMIT",
	}

	original := make(map[string]string, len(envVars))
	for _, v := range envVars {
		original[v] = os.Getenv(v)
		_ = os.Unsetenv(v)
	}

	return func() {
		for _, v := range envVars {
			if val, ok := original[v]; ok && val != "" {
				_ = os.Setenv(v, val)
			} else {
				_ = os.Unsetenv(v)
			}
		}
	}
}
