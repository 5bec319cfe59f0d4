package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env"

	"github.com/slavakukuyev/elevator-fleet/internal/constants"
	"github.com/slavakukuyev/elevator-fleet/internal/domain"
)

// Config represents one fleet node's full runtime configuration.
type Config struct {
	// Environment and basic settings
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	NodeName    string `env:"NODE_NAME" envDefault:""`

	// Building configuration
	MinFloor          int           `env:"DEFAULT_MIN_FLOOR" envDefault:"0"`
	MaxFloor          int           `env:"DEFAULT_MAX_FLOOR" envDefault:"9"`
	EachFloorDuration time.Duration `env:"EACH_FLOOR_DURATION" envDefault:"2s"`
	OpenDoorDuration  time.Duration `env:"OPEN_DOOR_DURATION" envDefault:"3s"`

	// Driver configuration: a non-empty DriverAddr dials a line-oriented
	// hardware/simulator endpoint; an empty DriverAddr runs against the
	// in-memory fake driver instead.
	DriverAddr string `env:"DRIVER_ADDR" envDefault:""`

	// Network discovery and replication
	MulticastAddr       string        `env:"MULTICAST_ADDR" envDefault:"239.0.0.52:52052"`
	AdvertisingInterval time.Duration `env:"ADVERTISING_INTERVAL" envDefault:"1s"`
	DialTimeout         time.Duration `env:"DIAL_TIMEOUT" envDefault:"2s"`
	ElectionBackoffMin  time.Duration `env:"ELECTION_BACKOFF_MIN" envDefault:"50ms"`
	ElectionBackoffMax  time.Duration `env:"ELECTION_BACKOFF_MAX" envDefault:"500ms"`
	ForceMaster         bool          `env:"FORCE_MASTER" envDefault:"false"`
	ForceSlave          bool          `env:"FORCE_SLAVE" envDefault:"false"`

	// Durable backup
	BackupPath     string        `env:"BACKUP_PATH" envDefault:"elevator-state.json"`
	BackupInterval time.Duration `env:"BACKUP_INTERVAL" envDefault:"1s"`

	// Hall-request assignment
	AssignerMode     string        `env:"ASSIGNER_MODE" envDefault:"cost"` // "cost" or "external"
	ExternalAssigner string        `env:"EXTERNAL_ASSIGNER_PATH" envDefault:""`
	AssignerTimeout  time.Duration `env:"ASSIGNER_TIMEOUT" envDefault:"2s"`

	// Status / observability server
	StatusPort           int           `env:"STATUS_PORT" envDefault:"8080"`
	ReadTimeout          time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout         time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout          time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout      time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	MetricsEnabled       bool          `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsPath          string        `env:"METRICS_PATH" envDefault:"/metrics"`
	HealthEnabled        bool          `env:"HEALTH_ENABLED" envDefault:"true"`
	HealthPath           string        `env:"HEALTH_PATH" envDefault:"/health"`
	StatusUpdateInterval time.Duration `env:"STATUS_UPDATE_INTERVAL" envDefault:"1s"`

	// WebSocket status push
	WebSocketEnabled      bool          `env:"WEBSOCKET_ENABLED" envDefault:"true"`
	WebSocketPath         string        `env:"WEBSOCKET_PATH" envDefault:"/ws/status"`
	WebSocketWriteTimeout time.Duration `env:"WEBSOCKET_WRITE_TIMEOUT" envDefault:"5s"`
	WebSocketReadTimeout  time.Duration `env:"WEBSOCKET_READ_TIMEOUT" envDefault:"60s"`
	WebSocketPingInterval time.Duration `env:"WEBSOCKET_PING_INTERVAL" envDefault:"30s"`
	WebSocketMaxConns     int           `env:"WEBSOCKET_MAX_CONNECTIONS" envDefault:"100"`

	// Circuit breaker settings. These are parsed and validated here only;
	// dispatch.New builds its dial-to-master breaker from the constants
	// package defaults and does not read these fields.
	CircuitBreakerMaxFailures   int           `env:"CIRCUIT_BREAKER_MAX_FAILURES" envDefault:"5"`
	CircuitBreakerResetTimeout  time.Duration `env:"CIRCUIT_BREAKER_RESET_TIMEOUT" envDefault:"10s"`
	CircuitBreakerHalfOpenLimit int           `env:"CIRCUIT_BREAKER_HALF_OPEN_LIMIT" envDefault:"1"`
}

// InitConfig parses environment variables into a Config, applies
// environment-specific defaults, and validates the result.
func InitConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	applyEnvironmentDefaults(&cfg)

	if err := validateConfiguration(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func applyEnvironmentDefaults(cfg *Config) {
	switch cfg.Environment {
	case "development", "dev":
		if cfg.LogLevel == "INFO" {
			cfg.LogLevel = "DEBUG"
		}
	case "testing", "test":
		cfg.LogLevel = "WARN"
		cfg.EachFloorDuration = 10 * time.Millisecond
		cfg.OpenDoorDuration = 10 * time.Millisecond
		cfg.AdvertisingInterval = 10 * time.Millisecond
		cfg.BackupInterval = 10 * time.Millisecond
		cfg.MetricsEnabled = false
		cfg.WebSocketEnabled = false
	case "production", "prod":
		cfg.LogLevel = "WARN"
		cfg.CircuitBreakerMaxFailures = 3
		cfg.CircuitBreakerResetTimeout = 5 * time.Second
	default:
		// unknown environment: keep the struct tag defaults
	}
}

func validateConfiguration(cfg *Config) error {
	if cfg.MinFloor >= cfg.MaxFloor {
		return domain.NewValidationError("min floor must be less than max floor", nil).
			WithContext("min_floor", cfg.MinFloor).
			WithContext("max_floor", cfg.MaxFloor)
	}
	if cfg.MinFloor < constants.MinAllowedFloor {
		return domain.NewValidationError("min floor is below system minimum", nil).
			WithContext("min_floor", cfg.MinFloor).
			WithContext("system_minimum", constants.MinAllowedFloor)
	}
	if cfg.MaxFloor > constants.MaxAllowedFloor {
		return domain.NewValidationError("max floor exceeds system maximum", nil).
			WithContext("max_floor", cfg.MaxFloor).
			WithContext("system_maximum", constants.MaxAllowedFloor)
	}
	if cfg.EachFloorDuration <= 0 {
		return domain.NewValidationError("each floor duration must be positive", nil).
			WithContext("duration", cfg.EachFloorDuration)
	}
	if cfg.OpenDoorDuration <= 0 {
		return domain.NewValidationError("open door duration must be positive", nil).
			WithContext("duration", cfg.OpenDoorDuration)
	}
	if cfg.ElectionBackoffMin > cfg.ElectionBackoffMax {
		return domain.NewValidationError("election backoff min must not exceed max", nil).
			WithContext("min", cfg.ElectionBackoffMin).
			WithContext("max", cfg.ElectionBackoffMax)
	}
	if cfg.ForceMaster && cfg.ForceSlave {
		return domain.NewValidationError("a node cannot force both master and slave roles", nil)
	}
	if cfg.StatusPort <= 0 || cfg.StatusPort > 65535 {
		return domain.NewValidationError("status port must be between 1 and 65535", nil).
			WithContext("port", cfg.StatusPort)
	}
	if cfg.AssignerMode != "cost" && cfg.AssignerMode != "external" {
		return domain.NewValidationError("assigner mode must be \"cost\" or \"external\"", nil).
			WithContext("mode", cfg.AssignerMode)
	}
	if cfg.AssignerMode == "external" && cfg.ExternalAssigner == "" {
		return domain.NewValidationError("external assigner mode requires EXTERNAL_ASSIGNER_PATH", nil)
	}
	if cfg.CircuitBreakerMaxFailures <= 0 {
		return domain.NewValidationError("circuit breaker max failures must be positive", nil).
			WithContext("max_failures", cfg.CircuitBreakerMaxFailures)
	}
	return nil
}

// IsProduction reports whether cfg targets a production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment reports whether cfg targets a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsTesting reports whether cfg targets a testing environment.
func (c *Config) IsTesting() bool {
	return c.Environment == "testing" || c.Environment == "test"
}
