package constants

import "time"

// Application constants centralized in one location to improve type safety
// and eliminate magic strings throughout the codebase.

// Default configuration values
const (
	DefaultMinFloor = 0
	DefaultMaxFloor = 9
	DefaultLogLevel = "INFO"

	DefaultEachFloorDuration = 2 * time.Second
	DefaultOpenDoorDuration  = 3 * time.Second

	DefaultMulticastAddr        = "239.0.0.52:52052"
	DefaultAdvertisingInterval  = 1 * time.Second
	DefaultElectionBackoffMin   = 50 * time.Millisecond
	DefaultElectionBackoffMax   = 500 * time.Millisecond
	DefaultDialTimeout          = 2 * time.Second
	DefaultBackupPath           = "elevator-state.json"
	DefaultBackupInterval       = 1 * time.Second
	DefaultStatusPort           = 8080
	DefaultCircuitBreakerMax    = 5
	DefaultCircuitBreakerResetS = 10 * time.Second
)

// HTTP content types
const (
	ContentTypeJSON      = "application/json"
	ContentTypeTextPlain = "text/plain"
)

// Component names for structured logging
const (
	ComponentFSM          = "fsm"
	ComponentDispatch     = "dispatch"
	ComponentAdvertiser   = "advertiser"
	ComponentSocket       = "socket"
	ComponentBackup       = "backup"
	ComponentAssigner     = "assigner"
	ComponentStatusServer = "status-server"
	ComponentDriver       = "driver"
)

// Floor validation limits
const (
	MinAllowedFloor = -100
	MaxAllowedFloor = 200
)

// Metrics
const (
	MetricsNamespace = "elevator_fleet"
)
