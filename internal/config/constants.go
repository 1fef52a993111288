package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./divelog.db"

	// DefaultGapThresholdMinutes is the surface interval that separates two
	// photo sessions
	DefaultGapThresholdMinutes = 60
)
