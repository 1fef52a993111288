package config

import (
	"strings"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Photos
		Rescan
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Photos struct {
		Dirs                []string // Directories watched for new photos
		GapThresholdMinutes int      // Idle time that separates two photo sessions
	}
	Rescan struct {
		Enabled  bool
		Schedule string // Cron format: "*/30 * * * *" = every 30 minutes
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8184)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("photo_dirs", "")
	v.SetDefault("photo_gap_minutes", DefaultGapThresholdMinutes)
	v.SetDefault("photo_rescan_enabled", false)
	v.SetDefault("photo_rescan_schedule", "*/30 * * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Photos: Photos{
			Dirs:                splitDirs(v.GetString("PHOTO_DIRS")),
			GapThresholdMinutes: v.GetInt("PHOTO_GAP_MINUTES"),
		},
		Rescan: Rescan{
			Enabled:  v.GetBool("PHOTO_RESCAN_ENABLED"),
			Schedule: v.GetString("PHOTO_RESCAN_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

// splitDirs parses the comma-separated PHOTO_DIRS value.
func splitDirs(s string) []string {
	var dirs []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			dirs = append(dirs, part)
		}
	}
	return dirs
}
