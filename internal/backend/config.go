package backend

import (
	"fmt"

	"fintrack/internal/config"
)

// FromAppConfig converts the application config to backend config. The
// Google mirror is selected whenever a spreadsheet is configured.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	mirror := MemoryMirror
	if appConfig.SheetsEnabled() {
		mirror = GoogleMirror
	}

	cfg := Config{
		SQLiteDBPath:     appConfig.SQLiteDBPath,
		CategoryCacheTTL: appConfig.CategoryCacheTTL,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		Mirror:                   mirror,
		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	if c.Mirror != "" && !c.Mirror.IsValid() {
		return fmt.Errorf("invalid mirror type: %s", c.Mirror)
	}

	if c.Mirror == GoogleMirror {
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for the google mirror")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			return fmt.Errorf("either GoogleServiceAccountFile or GoogleServiceAccountJSON must be provided for the google mirror")
		}
	}
	// AMQP is optional, so we don't validate it

	return nil
}

// GetMirrorTypes returns all valid mirror types
func GetMirrorTypes() []MirrorType {
	return []MirrorType{GoogleMirror, MemoryMirror}
}
