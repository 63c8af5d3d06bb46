package backend

import (
	"fmt"

	"gastos/internal/config"
	"gastos/internal/ledger/google"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:       backendType,
		MaxRetries: appConfig.StoreMaxRetries,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID:        appConfig.GoogleSpreadsheetID,
		GoogleSheetName:            appConfig.GoogleSheetName,
		GoogleServiceAccountJSON:   appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile:   appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountBase64: appConfig.GoogleServiceAccountBase64,

		SeedFile: appConfig.MemorySeedFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative, got %d", c.MaxRetries)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		// AMQP is optional

	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleSheetName == "" {
			return fmt.Errorf("Google Sheet name is required for sheets backend")
		}
		// Credentials may come from GOOGLE_APPLICATION_CREDENTIALS, checked at connect time.

	case MemoryBackend:
		// An empty or missing seed file starts an empty ledger.
	}

	return nil
}

// SheetsConfig extracts the spreadsheet settings.
func (c Config) SheetsConfig() google.Config {
	return google.Config{
		SpreadsheetID:        c.GoogleSpreadsheetID,
		SheetName:            c.GoogleSheetName,
		ServiceAccountJSON:   c.GoogleServiceAccountJSON,
		ServiceAccountFile:   c.GoogleServiceAccountFile,
		ServiceAccountBase64: c.GoogleServiceAccountBase64,
	}
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, SheetsBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	strings := make([]string, len(types))
	for i, t := range types {
		strings[i] = t.String()
	}
	return strings
}
