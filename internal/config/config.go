package config

import (
	"os"
	"strconv"
)

type Config struct {
	Database DatabaseConfig
	Registry RegistryConfig
	Facenet  FacenetConfig
	Archive  ArchiveConfig
	Sheets   SheetsConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type RegistryConfig struct {
	Path string // Path to the on-disk encodings artifact (default data/encodings.gob)
}

type FacenetConfig struct {
	URL       string  // Base URL of the embedding extractor service
	Dim       int     // Embedding dimension (default 128)
	Tolerance float64 // Maximum face distance considered a match (default 0.6)
}

type ArchiveConfig struct {
	URL        string // Base URL of the photo archive service (empty disables archival)
	Token      string // Bearer token for the archive API
	RootFolder string // Folder id the Year/Month/Day tree is rooted under (empty for top level)
}

type SheetsConfig struct {
	URL           string // Base URL of the spreadsheet service (empty disables login)
	SpreadsheetID string // Spreadsheet carrying the Credentials worksheet
	Token         string // Bearer token for the spreadsheet API
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Registry: RegistryConfig{
			Path: envString("ENCODINGS_PATH", "data/encodings.gob"),
		},
		Facenet: FacenetConfig{
			URL:       os.Getenv("FACENET_URL"),
			Dim:       envInt("FACENET_DIM", 128),
			Tolerance: envFloat("FACENET_TOLERANCE", 0.6),
		},
		Archive: ArchiveConfig{
			URL:        os.Getenv("ARCHIVE_URL"),
			Token:      os.Getenv("ARCHIVE_TOKEN"),
			RootFolder: os.Getenv("ARCHIVE_ROOT_FOLDER"),
		},
		Sheets: SheetsConfig{
			URL:           os.Getenv("SHEETS_URL"),
			SpreadsheetID: os.Getenv("SHEETS_SPREADSHEET_ID"),
			Token:         os.Getenv("SHEETS_TOKEN"),
		},
	}
}
