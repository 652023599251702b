// Package config provides centralized configuration management for the
// service. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration — an invalid batch size or row limit must abort before
// any document is touched.
package config

import (
	"fmt"
	"time"
)

// Version is the service version reported by the health endpoint.
const Version = "1.4.0"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Extract ExtractConfig
	Upload  UploadConfig
	Store   StoreConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request body.
	// Uploaded bundles can be large, so the default is generous (default: 5m)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"5m"`

	// WriteTimeout is the maximum duration for writing the response
	// (default: 0, disabled — conversions stream large workbooks back)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// ExtractConfig holds extraction engine settings.
type ExtractConfig struct {
	// BatchSize is the number of records buffered per sheet before a flush
	// (default: 100)
	BatchSize int `env:"EXTRACT_BATCH_SIZE" default:"100"`

	// RowLimit caps rows per sheet, header included. It exists so tests and
	// constrained consumers can lower it; it may never exceed the XLSX
	// format limit (default: 1048576)
	RowLimit int `env:"EXTRACT_ROW_LIMIT" default:"1048576"`

	// EvictEvery is the page-cache eviction cadence in pages (default: 100)
	EvictEvery int `env:"EXTRACT_EVICT_EVERY" default:"100"`
}

// UploadConfig holds bundle upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 500MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"524288000"`

	// MaxConcurrent is the maximum number of parallel conversion jobs
	// (default: 2 — each job owns a full engine and workbook)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"2"`

	// MaxWaitTime is how long to wait for a job slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// MaxPDFs is the maximum number of PDF documents per bundle (default: 500)
	MaxPDFs int `env:"UPLOAD_MAX_PDFS" default:"500"`

	// Timeout is the maximum duration for a single conversion job (default: 30m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"30m"`
}

// StoreConfig holds run-history store settings.
type StoreConfig struct {
	// Path is the SQLite database file for run history. Empty disables the
	// store (default: runs.db)
	Path string `env:"STORE_PATH" default:"runs.db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
