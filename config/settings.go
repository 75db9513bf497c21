// Package config provides configuration structures for the word finder.
// Settings are read from a YAML file and completed with defaults; command-line
// flags may override individual values afterwards.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	internalErrors "github.com/gcbaptista/go-word-finder/internal/errors"
)

// SearchSettings controls how a directory tree is traversed and files are read.
type SearchSettings struct {
	MaxLineBytes int      `yaml:"max_line_bytes" json:"max_line_bytes"` // Largest line a file may contain before it is skipped
	ExcludeDirs  []string `yaml:"exclude_dirs" json:"exclude_dirs"`     // Directory base names never descended into (e.g. ".git")
	SkipHidden   bool     `yaml:"skip_hidden" json:"skip_hidden"`       // Skip files and directories whose name starts with "."
}

// ServerSettings controls the HTTP API.
type ServerSettings struct {
	Host             string        `yaml:"host" json:"host"` // Interface to listen on
	Port             string        `yaml:"port" json:"port"`
	AllowedRoots     []string      `yaml:"allowed_roots" json:"allowed_roots"`           // Directories finds may search below; empty means the working directory
	CORSOrigins      []string      `yaml:"cors_origins" json:"cors_origins"`             // Origins granted cross-origin access; "*" allows any
	MaxWorkers       int           `yaml:"max_workers" json:"max_workers"`               // Concurrent asynchronous finds
	RequestSizeLimit int64         `yaml:"request_size_limit" json:"request_size_limit"` // Max request body in bytes
	JobRetention     time.Duration `yaml:"job_retention" json:"job_retention"`           // Finished jobs older than this are dropped
}

// LoggingSettings controls log level, format and destination.
type LoggingSettings struct {
	Level      string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format     string `yaml:"format" json:"format"` // console or json
	File       string `yaml:"file" json:"file"`     // When set, logs go to this file with rotation
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"`
}

// Settings is the complete configuration.
type Settings struct {
	Search  SearchSettings  `yaml:"search" json:"search"`
	Server  ServerSettings  `yaml:"server" json:"server"`
	Logging LoggingSettings `yaml:"logging" json:"logging"`
}

// Default returns Settings with every default applied.
func Default() Settings {
	var s Settings
	s.ApplyDefaults()
	return s
}

// Load reads settings from a YAML file. An empty path yields the defaults.
// Validation problems are reported as a *errors.ValidationError.
func Load(path string) (Settings, error) {
	var s Settings
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- config path is chosen by the operator
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	s.ApplyDefaults()
	if problems := s.Validate(); len(problems) > 0 {
		return Settings{}, internalErrors.NewValidationError("config", strings.Join(problems, "; "))
	}
	return s, nil
}

// ApplyDefaults fills in zero values.
func (s *Settings) ApplyDefaults() {
	if s.Search.MaxLineBytes == 0 {
		s.Search.MaxLineBytes = 1 << 20
	}
	if s.Search.ExcludeDirs == nil {
		s.Search.ExcludeDirs = []string{}
	}

	if s.Server.Host == "" {
		s.Server.Host = "127.0.0.1"
	}
	if s.Server.Port == "" {
		s.Server.Port = "8080"
	}
	if s.Server.MaxWorkers == 0 {
		s.Server.MaxWorkers = 4
	}
	if s.Server.RequestSizeLimit == 0 {
		s.Server.RequestSizeLimit = 1 << 20
	}
	if s.Server.JobRetention == 0 {
		s.Server.JobRetention = 24 * time.Hour
	}

	if s.Logging.Level == "" {
		s.Logging.Level = "info"
	}
	if s.Logging.Format == "" {
		s.Logging.Format = "console"
	}
	if s.Logging.MaxSizeMB == 0 {
		s.Logging.MaxSizeMB = 10
	}
	if s.Logging.MaxBackups == 0 {
		s.Logging.MaxBackups = 5
	}
	if s.Logging.MaxAgeDays == 0 {
		s.Logging.MaxAgeDays = 7
	}
}

// Validate returns a description of every invalid value. An empty result
// means the settings are usable.
func (s *Settings) Validate() []string {
	var problems []string

	if s.Search.MaxLineBytes < 0 {
		problems = append(problems, "search.max_line_bytes must not be negative")
	}
	problems = append(problems, checkDuplicates("search.exclude_dirs", s.Search.ExcludeDirs)...)
	for _, dir := range s.Search.ExcludeDirs {
		if strings.TrimSpace(dir) == "" {
			problems = append(problems, "search.exclude_dirs cannot contain empty names")
		}
		if strings.ContainsAny(dir, `/\`) {
			problems = append(problems, "search.exclude_dirs entry '"+dir+"' must be a base name, not a path")
		}
	}

	for _, root := range s.Server.AllowedRoots {
		if strings.TrimSpace(root) == "" {
			problems = append(problems, "server.allowed_roots cannot contain empty paths")
		}
	}
	for _, origin := range s.Server.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			problems = append(problems, "server.cors_origins cannot contain empty origins")
		}
	}
	if s.Server.MaxWorkers < 0 {
		problems = append(problems, "server.max_workers must not be negative")
	}
	if s.Server.RequestSizeLimit < 0 {
		problems = append(problems, "server.request_size_limit must not be negative")
	}

	switch strings.ToLower(s.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, "logging.level '"+s.Logging.Level+"' must be one of debug, info, warn, error")
	}
	switch s.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, "logging.format '"+s.Logging.Format+"' must be 'console' or 'json'")
	}

	return problems
}

// checkDuplicates reports repeated values in a slice
func checkDuplicates(fieldName string, values []string) []string {
	var problems []string
	seen := make(map[string]bool)

	for _, v := range values {
		if seen[v] {
			problems = append(problems, "Duplicate value '"+v+"' found in "+fieldName)
		}
		seen[v] = true
	}

	return problems
}
