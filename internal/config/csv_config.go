// Package config provides configuration management for the analyses console.
package config

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rescale/rescale-analyses/internal/state"
)

// Environment variables consulted by MergeWithFlags.
const (
	EnvUser       = "RESCALE_ANALYSES_USER"
	EnvListingURL = "RESCALE_ANALYSES_LISTING_URL"
	EnvAPIKey     = "RESCALE_API_KEY"
)

// Config represents the analyses console configuration
type Config struct {
	// Acting user; owner comparisons strip any realm suffix
	Username string

	// Listing source: a service base URL or a local JSON file
	ListingURL  string
	ListingFile string

	// Initial sort order of the listing
	DefaultSortColumn    string // "name", "startdate", "enddate", "status"
	DefaultSortDirection string // "asc" or "desc"

	// Details panel toggle exposed in the action menu
	DetailsEnabled bool

	// Terminal widths below this are treated as a narrow viewport
	NarrowWidth int

	// Optional casbin policy granting rights over other users' analyses
	AdminPolicyPath string

	// Retry settings for the listing service
	MaxRetries int

	LogLevel string
	LogFile  string // rotating log file; empty disables file logging

	// Proxy settings
	ProxyMode     string // "no-proxy", "ntlm", "basic", "system"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string // Comma-separated list of hosts to bypass proxy

	// API key for the listing service; never read from or written to the CSV
	APIKey string
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DefaultSortColumn:    string(state.DefaultSort.Column),
		DefaultSortDirection: string(state.DefaultSort.Direction),
		NarrowWidth:          100,
		MaxRetries:           3,
		LogLevel:             "info",
		ProxyMode:            "no-proxy",
	}
}

func parseBool(value string) bool {
	return strings.ToLower(value) == "true" || value == "1"
}

// LoadConfigCSV loads configuration from a CSV file
// CSV format: key,value pairs
func LoadConfigCSV(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // Return defaults if config doesn't exist
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read config CSV: %w", err)
	}

	for i, record := range records {
		if i == 0 {
			// Skip header row if it looks like a header
			if len(record) >= 2 && strings.ToLower(record[0]) == "key" {
				continue
			}
		}

		if len(record) < 2 {
			continue
		}

		key := strings.TrimSpace(strings.ToLower(record[0]))
		value := strings.TrimSpace(record[1])

		switch key {
		case "username":
			cfg.Username = value
		case "listing_url":
			cfg.ListingURL = value
		case "listing_file":
			cfg.ListingFile = value
		case "default_sort_column":
			cfg.DefaultSortColumn = value
		case "default_sort_direction":
			cfg.DefaultSortDirection = value
		case "details_enabled":
			cfg.DetailsEnabled = parseBool(value)
		case "narrow_width":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.NarrowWidth = v
			}
		case "admin_policy_path":
			cfg.AdminPolicyPath = value
		case "max_retries":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.MaxRetries = v
			}
		case "log_level":
			cfg.LogLevel = value
		case "log_file":
			cfg.LogFile = value
		case "proxy_mode":
			cfg.ProxyMode = value
		case "proxy_host":
			cfg.ProxyHost = value
		case "proxy_port":
			if v, err := strconv.Atoi(value); err == nil {
				cfg.ProxyPort = v
			}
		case "proxy_user":
			cfg.ProxyUser = value
		case "no_proxy":
			cfg.NoProxy = value
		case "proxy_password", "api_key":
			// Secrets come from the environment or the token file
			if value != "" {
				log.Warn().Str("key", key).Msg("Secret in config file is ignored")
			}
		default:
			log.Debug().Str("key", key).Msg("Unknown config key")
		}
	}

	return cfg, nil
}

// SaveConfigCSV saves configuration to a CSV file
// CSV format: key,value pairs
func SaveConfigCSV(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write([]string{"key", "value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// api_key and proxy_password are intentionally NOT saved
	records := [][]string{
		{"username", cfg.Username},
		{"listing_url", cfg.ListingURL},
		{"listing_file", cfg.ListingFile},
		{"default_sort_column", cfg.DefaultSortColumn},
		{"default_sort_direction", cfg.DefaultSortDirection},
		{"details_enabled", strconv.FormatBool(cfg.DetailsEnabled)},
		{"narrow_width", strconv.Itoa(cfg.NarrowWidth)},
		{"admin_policy_path", cfg.AdminPolicyPath},
		{"max_retries", strconv.Itoa(cfg.MaxRetries)},
		{"log_level", cfg.LogLevel},
		{"log_file", cfg.LogFile},
		{"proxy_mode", cfg.ProxyMode},
		{"proxy_host", cfg.ProxyHost},
		{"proxy_port", strconv.Itoa(cfg.ProxyPort)},
		{"proxy_user", cfg.ProxyUser},
		{"no_proxy", cfg.NoProxy},
	}

	for _, record := range records {
		// Only write non-empty values to keep file clean
		if record[1] != "" && record[1] != "0" && record[1] != "false" {
			if err := writer.Write(record); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush config file: %w", err)
	}
	return nil
}

// MergeWithFlags applies environment variables and command-line flags.
// Priority (highest to lowest): flags > environment > config file > defaults.
// The API key falls back to the default token file when neither a flag nor
// RESCALE_API_KEY is set.
func (c *Config) MergeWithFlags(user, listingURL, apiKey string) {
	if c.APIKey == "" {
		if tokenPath := GetDefaultTokenPath(); tokenPath != "" {
			if key, err := ReadTokenFile(tokenPath); err == nil {
				c.APIKey = key
			}
		}
	}

	if v := os.Getenv(EnvUser); v != "" {
		c.Username = v
	}
	if v := os.Getenv(EnvListingURL); v != "" {
		c.ListingURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}

	if user != "" {
		c.Username = user
	}
	if listingURL != "" {
		c.ListingURL = listingURL
	}
	if apiKey != "" {
		c.APIKey = apiKey
	}

	if c.ListingURL != "" && !strings.HasPrefix(c.ListingURL, "http") {
		c.ListingURL = "https://" + c.ListingURL
	}
	c.ListingURL = strings.TrimRight(c.ListingURL, "/")
}

// InitialSort returns the configured initial sort order.
func (c *Config) InitialSort() (state.SortState, error) {
	col, err := state.ParseColumn(c.DefaultSortColumn)
	if err != nil {
		return state.SortState{}, fmt.Errorf("default_sort_column: %w", err)
	}
	dir, err := state.ParseDirection(c.DefaultSortDirection)
	if err != nil {
		return state.SortState{}, fmt.Errorf("default_sort_direction: %w", err)
	}
	return state.SortState{Column: col, Direction: dir}, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("username is required (set via --user, %s or the config file)", EnvUser)
	}
	if c.ListingURL == "" && c.ListingFile == "" {
		return fmt.Errorf("a listing source is required (listing_url or listing_file)")
	}
	if _, err := c.InitialSort(); err != nil {
		return err
	}
	if c.NarrowWidth < 0 {
		return fmt.Errorf("narrow_width must not be negative")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	switch strings.ToLower(c.ProxyMode) {
	case "", "no-proxy", "system", "ntlm", "basic":
	default:
		return fmt.Errorf("unsupported proxy mode: %s", c.ProxyMode)
	}
	return nil
}
