package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog/log"
)

// ConfigDir is the standard configuration directory name
const ConfigDir = "rescale"

// ConfigFileName is the analyses console config file inside ConfigDir.
const ConfigFileName = "analyses.csv"

// getConfigDir returns the platform-appropriate config directory.
// - Windows: %APPDATA%\Rescale
// - Unix: ~/.config/rescale (XDG standard)
func getConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Rescale")
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", ConfigDir)
	}
	return ""
}

// GetDefaultConfigPath returns the default config file path
func GetDefaultConfigPath() string {
	configDir := getConfigDir()
	if configDir == "" {
		return ConfigFileName
	}
	return filepath.Join(configDir, ConfigFileName)
}

// GetDefaultTokenPath returns the default API token file path, shared with
// the other Rescale command-line tools.
func GetDefaultTokenPath() string {
	configDir := getConfigDir()
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "token")
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	configDir := getConfigDir()
	if configDir == "" {
		return fmt.Errorf("could not determine config directory")
	}
	return os.MkdirAll(configDir, 0700)
}

// ReadTokenFile reads an API token from a file
// The file should contain only the API token (whitespace is trimmed)
// Warns if file permissions are too open (not 0600 on Unix systems)
func ReadTokenFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat token file: %w", err)
	}

	if mode := info.Mode().Perm(); runtime.GOOS != "windows" && mode&0077 != 0 {
		log.Warn().Str("path", path).Msgf("Token file has insecure permissions %04o", mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file is empty")
	}
	return token, nil
}

// WriteTokenFile writes an API token to a file with secure permissions (0600)
func WriteTokenFile(path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("cannot write empty token")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}
