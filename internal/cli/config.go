package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/wordofday/internal/enrich"
	"codeberg.org/snonux/wordofday/internal/history"
	"codeberg.org/snonux/wordofday/internal/picker"
)

// Config is the resolved configuration after flags, environment and config
// file have been merged by viper.
type Config struct {
	StoragePath string
	ArchiveDir  string
	HistoryMax  int

	Picker *picker.Config
	Enrich *enrich.Config

	LogLevel       string
	LogDevelopment bool
}

// StateDir returns the XDG state directory used for the database and
// exports.
func StateDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "wordofday")
}

func setDefaults() {
	pickerDefaults := picker.DefaultConfig()
	enrichDefaults := enrich.DefaultProviderConfig()

	viper.SetDefault("storage.path", filepath.Join(StateDir(), "wordofday.db"))
	viper.SetDefault("picker.mode", pickerDefaults.Mode)
	viper.SetDefault("picker.remote_url", pickerDefaults.RemoteURL)
	viper.SetDefault("picker.timeout", pickerDefaults.Timeout)
	viper.SetDefault("enrich.provider", enrichDefaults.Provider)
	viper.SetDefault("enrich.language", enrichDefaults.Language)
	viper.SetDefault("enrich.timeout", enrichDefaults.Timeout)
	viper.SetDefault("enrich.breaker_failures", enrichDefaults.BreakerFailures)
	viper.SetDefault("enrich.breaker_timeout", enrichDefaults.BreakerTimeout)
	viper.SetDefault("history.max", history.DefaultMax)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("archive.directory", filepath.Join(StateDir(), "archive"))
}

// LoadConfig reads the merged configuration from viper.
func LoadConfig() (*Config, error) {
	setDefaults()

	config := &Config{
		StoragePath: viper.GetString("storage.path"),
		ArchiveDir:  viper.GetString("archive.directory"),
		HistoryMax:  viper.GetInt("history.max"),
		Picker: &picker.Config{
			Mode:      viper.GetString("picker.mode"),
			WordsFile: viper.GetString("picker.words_file"),
			RemoteURL: viper.GetString("picker.remote_url"),
			Timeout:   viper.GetDuration("picker.timeout"),
		},
		Enrich: &enrich.Config{
			Provider:        viper.GetString("enrich.provider"),
			BaseURL:         viper.GetString("enrich.base_url"),
			Model:           viper.GetString("enrich.model"),
			Language:        viper.GetString("enrich.language"),
			Timeout:         viper.GetDuration("enrich.timeout"),
			BreakerFailures: viper.GetUint32("enrich.breaker_failures"),
			BreakerTimeout:  viper.GetDuration("enrich.breaker_timeout"),
		},
		LogLevel:       viper.GetString("log.level"),
		LogDevelopment: viper.GetBool("log.development"),
	}
	config.Enrich.APIKey = GetAPIKey(config.Enrich.Provider)

	if config.StoragePath == "" {
		return nil, fmt.Errorf("storage.path must not be empty")
	}
	if config.HistoryMax <= 0 || config.HistoryMax > history.DefaultMax {
		return nil, fmt.Errorf("history.max must be between 1 and %d, got %d", history.DefaultMax, config.HistoryMax)
	}
	if config.Enrich.Timeout <= 0 {
		config.Enrich.Timeout = 30 * time.Second
	}
	return config, nil
}

// GetAPIKey retrieves the API key for provider from environment or config
func GetAPIKey(provider string) string {
	// First check environment variable
	env := map[string]string{
		"openrouter": "OPENROUTER_API_KEY",
		"":           "OPENROUTER_API_KEY",
		"openai":     "OPENAI_API_KEY",
		"gemini":     "GEMINI_API_KEY",
	}[provider]
	if env != "" {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}

	// Then check config file
	return viper.GetString("enrich.api_key")
}
