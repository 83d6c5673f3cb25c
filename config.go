package main

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"pagesmith/internal/editor"
)

type Config struct {
	SaveDirectory string `yaml:"save_directory"`
	Confirmations bool   `yaml:"confirmations"`
	Username      string `yaml:"username"`
	RemoteURL     string `yaml:"remote_url"`
	RemoteToken   string `yaml:"remote_token"`
	CachePath     string `yaml:"cache_path"`
	LogFile       string `yaml:"log_file"`
	LogLevel      string `yaml:"log_level"`
	HistoryLimit  int    `yaml:"history_limit"`
	Editable      bool   `yaml:"editable"`
}

func defaultConfig(home string) *Config {
	config := &Config{
		Confirmations: true,
		Username:      "me",
		LogLevel:      "info",
		HistoryLimit:  editor.DefaultHistoryLimit,
		Editable:      true,
	}
	if home != "" {
		config.CachePath = filepath.Join(home, ".pagesmith", "cache.db")
		config.LogFile = filepath.Join(home, ".pagesmith", "pagesmith.log")
	}
	return config
}

// loadConfig layers ~/.pagesmithrc, PAGESMITH_* environment variables (a
// .env file in the working directory is read first) and command line flags.
// A missing or broken rc file leaves the defaults in place.
func loadConfig(args []string) (*Config, error) {
	homeDir, _ := os.UserHomeDir()
	config := defaultConfig(homeDir)

	if homeDir != "" {
		if data, err := os.ReadFile(filepath.Join(homeDir, ".pagesmithrc")); err == nil {
			_ = yaml.Unmarshal(data, config)
		}
	}

	_ = godotenv.Load()
	config.applyEnv(os.LookupEnv)

	fs := flag.NewFlagSet("pagesmith", flag.ContinueOnError)
	fs.StringVar(&config.Username, "u", config.Username, "profile username")
	fs.StringVar(&config.RemoteURL, "r", config.RemoteURL, "profile service URL")
	fs.StringVar(&config.CachePath, "c", config.CachePath, "local cache database (empty for memory)")
	fs.StringVar(&config.LogFile, "log", config.LogFile, "log file (off to disable)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&config.Editable, "editable", config.Editable, "open as the page owner")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	config.SaveDirectory = expandPath(config.SaveDirectory, homeDir)
	config.CachePath = expandPath(config.CachePath, homeDir)
	if config.HistoryLimit <= 0 {
		config.HistoryLimit = editor.DefaultHistoryLimit
	}
	return config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup("PAGESMITH_" + key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup("PAGESMITH_" + key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	str("SAVE_DIRECTORY", &c.SaveDirectory)
	str("USERNAME", &c.Username)
	str("REMOTE_URL", &c.RemoteURL)
	str("REMOTE_TOKEN", &c.RemoteToken)
	str("CACHE_PATH", &c.CachePath)
	str("LOG_FILE", &c.LogFile)
	str("LOG_LEVEL", &c.LogLevel)
	boolean("CONFIRMATIONS", &c.Confirmations)
	boolean("EDITABLE", &c.Editable)
	if v, ok := lookup("PAGESMITH_HISTORY_LIMIT"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.HistoryLimit = n
		}
	}
}

func expandPath(value, home string) string {
	if value == "" || value == ":memory:" {
		return value
	}
	if strings.HasPrefix(value, "~") && home != "" {
		value = filepath.Join(home, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}
