package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
)

type serverConfig struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	Tokens       map[string]string
	LogLevel     string
	LogFile      string
}

// parseFlags reads the command line first and falls back to the environment
// for anything left unset.
func parseFlags(args []string, getenv func(string) string) (serverConfig, error) {
	var cfg serverConfig
	var tokens string

	fs := flag.NewFlagSet("profiled", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or sqlite path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&tokens, "tokens", "", "Bearer tokens as token=user pairs (prefer env)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level")
	fs.StringVar(&cfg.LogFile, "log", "", "Log file, stderr when empty")
	if err := fs.Parse(args); err != nil {
		return serverConfig{}, err
	}

	if cfg.Port == 0 {
		if portStr := getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return serverConfig{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return serverConfig{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	switch cfg.DatabaseType {
	case "sqlite", "postgres":
	default:
		return serverConfig{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}
	if tokens == "" {
		tokens = getenv("PAGESMITH_API_TOKENS")
	}
	parsed, err := parseTokens(tokens)
	if err != nil {
		return serverConfig{}, err
	}
	cfg.Tokens = parsed
	if cfg.LogLevel == "" {
		cfg.LogLevel = getenv("LOG_LEVEL")
	}
	return cfg, nil
}

// parseTokens reads "token=user" pairs separated by commas.
func parseTokens(s string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, user, ok := strings.Cut(pair, "=")
		token, user = strings.TrimSpace(token), strings.TrimSpace(user)
		if !ok || token == "" || user == "" {
			return nil, fmt.Errorf("malformed token pair %q", pair)
		}
		out[token] = user
	}
	return out, nil
}
