// Package config handles configuration for the server component: defaults,
// then an optional JSON file, then environment variables, then command-line
// flags, each layer overriding the previous one.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	pb "github.com/dmitrijs2005/ebet/internal/proto"
)

// ErrMissingSecret is returned by Validate when no token signing secret was
// configured.
var ErrMissingSecret = errors.New("secret key is required (SECRET, -s or secret_key)")

// Config holds runtime settings for the eBet server.
//
// Fields:
//   - EndpointAddrHTTP / EndpointAddrGRPC: bind addresses.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Never logged.
//   - AccessTokenValidityDuration: token lifetime; 0 issues tokens without exp.
//   - ResolveAccounts: re-read the account behind every valid token.
//   - ProtectedMethods: glob patterns of gRPC methods behind the gate.
//   - LogFormat / LogLevel: "json" or "text"; slog level name.
type Config struct {
	EndpointAddrHTTP            string        `env:"HTTP_ADDR"`
	EndpointAddrGRPC            string        `env:"GRPC_ADDR"`
	DatabaseDSN                 string        `env:"DATABASE_DSN"`
	SecretKey                   string        `env:"SECRET"`
	AccessTokenValidityDuration time.Duration `env:"ACCESS_TOKEN_VALIDITY"`
	ResolveAccounts             bool          `env:"RESOLVE_ACCOUNTS"`
	ProtectedMethods            []string      `env:"PROTECTED_METHODS" envSeparator:","`
	LogFormat                   string        `env:"LOG_FORMAT"`
	LogLevel                    string        `env:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults. There is no
// default secret.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = ""
	c.AccessTokenValidityDuration = time.Hour
	c.ResolveAccounts = true
	c.ProtectedMethods = []string{pb.AuthService_WhoAmI_FullMethodName}
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrMissingSecret
	}
	if c.AccessTokenValidityDuration < 0 {
		return fmt.Errorf("access token validity must not be negative, got %s", c.AccessTokenValidityDuration)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// LoadConfig builds a Config from defaults, the JSON file named by -c, the
// process environment and the command line, then validates it.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], nil)
}

func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
