package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/ebet/internal/flagx"
	"github.com/dmitrijs2005/ebet/internal/timex"
)

// JsonConfig is the on-disk form of Config. Pointer fields distinguish an
// absent key from a zero value; durations accept "15m" or nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	ResolveAccounts             *bool           `json:"resolve_accounts"`
	ProtectedMethods            []string        `json:"protected_methods"`
	LogFormat                   *string         `json:"log_format"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJSON loads the file named by -c / -config, if any, over cfg.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&cfg.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&cfg.DatabaseDSN, c.DatabaseDSN)
	setString(&cfg.SecretKey, c.SecretKey)
	setString(&cfg.LogFormat, c.LogFormat)
	setString(&cfg.LogLevel, c.LogLevel)
	if c.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ResolveAccounts != nil {
		cfg.ResolveAccounts = *c.ResolveAccounts
	}
	if c.ProtectedMethods != nil {
		cfg.ProtectedMethods = c.ProtectedMethods
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
