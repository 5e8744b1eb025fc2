// Copyright (C) 2025 Planet Nine
//
// This file is part of fount-go.
//
// fount-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// fount-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with fount-go.  If not, see <https://www.gnu.org/licenses/>.

package config

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/planet-nine-app/fount-go/pkg/client"
	"github.com/planet-nine-app/fount-go/pkg/sessionless"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Environment variables read by Load
const (
	EnvBaseURL    = "FOUNT_BASE_URL"
	EnvPrivateKey = "FOUNT_PRIVATE_KEY"
	EnvTimeout    = "FOUNT_TIMEOUT"
	EnvLogLevel   = "FOUNT_LOG_LEVEL"
	EnvListenAddr = "FOUNT_LISTEN_ADDR"
)

// Config holds the settings of a fount client and of the mock server
type Config struct {
	BaseURL    string        `mapstructure:"baseURL"`
	PrivateKey string        `mapstructure:"privateKey"`
	Timeout    time.Duration `mapstructure:"timeout"`
	LogLevel   string        `mapstructure:"logLevel"`
	ListenAddr string        `mapstructure:"listenAddr"`
}

// New returns a viper instance with fount defaults and environment bindings
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("baseURL", client.DefaultBaseURL)
	v.SetDefault("privateKey", "")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("logLevel", "info")
	v.SetDefault("listenAddr", "127.0.0.1:3006")

	_ = v.BindEnv("baseURL", EnvBaseURL)
	_ = v.BindEnv("privateKey", EnvPrivateKey)
	_ = v.BindEnv("timeout", EnvTimeout)
	_ = v.BindEnv("logLevel", EnvLogLevel)
	_ = v.BindEnv("listenAddr", EnvListenAddr)
	return v
}

// Load reads the YAML file at path, when given, and the FOUNT_*
// environment. Environment values win over the file.
func Load(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot default
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("baseURL is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel: %w", err)
	}
	return nil
}

// NewLogger builds a production zap logger at level
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}

// KeyPair returns the configured identity, or a fresh one when no
// private key is set
func (c *Config) KeyPair() (*sessionless.Secp256k1KeyPair, error) {
	if c.PrivateKey == "" {
		return sessionless.GenerateKeyPair()
	}
	keyPair, err := sessionless.KeyPairFromHex(c.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("invalid privateKey: %w", err)
	}
	return keyPair, nil
}

// NewClient builds a fount client from the configuration. opts are applied
// after the configured ones.
func (c *Config) NewClient(logger *zap.Logger, opts ...client.Option) (*client.Client, error) {
	keyPair, err := c.KeyPair()
	if err != nil {
		return nil, err
	}

	base := []client.Option{
		client.WithBaseURL(c.BaseURL),
		client.WithHTTPClient(&http.Client{Timeout: c.Timeout}),
		client.WithLogger(logger),
	}
	return client.New(keyPair, append(base, opts...)...)
}
