// CLASSIFICATION: COMMUNITY
// Filename: config.go v0.1
// Author: Lukas Bower
// Date Modified: 2026-10-17
// License: SPDX-License-Identifier: MIT OR Apache-2.0

// Package config loads pubserve settings from defaults, an optional .env
// file, an optional TOML or YAML file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envBind       = "PUBSERVE_BIND"
	envPort       = "PORT"
	envRoot       = "PUBSERVE_ROOT"
	envLogFile    = "PUBSERVE_LOG_FILE"
	envAdminPort  = "PUBSERVE_ADMIN_PORT"
	envHealthPort = "PUBSERVE_HEALTH_PORT"

	// DefaultPort is the plain HTTP port.
	DefaultPort = 80
	DefaultRoot = "public"
)

var (
	ErrInvalidPort = errors.New("invalid port")
	ErrRootNotDir  = errors.New("root is not a directory")
)

// Config holds every process-wide setting.
type Config struct {
	Server ServerConfig `toml:"server" yaml:"server"`
	Admin  AdminConfig  `toml:"admin" yaml:"admin"`
}

// ServerConfig configures the public file listener.
type ServerConfig struct {
	Bind    string  `toml:"bind" yaml:"bind"`
	Port    int     `toml:"port" yaml:"port"`
	Root    string  `toml:"root" yaml:"root"`
	LogFile string  `toml:"log_file" yaml:"log_file"`
	Dev     bool    `toml:"dev" yaml:"dev"`
	Rate    float64 `toml:"rate" yaml:"rate"` // requests per second, 0 disables
	Burst   int     `toml:"burst" yaml:"burst"`
	Watch   bool    `toml:"watch" yaml:"watch"`
}

// AdminConfig configures the optional status and health listeners. A zero
// port disables the listener.
type AdminConfig struct {
	Port       int `toml:"port" yaml:"port"`
	HealthPort int `toml:"health_port" yaml:"health_port"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Bind: "0.0.0.0",
			Port: DefaultPort,
			Root: DefaultRoot,
		},
	}
}

// Load builds a configuration. path may be empty; a .env file in the working
// directory is read when present and never overrides variables already set.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(envBind)); v != "" {
		c.Server.Bind = v
	}
	if v := strings.TrimSpace(os.Getenv(envRoot)); v != "" {
		c.Server.Root = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogFile)); v != "" {
		c.Server.LogFile = v
	}
	ports := []struct {
		key string
		dst *int
	}{
		{envPort, &c.Server.Port},
		{envAdminPort, &c.Admin.Port},
		{envHealthPort, &c.Admin.HealthPort},
	}
	for _, p := range ports {
		v := strings.TrimSpace(os.Getenv(p.key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", p.key, v, ErrInvalidPort)
		}
		*p.dst = n
	}
	return nil
}

// Validate checks the settings that must hold before any listener starts.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d: %w", c.Server.Port, ErrInvalidPort)
	}
	if c.Admin.Port < 0 || c.Admin.Port > 65535 {
		return fmt.Errorf("admin port %d: %w", c.Admin.Port, ErrInvalidPort)
	}
	if c.Admin.HealthPort < 0 || c.Admin.HealthPort > 65535 {
		return fmt.Errorf("health port %d: %w", c.Admin.HealthPort, ErrInvalidPort)
	}
	if c.Server.Rate < 0 || c.Server.Burst < 0 {
		return errors.New("rate and burst must not be negative")
	}
	info, err := os.Stat(c.Server.Root)
	if err != nil {
		return fmt.Errorf("root %q: %w", c.Server.Root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%q: %w", c.Server.Root, ErrRootNotDir)
	}
	return nil
}

// ServerAddress returns the public listen address.
func (c *Config) ServerAddress() string {
	return net.JoinHostPort(c.Server.Bind, strconv.Itoa(c.Server.Port))
}
