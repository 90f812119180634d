// Package config 加载 evrank 的运行配置：YAML 文件 + 环境变量覆盖。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 是 evrank 的配置结构。
type Config struct {
	Store StoreConfig `yaml:"store"`
	HTTP  HTTPConfig  `yaml:"http"`
	Log   LogConfig   `yaml:"log"`
	UI    UIConfig    `yaml:"ui"`
}

// StoreConfig 是系数存储的配置。
type StoreConfig struct {
	Backend       string `yaml:"backend"`         // redis | memory
	URL           string `yaml:"url"`             // redis:// 或 rediss://（Upstash）
	KeyPrefix     string `yaml:"key_prefix"`      // 默认 "params:"
	DialTimeoutMs int    `yaml:"dial_timeout_ms"` // 0 = go-redis 默认
	ReadTimeoutMs int    `yaml:"read_timeout_ms"` // 0 = go-redis 默认
}

// HTTPConfig 是 Web UI 的配置。
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig 是日志配置。
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// UIConfig 是展示层配置。
type UIConfig struct {
	RoundPlaces int `yaml:"round_places"` // Web UI 展示时保留的小数位
}

// 环境变量
const (
	EnvRedisURL   = "EVRANK_REDIS_URL"
	EnvUpstashURL = "UPSTASH_REDIS_URL"
	EnvHTTPAddr   = "EVRANK_HTTP_ADDR"
	EnvLogLevel   = "EVRANK_LOG_LEVEL"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:       BackendRedis,
			KeyPrefix:     "params:",
			DialTimeoutMs: 3000,
			ReadTimeoutMs: 2000,
		},
		HTTP: HTTPConfig{Addr: ":7860"},
		Log:  LogConfig{Level: "info"},
		UI:   UIConfig{RoundPlaces: 4},
	}
}

// Load 读取配置文件（path 为空时只使用默认值），然后应用环境变量覆盖并校验。
// 文件不存在不算错误。
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse yaml: %w", err)
			}
		}
	}
	cfg.applyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvUpstashURL); v != "" {
		c.Store.URL = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Store.URL = v
	}
	if v := getenv(EnvHTTPAddr); v != "" {
		c.HTTP.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate 校验配置。
func (c *Config) Validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case BackendRedis:
		if c.Store.URL == "" {
			return fmt.Errorf("store.url is required for backend %q (or set %s)", BackendRedis, EnvRedisURL)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unsupported store backend %q (supported: %s, %s)", c.Store.Backend, BackendRedis, BackendMemory)
	}
	if c.Store.DialTimeoutMs < 0 || c.Store.ReadTimeoutMs < 0 {
		return errors.New("store timeouts must not be negative")
	}
	if c.UI.RoundPlaces < 0 {
		return errors.New("ui.round_places must not be negative")
	}
	return nil
}

func (s StoreConfig) DialTimeout() time.Duration {
	return time.Duration(s.DialTimeoutMs) * time.Millisecond
}

func (s StoreConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutMs) * time.Millisecond
}
