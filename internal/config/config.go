// Package config 启动时一次性读取配置，结果以值的形式传入各组件。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"prophet/internal/boundedcontext"
)

const (
	DefaultBoundedContextHost    = "127.0.0.1"
	DefaultBoundedContextPort    = 8080
	DefaultBoundedContextTimeout = 30 * time.Second
	DefaultListenAddr            = ":8081"
)

// Config 进程配置
type Config struct {
	BoundedContextHost    string
	BoundedContextPort    int
	BoundedContextTimeout time.Duration
	UseWuPalmer           bool
	ListenAddr            string
	MetricsEnabled        bool
	LogLevel              string
}

// Default 默认配置
func Default() Config {
	return Config{
		BoundedContextHost:    DefaultBoundedContextHost,
		BoundedContextPort:    DefaultBoundedContextPort,
		BoundedContextTimeout: DefaultBoundedContextTimeout,
		ListenAddr:            DefaultListenAddr,
		LogLevel:              "info",
	}
}

// Load 读取 .env（不存在时忽略）和环境变量
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv 只读取环境变量
func FromEnv() (Config, error) {
	cfg := Default()

	if v := getenv("BOUNDED_CONTEXT_HOST"); v != "" {
		cfg.BoundedContextHost = v
	}
	if v := getenv("BOUNDED_CONTEXT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("BOUNDED_CONTEXT_PORT 无效: %q", v)
		}
		cfg.BoundedContextPort = port
	}
	if v := getenv("BOUNDED_CONTEXT_TIMEOUT"); v != "" {
		d, err := ParseTimeout(v)
		if err != nil {
			return cfg, fmt.Errorf("BOUNDED_CONTEXT_TIMEOUT 无效: %w", err)
		}
		cfg.BoundedContextTimeout = d
	}
	cfg.UseWuPalmer = truthy(getenv("USE_WU_PALMER"))

	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	} else if v := getenv("PORT"); v != "" {
		cfg.ListenAddr = ":" + v
	}

	cfg.MetricsEnabled = truthy(getenv("METRICS_PROMETHEUS"))
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg, nil
}

// ParseTimeout 支持 Go duration（"45s"）或整数秒（"45"）
func ParseTimeout(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("无法解析超时 %q", v)
	}
	return time.Duration(n) * time.Second, nil
}

// BoundedContextURL 限界上下文服务地址
func (c Config) BoundedContextURL() string {
	return c.BoundedContext().URL()
}

// BoundedContext 限界上下文客户端配置
func (c Config) BoundedContext() boundedcontext.Config {
	return boundedcontext.Config{
		Host:    c.BoundedContextHost,
		Port:    c.BoundedContextPort,
		Timeout: c.BoundedContextTimeout,
	}
}

func getenv(k string) string {
	return strings.TrimSpace(os.Getenv(k))
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
