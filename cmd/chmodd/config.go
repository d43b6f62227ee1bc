package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"

	goChmod "github.com/xvzf/goChmod"
)

type fileConfig struct {
	Debug bool   `mapstructure:"debug"`
	Bind  string `mapstructure:"bind"`

	Redis struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"redis"`

	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`

	// Groups maps user names to group names for the static resolver.
	Groups map[string][]string `mapstructure:"groups"`

	Chmod goChmod.Config `mapstructure:"chmod"`
}

func loadConfig(c *cli.Context) (*fileConfig, error) {
	v := viper.New()

	def := goChmod.DefaultConfig()
	v.SetDefault("bind", "127.0.0.1:8080")
	v.SetDefault("debug", false)
	// keys without a default are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("redis.addr", "")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", time.Hour)
	v.SetDefault("chmod.denial.status", def.Denial.Status)
	v.SetDefault("chmod.denial.unauthenticated_status", def.Denial.UnauthenticatedStatus)
	v.SetDefault("chmod.cache.enabled", true)
	v.SetDefault("chmod.cache.redis_prefix", def.Cache.RedisPrefix)
	v.SetDefault("chmod.cache.ttl", 5*time.Minute)
	v.SetDefault("chmod.cache.local_enabled", true)
	v.SetDefault("chmod.cache.local_size", def.Cache.LocalSize)
	v.SetDefault("chmod.cache.local_ttl", def.Cache.LocalTTL)
	v.SetDefault("chmod.audit.enabled", true)
	v.SetDefault("chmod.audit.buffer_size", def.Audit.BufferSize)
	v.SetDefault("chmod.audit.drop_if_full", def.Audit.DropIfFull)
	v.SetDefault("chmod.metrics.enabled", true)
	v.SetDefault("chmod.metrics.enable_latency_histograms", true)

	v.SetEnvPrefix("CHMOD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := c.String("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %q: %w", path, err)
		}
	}

	var cfg fileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	if c.Bool("debug") {
		cfg.Debug = true
	}
	if err := cfg.Chmod.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}
	return &cfg, nil
}

// staticGroups resolves memberships from the config file.
type staticGroups map[string][]string

func (g staticGroups) GroupsForUser(_ context.Context, user string) ([]string, error) {
	return g[user], nil
}
