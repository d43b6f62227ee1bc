package main

import (
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"
)

func testContext(t *testing.T, configPath string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", "", "")
	set.Bool("debug", false, "")
	if configPath != "" {
		if err := set.Set("config", configPath); err != nil {
			t.Fatalf("set flag: %v", err)
		}
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(testContext(t, ""))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Bind != "127.0.0.1:8080" {
		t.Fatalf("unexpected bind %q", cfg.Bind)
	}
	if cfg.Chmod.Denial.Status != http.StatusForbidden || !cfg.Chmod.Cache.Enabled {
		t.Fatalf("unexpected chmod config %+v", cfg.Chmod)
	}
	if cfg.Chmod.Cache.TTL != 5*time.Minute {
		t.Fatalf("unexpected cache ttl %s", cfg.Chmod.Cache.TTL)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chmodd.yml")
	body := `
bind: ":9090"
jwt:
  secret: s3cret
  ttl: 15m
groups:
  alice: [staff, ops]
chmod:
  denial:
    status: 404
  cache:
    ttl: 30s
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(testContext(t, path))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Bind != ":9090" || cfg.JWT.Secret != "s3cret" || cfg.JWT.TTL != 15*time.Minute {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := cfg.Groups["alice"]; len(got) != 2 || got[1] != "ops" {
		t.Fatalf("unexpected groups %v", cfg.Groups)
	}
	if cfg.Chmod.Denial.Status != http.StatusNotFound || cfg.Chmod.Cache.TTL != 30*time.Second {
		t.Fatalf("unexpected chmod config %+v", cfg.Chmod)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("CHMOD_CHMOD_DENIAL_STATUS", "200")

	if _, err := loadConfig(testContext(t, "")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadConfigEnvWithoutFile(t *testing.T) {
	t.Setenv("CHMOD_JWT_SECRET", "s3cret")
	t.Setenv("CHMOD_REDIS_ADDR", "10.0.0.1:6379")
	t.Setenv("CHMOD_BIND", ":7070")

	cfg, err := loadConfig(testContext(t, ""))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Fatalf("expected jwt secret from env, got %q", cfg.JWT.Secret)
	}
	if cfg.Redis.Addr != "10.0.0.1:6379" {
		t.Fatalf("expected redis addr from env, got %q", cfg.Redis.Addr)
	}
	if cfg.Bind != ":7070" {
		t.Fatalf("expected bind from env, got %q", cfg.Bind)
	}
	if _, err := newTokenManager(cfg); err != nil {
		t.Fatalf("newTokenManager with env secret: %v", err)
	}
}
