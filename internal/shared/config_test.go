package shared

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "HTTP_ADDR", "STORAGE_DRIVER", "MAX_NIGHTS", "CACHE_TTL_SECONDS",
		"TOKEN_EXPIRE_DAYS", "TOKEN_HASH_KEY", "TOKEN_BLOCK_KEY", "MAIL_TRANSPORT", "MAIL_RELAY_URL", "MIGRATE_ON_START", "REDIS_DB"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.MaxNights != 3 || cfg.StorageDriver != "mysql" || cfg.Mail.Transport != "log" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.CacheTTL != 900*time.Second || cfg.Token.TTL != 30*24*time.Hour {
		t.Fatalf("unexpected durations: %v %v", cfg.CacheTTL, cfg.Token.TTL)
	}
	if len(cfg.Token.HashKey) != 32 || len(cfg.Token.BlockKey) != 32 {
		t.Fatalf("ephemeral keys should be generated")
	}
	if !cfg.Token.SecureCookie {
		t.Fatalf("prod default must set Secure cookies")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	t.Setenv("APP_ENV", "dev")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("MAX_NIGHTS", "5")
	t.Setenv("TOKEN_HASH_KEY", key)
	t.Setenv("TOKEN_BLOCK_KEY", key)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MaxNights != 5 || cfg.StorageDriver != "memory" || !cfg.Dev() || cfg.Token.SecureCookie {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if string(cfg.Token.HashKey) != "0123456789abcdef0123456789abcdef" {
		t.Fatalf("key not decoded")
	}
}

func TestLoad_CollectsErrors(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_NIGHTS", "three")
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("MAIL_TRANSPORT", "relay")
	t.Setenv("MAIL_RELAY_URL", "")
	t.Setenv("TOKEN_HASH_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	t.Setenv("MIGRATE_ON_START", "sometimes")
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	if err == nil {
		t.Fatalf("expected an error")
	}
	for _, want := range []string{"MAX_NIGHTS", "STORAGE_DRIVER", "MAIL_RELAY_URL", "TOKEN_HASH_KEY", "MIGRATE_ON_START", "REDIS_DB"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}
