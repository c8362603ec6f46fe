package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "8090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("Backend.Timeout = %s", cfg.Backend.Timeout)
	}
	if cfg.Session.Store != StoreFile {
		t.Errorf("Session.Store = %q", cfg.Session.Store)
	}
	if cfg.Upload.MaxBytes != 5<<20 {
		t.Errorf("Upload.MaxBytes = %d", cfg.Upload.MaxBytes)
	}
	if !cfg.Development() {
		t.Error("default env should be development")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":             "production",
		"BACKEND_URL":     "https://api.carenet.example",
		"BACKEND_TIMEOUT": "3s",
		"SESSION_STORE":   "redis",
		"REDIS_DB":        "2",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Development() || cfg.Backend.URL != "https://api.carenet.example" || cfg.Backend.Timeout != 3*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Session.Store != StoreRedis || cfg.Redis.DB != 2 {
		t.Fatalf("unexpected session config: %+v %+v", cfg.Session, cfg.Redis)
	}
}

func TestLoadFrom_Rejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown store", map[string]string{"SESSION_STORE": "cookie"}, "SESSION_STORE"},
		{"zero timeout", map[string]string{"BACKEND_TIMEOUT": "0s"}, "BACKEND_TIMEOUT"},
		{"negative upload", map[string]string{"UPLOAD_MAX_BYTES": "-1"}, "UPLOAD_MAX_BYTES"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
