package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DataDir != "data" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "data")
	}
	if want := filepath.Join("data", "backups"); cfg.BackupDir != want {
		t.Errorf("BackupDir = %q, want %q", cfg.BackupDir, want)
	}
	if cfg.Reddit.BaseURL != "https://www.reddit.com" {
		t.Errorf("Reddit.BaseURL = %q", cfg.Reddit.BaseURL)
	}
	if cfg.UpdateWindow() != 168*time.Hour {
		t.Errorf("UpdateWindow() = %v, want 168h", cfg.UpdateWindow())
	}
	if cfg.RedditTimeout() != 30*time.Second {
		t.Errorf("RedditTimeout() = %v, want 30s", cfg.RedditTimeout())
	}
	if cfg.Resolver.MinSimilarity != 0.8 {
		t.Errorf("Resolver.MinSimilarity = %v, want 0.8", cfg.Resolver.MinSimilarity)
	}
	if !cfg.Resolver.FetchPages {
		t.Error("Resolver.FetchPages should default to true")
	}
	if cfg.Zotero.LibraryType != "group" {
		t.Errorf("Zotero.LibraryType = %q, want %q", cfg.Zotero.LibraryType, "group")
	}
}

func TestLoadZoteroKeyFromEnv(t *testing.T) {
	viper.Reset()
	t.Setenv("ZOTERO_API_KEY", "secret")
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Zotero.APIKey != "secret" {
		t.Errorf("Zotero.APIKey = %q, want %q", cfg.Zotero.APIKey, "secret")
	}
}

func TestLoadExplicitBackupDir(t *testing.T) {
	viper.Reset()
	SetDefaults()
	viper.Set("backup_dir", "/srv/backups/lectio")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.BackupDir != "/srv/backups/lectio" {
		t.Errorf("BackupDir = %q, want the explicit value", cfg.BackupDir)
	}
}
