package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hazyhaar/reelkeeper/overlay"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, k := range []string{EnvConfig, EnvDownloadDir, EnvSessionID, EnvResolverURL} {
		t.Setenv(k, "")
	}
	// godotenv reads .env from the working directory.
	t.Chdir(dir)
	return dir
}

func TestLoad_NoFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("path: %q", cfg.Path)
	}
	if cfg.Listen != DefaultListen || cfg.Naming != "shortcode" || cfg.PrefsPoll != time.Second {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.DownloadDir != filepath.Join(dir, "Downloads", "reelkeeper") {
		t.Errorf("download dir: %q", cfg.DownloadDir)
	}
	if cfg.Browser.StartURL == "" || cfg.Browser.Profile == "" {
		t.Errorf("browser defaults: %+v", cfg.Browser)
	}
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "rk.yaml")
	yml := `
download_dir: /tmp/reels
naming: timestamp
overlay:
  enforce_limit: 3
  frame: 50ms
  labels:
    like: ["Gefällt mir nicht mehr"]
browser:
  remote: ws://127.0.0.1:9222/devtools/browser/x
  headless: true
resolver:
  doc_id: "123"
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path || cfg.DownloadDir != "/tmp/reels" || cfg.Naming != "timestamp" {
		t.Errorf("file values: %+v", cfg)
	}
	if cfg.Overlay.EnforceLimit != 3 || cfg.Overlay.Frame != 50*time.Millisecond {
		t.Errorf("overlay: %+v", cfg.Overlay)
	}
	if got := cfg.Overlay.Session().Labels[overlay.ActionLike]; len(got) != 1 {
		t.Errorf("labels: %v", got)
	}
	if !cfg.Browser.Headless || cfg.Browser.Profile != "" {
		t.Errorf("remote browser got a profile: %+v", cfg.Browser)
	}
	if cfg.Resolver.DocID != "123" {
		t.Errorf("resolver: %+v", cfg.Resolver)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "rk.yaml")
	if err := os.WriteFile(path, []byte("download_dir: /from/file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvConfig, path)
	t.Setenv(EnvDownloadDir, "/from/env")
	t.Setenv(EnvSessionID, "sess")
	t.Setenv(EnvResolverURL, "http://127.0.0.1:9000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DownloadDir != "/from/env" || cfg.SessionID != "sess" || cfg.ResolverURL != "http://127.0.0.1:9000" {
		t.Errorf("env overrides: %+v", cfg)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("REELKEEPER_DOWNLOAD_DIR=/from/dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv never overrides a variable that is already set.
	os.Unsetenv(EnvDownloadDir)
	t.Cleanup(func() { os.Unsetenv(EnvDownloadDir) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DownloadDir != "/from/dotenv" {
		t.Errorf("download dir: %q", cfg.DownloadDir)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing explicit file accepted")
	}
	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("overlay: [not a map"), 0o600)
	if _, err := Load(bad); err == nil {
		t.Error("malformed yaml accepted")
	}
}
