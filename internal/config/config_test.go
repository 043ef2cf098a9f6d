package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RowanDark/esdes/internal/esdes"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })
}

func TestLoadPrecedence(t *testing.T) {
	tempDir := t.TempDir()

	homeDir := filepath.Join(tempDir, "home")
	configDir := filepath.Join(homeDir, ".esdes")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	homeConfig := []byte(`rounds: 4
columns: 5
recipes_dir: /home/recipes
tracing:
  service_name: home-service
  sample_ratio: 0.5
`)
	if err := os.WriteFile(filepath.Join(configDir, "config.yml"), homeConfig, 0o644); err != nil {
		t.Fatalf("write home config: %v", err)
	}

	// The local file overrides the home file.
	workDir := filepath.Join(tempDir, "work")
	if err := os.Mkdir(workDir, 0o755); err != nil {
		t.Fatalf("mkdir work: %v", err)
	}
	localConfig := []byte(`columns: 7
trace: normal
tracing:
  file: spans.jsonl
`)
	if err := os.WriteFile(filepath.Join(workDir, "esdes.yml"), localConfig, 0o644); err != nil {
		t.Fatalf("write local config: %v", err)
	}

	// Env overrides beat file configuration.
	t.Setenv("ESDES_WORKERS", "4")
	t.Setenv("ESDES_AUDIT_LOG", "/var/log/esdes.jsonl")
	t.Setenv("ESDES_TRACE_SAMPLE_RATIO", "0.25")

	chdir(t, workDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	want := Config{
		Rounds:     4,
		Columns:    7,
		Trace:      "normal",
		Workers:    4,
		RecipesDir: "/home/recipes",
		AuditLog:   "/var/log/esdes.jsonl",
		Tracing: TracingConfig{
			File:        "spans.jsonl",
			SampleRatio: 0.25,
			ServiceName: "home-service",
		},
	}
	if cfg != want {
		t.Fatalf("unexpected config:\n got %#v\nwant %#v", cfg, want)
	}
	if cfg.Level() != esdes.LevelNormal {
		t.Errorf("expected normal level, got %s", cfg.Level())
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg != Default() {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestLoadTraceVariable(t *testing.T) {
	t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
	chdir(t, t.TempDir())

	t.Setenv("ESDES_PROGRESS", "normal")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Level() != esdes.LevelNone {
		t.Errorf("ESDES_PROGRESS is not a config variable, got trace %s", cfg.Trace)
	}

	t.Setenv("ESDES_TRACE", "detailed")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Level() != esdes.LevelDetailed {
		t.Errorf("expected detailed from ESDES_TRACE, got %s", cfg.Trace)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		file  string
		env   map[string]string
		match string
	}{
		{name: "zero rounds", file: "rounds: 0\n", match: "rounds"},
		{name: "too many columns", env: map[string]string{"ESDES_COLUMNS": "27"}, match: "columns"},
		{name: "unknown trace level", env: map[string]string{"ESDES_TRACE": "loud"}, match: "trace level"},
		{name: "negative workers", file: "workers: -1\n", match: "workers"},
		{name: "non numeric env", env: map[string]string{"ESDES_ROUNDS": "two"}, match: "ESDES_ROUNDS"},
		{name: "bad ratio", file: "tracing:\n  sample_ratio: 2\n", match: "sample_ratio"},
		{name: "unknown key", file: "server_addr: 127.0.0.1\n", match: "server_addr"},
		{name: "malformed yaml", file: "rounds: [\n", match: "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", filepath.Join(t.TempDir(), "home"))
			work := t.TempDir()
			chdir(t, work)
			if tt.file != "" {
				if err := os.WriteFile(filepath.Join(work, "esdes.yml"), []byte(tt.file), 0o644); err != nil {
					t.Fatalf("write config: %v", err)
				}
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.match) {
				t.Errorf("expected %q in error, got %v", tt.match, err)
			}
		})
	}
}

func TestValidateTraceLevel(t *testing.T) {
	cfg := Default()
	cfg.Trace = "chatty"
	if err := cfg.Validate(); !errors.Is(err, esdes.ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}
}

func TestRecipesPath(t *testing.T) {
	home := filepath.Join(t.TempDir(), "home")
	t.Setenv("HOME", home)

	cfg := Default()
	got, err := cfg.RecipesPath()
	if err != nil {
		t.Fatalf("RecipesPath: %v", err)
	}
	if got != filepath.Join(home, ".esdes", "recipes") {
		t.Errorf("unexpected default recipes path %s", got)
	}

	cfg.RecipesDir = "/srv/recipes"
	if got, _ := cfg.RecipesPath(); got != "/srv/recipes" {
		t.Errorf("expected explicit path, got %s", got)
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().WriteYAML(&buf); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	for _, want := range []string{"rounds: 2", "columns: 3", "trace: none", "service_name: esdes"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected %q in:\n%s", want, buf.String())
		}
	}

	// the rendered file loads back to the same values
	cfg := Config{}
	if err := applyFileConfig(&cfg, buf.Bytes()); err != nil {
		t.Fatalf("applyFileConfig: %v", err)
	}
	if cfg != Default() {
		t.Errorf("round trip changed config: %#v", cfg)
	}
}
