package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunRecipeEnhancedSDES(t *testing.T) {
	dir := t.TempDir()
	res := runCLI(t, "", "recipe", "run", "--dir", dir,
		"--param", "key=0010010111", "--param", "trans_key=3,1,2",
		"enhanced-sdes", "DIDYOUSEE")
	if res.code != 0 {
		t.Fatalf("recipe run exit code %d: %s", res.code, res.stderr)
	}
	if got := strings.TrimSpace(res.stdout); got != "CF4A218C4C8C7C827C" {
		t.Fatalf("unexpected output %q", got)
	}

	res = runCLI(t, "", "recipe", "run", "--dir", dir, "--reverse",
		"--param", "key=0010010111", "--param", "trans_key=3,1,2",
		"enhanced-sdes", "CF4A218C4C8C7C827C")
	if got := strings.TrimSpace(res.stdout); res.code != 0 || got != "DIDYOUSEE" {
		t.Fatalf("unexpected reverse output %q (code %d): %s", got, res.code, res.stderr)
	}
}

func TestRunRecipeRunErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "missing name", args: []string{"recipe", "run", "--dir", dir}, code: 2},
		{name: "unknown recipe", args: []string{"recipe", "run", "--dir", dir, "nope", "x"}, code: 1},
		{name: "missing key", args: []string{"recipe", "run", "--dir", dir, "--param", "trans_key=2,1", "enhanced-sdes", "x"}, code: 1},
		{name: "malformed param", args: []string{"recipe", "run", "--dir", dir, "--param", "oops", "enhanced-sdes", "x"}, code: 2},
		{name: "unknown subcommand", args: []string{"recipe", "frob"}, code: 2},
		{name: "no subcommand", args: []string{"recipe"}, code: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if res := runCLI(t, "", tt.args...); res.code != tt.code {
				t.Fatalf("expected exit code %d, got %d: %s", tt.code, res.code, res.stderr)
			}
		})
	}
}

func TestRunRecipeExportImportDelete(t *testing.T) {
	dir := t.TempDir()
	exported := filepath.Join(t.TempDir(), "recipe.yml")

	res := runCLI(t, "", "recipe", "export", "--dir", dir, "--out", exported, "enhanced-sdes")
	if res.code != 0 {
		t.Fatalf("export exit code %d: %s", res.code, res.stderr)
	}
	data, err := os.ReadFile(exported)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	renamed := strings.Replace(string(data), "name: enhanced-sdes", "name: my-sdes", 1)
	if err := os.WriteFile(exported, []byte(renamed), 0o644); err != nil {
		t.Fatalf("rewrite export: %v", err)
	}

	res = runCLI(t, "", "recipe", "import", "--dir", dir, exported)
	if res.code != 0 || !strings.Contains(res.stdout, "imported recipe my-sdes") {
		t.Fatalf("import failed (code %d): %s %s", res.code, res.stdout, res.stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "my-sdes.json")); err != nil {
		t.Fatalf("imported recipe not stored: %v", err)
	}

	res = runCLI(t, "", "recipe", "list", "--dir", dir)
	if res.code != 0 || !strings.Contains(res.stdout, "my-sdes") || !strings.Contains(res.stdout, "enhanced-sdes") {
		t.Fatalf("unexpected list output (code %d):\n%s", res.code, res.stdout)
	}

	res = runCLI(t, "", "recipe", "list", "--dir", dir, "--search", "MY-")
	if strings.Contains(res.stdout, "enhanced-sdes") || !strings.Contains(res.stdout, "my-sdes") {
		t.Errorf("search should only list my-sdes:\n%s", res.stdout)
	}

	res = runCLI(t, "", "recipe", "show", "--dir", dir, "my-sdes")
	if res.code != 0 || !strings.Contains(res.stdout, "- name: row_shift") {
		t.Errorf("unexpected show output (code %d):\n%s", res.code, res.stdout)
	}

	res = runCLI(t, "", "recipe", "run", "--dir", dir, "--param", "key=0010010111", "--param", "trans_key=3,1,2", "my-sdes", "DIDYOUSEE")
	if got := strings.TrimSpace(res.stdout); got != "CF4A218C4C8C7C827C" {
		t.Errorf("imported recipe gave %q: %s", got, res.stderr)
	}

	res = runCLI(t, "", "recipe", "delete", "--dir", dir, "my-sdes")
	if res.code != 0 {
		t.Fatalf("delete exit code %d: %s", res.code, res.stderr)
	}
	if res := runCLI(t, "", "recipe", "delete", "--dir", dir, "enhanced-sdes"); res.code != 1 {
		t.Errorf("deleting the built-in recipe should fail, got code %d", res.code)
	}
	if res := runCLI(t, "", "recipe", "show", "--dir", dir, "my-sdes"); res.code != 1 {
		t.Errorf("deleted recipe should not be found, got code %d", res.code)
	}
}
