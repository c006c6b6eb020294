package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// setHome points HOME at a fresh temp dir and returns ~/.roster inside it.
func setHome(t *testing.T, create bool) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".roster")
	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadDotEnv_NotExist(t *testing.T) {
	setHome(t, false)

	m, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
}

func TestLoadDotEnv_ParsesKeyValue(t *testing.T) {
	dir := setHome(t, true)
	body := "# comment\nA=1\n  B = two\nnot a pair\n=orphan\nC=x=y\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	m, err := LoadDotEnv()
	if err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if m["A"] != "1" || m["B"] != " two" || m["C"] != "x=y" {
		t.Fatalf("unexpected map: %v", m)
	}
	if len(m) != 3 {
		t.Fatalf("expected 3 keys, got %v", m)
	}
}

func TestGetConfigValue_EnvOverridesDotEnv(t *testing.T) {
	dir := setHome(t, true)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("K=fromdotenv\nJ=onlydotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("K", "fromenv")

	if v, err := GetConfigValue("K"); err != nil || v != "fromenv" {
		t.Fatalf("expected env override, got %q (%v)", v, err)
	}
	if v, err := GetConfigValue("J"); err != nil || v != "onlydotenv" {
		t.Fatalf("expected dotenv fallback, got %q (%v)", v, err)
	}
}

func TestEnsureDotEnvTemplate_DoesNotOverwrite(t *testing.T) {
	dir := setHome(t, true)
	p := filepath.Join(dir, ".env")
	if err := os.WriteFile(p, []byte("ROSTER_SENTINEL=keep\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDotEnvTemplate(); err != nil {
		t.Fatalf("EnsureDotEnvTemplate: %v", err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "ROSTER_SENTINEL=keep\n" {
		t.Fatalf("template overwrote existing file: %q", string(b))
	}
}

func TestEnsureDotEnvTemplate_CreatesWhenMissing(t *testing.T) {
	dir := setHome(t, false)

	if err := EnsureDotEnvTemplate(); err != nil {
		t.Fatalf("EnsureDotEnvTemplate: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range EnvKeys {
		if !strings.Contains(string(b), k+"=\n") {
			t.Fatalf("template is missing %s: %q", k, string(b))
		}
	}
}
