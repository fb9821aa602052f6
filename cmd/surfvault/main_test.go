package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pysugar/surfvault/internal/config"
	"github.com/pysugar/surfvault/internal/store"
	"github.com/pysugar/surfvault/internal/store/models"
)

// runCLI executes the root command against a fresh data directory.
func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvDataDir, dataDir)
	t.Setenv(config.EnvAdminKey, "")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dataDir, "config.yaml")}, args...))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func seedAccounts(t *testing.T, dataDir string, emails ...string) {
	t.Helper()
	s, err := store.Open(dataDir, store.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range emails {
		if _, err := s.AddAccount(models.Account{Email: e}); err != nil {
			t.Fatal(err)
		}
	}
}

func TestAccountsList_JSON(t *testing.T) {
	dir := t.TempDir()
	seedAccounts(t, dir, "b@example.com", "a@example.com")

	out, err := runCLI(t, dir, "accounts", "list", "--format", "json", "--sort", "email")
	if err != nil {
		t.Fatalf("accounts list: %v\n%s", err, out)
	}
	var entries []accountOutputEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(entries) != 2 || entries[0].Email != "a@example.com" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestBackupCreateAndList(t *testing.T) {
	dir := t.TempDir()
	seedAccounts(t, dir, "a@example.com")

	out, err := runCLI(t, dir, "backup", "create")
	if err != nil {
		t.Fatalf("backup create: %v\n%s", err, out)
	}
	name := filepath.Base(strings.TrimSpace(out))

	out, err = runCLI(t, dir, "backup", "list")
	if err != nil {
		t.Fatalf("backup list: %v", err)
	}
	if !strings.Contains(out, name) {
		t.Fatalf("backup list should show %s:\n%s", name, out)
	}

	if _, err := runCLI(t, dir, "backup", "restore", name); err != nil {
		t.Fatalf("backup restore: %v", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	if _, err := runCLI(t, t.TempDir(), "accounts", "list", "--format", "xml"); err == nil {
		t.Fatal("expected invalid format error")
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.in); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
