package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pysugar/surfvault/internal/store/models"
)

func seedStore(t *testing.T, s *Store) {
	t.Helper()
	if err := s.AddGroup("team"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddTag(models.GlobalTag{Name: "vip"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddAccount(models.Account{Email: "a@example.com", Group: "team", Tags: []string{"vip"}, APIKey: "key-a"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddAccount(models.Account{Email: "b@example.com", RefreshToken: "rt-b"}); err != nil {
		t.Fatal(err)
	}
	settings := s.GetSettings()
	settings.PrivacyMode = true
	if err := s.UpdateSettings(settings); err != nil {
		t.Fatal(err)
	}
}

func TestBackup_CreateListRestore(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	first, err := s.CreateTimestampedBackup()
	if err != nil {
		t.Fatalf("backup: %v", err)
	}
	if _, err := s.AddAccount(models.Account{Email: "c@example.com"}); err != nil {
		t.Fatal(err)
	}
	second, err := s.CreateTimestampedBackup()
	if err != nil {
		t.Fatalf("backup: %v", err)
	}

	backups, err := s.ListBackups()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(backups) != 2 || backups[0].Path != second || backups[1].Path != first {
		t.Fatalf("expected newest first, got %+v", backups)
	}
	if backups[0].Size == 0 {
		t.Fatalf("expected non-zero size")
	}

	if err := s.RestoreFromBackup(first); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if n := len(s.GetAllAccounts()); n != 2 {
		t.Fatalf("expected 2 accounts after restore, got %d", n)
	}

	reopened, err := Open(s.DataDir(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(reopened.GetAllAccounts()); n != 2 {
		t.Fatalf("restore was not persisted, got %d accounts", n)
	}
}

func TestBackup_Retention(t *testing.T) {
	s, err := Open(t.TempDir(), Options{BackupRetention: 2})
	if err != nil {
		t.Fatal(err)
	}
	var last string
	for i := 0; i < 4; i++ {
		if last, err = s.CreateTimestampedBackup(); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := s.ListBackups()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 || backups[0].Path != last {
		t.Fatalf("expected 2 newest backups kept, got %+v", backups)
	}
}

func TestRestore_CorruptBackupLeavesStateUnchanged(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)

	primaryBefore, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	accountsBefore := s.GetAllAccounts()

	corrupt := filepath.Join(s.DataDir(), BackupDirName, "backup_corrupt.json")
	if err := os.WriteFile(corrupt, []byte(`{"accounts": [ {"id": `), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.RestoreFromBackup(corrupt); !errors.Is(err, ErrDeserialize) {
		t.Fatalf("expected ErrDeserialize, got %v", err)
	}

	primaryAfter, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(primaryBefore, primaryAfter) {
		t.Fatalf("primary file changed after failed restore")
	}
	if after := s.GetAllAccounts(); len(after) != len(accountsBefore) {
		t.Fatalf("in-memory state changed after failed restore")
	}

	if err := s.RestoreFromBackup(filepath.Join(s.DataDir(), "missing.json")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing backup, got %v", err)
	}
}

func TestExportImport_ReplaceRoundTrip(t *testing.T) {
	src := newTestStore(t)
	seedStore(t, src)
	path := filepath.Join(t.TempDir(), "export.json")
	if err := src.ExportData(path); err != nil {
		t.Fatalf("export: %v", err)
	}

	dst := newTestStore(t)
	if _, err := dst.AddAccount(models.Account{Email: "stale@example.com"}); err != nil {
		t.Fatal(err)
	}
	res, err := dst.ImportData(path, false)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !res.Replaced || res.Added != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	want := src.GetAllAccounts()
	got := dst.GetAllAccounts()
	if len(got) != len(want) {
		t.Fatalf("expected %d accounts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Email != want[i].Email || got[i].Group != want[i].Group ||
			got[i].APIKey != want[i].APIKey || got[i].RefreshToken != want[i].RefreshToken ||
			len(got[i].Tags) != len(want[i].Tags) {
			t.Fatalf("account %d differs: %+v vs %+v", i, got[i], want[i])
		}
	}
	if g := dst.GetGroups(); len(g) != 1 || g[0] != "team" {
		t.Fatalf("unexpected groups: %v", g)
	}
	if tags := dst.GetTags(); len(tags) != 1 || tags[0].Name != "vip" {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if dst.GetSettings() != src.GetSettings() {
		t.Fatalf("settings differ")
	}
}

func TestImport_MergeIsIdempotent(t *testing.T) {
	src := newTestStore(t)
	seedStore(t, src)
	path := filepath.Join(t.TempDir(), "export.json")
	if err := src.ExportData(path); err != nil {
		t.Fatal(err)
	}

	dst := newTestStore(t)
	existing, err := dst.AddAccount(models.Account{Email: "B@example.com", Nickname: "old"})
	if err != nil {
		t.Fatal(err)
	}

	first, err := dst.ImportData(path, true)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	if first.Added != 1 || first.Updated != 1 {
		t.Fatalf("unexpected first merge: %+v", first)
	}
	afterFirst := len(dst.GetAllAccounts())

	second, err := dst.ImportData(path, true)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if second.Added != 0 {
		t.Fatalf("second merge must not add accounts: %+v", second)
	}
	if n := len(dst.GetAllAccounts()); n != afterFirst {
		t.Fatalf("expected %d accounts after second merge, got %d", afterFirst, n)
	}

	merged, err := dst.GetAccount(existing.ID)
	if err != nil {
		t.Fatalf("email match must keep the existing id: %v", err)
	}
	if merged.RefreshToken != "rt-b" || merged.Email != "b@example.com" {
		t.Fatalf("imported fields should win: %+v", merged)
	}
}

func TestImport_CorruptFileLeavesStateUnchanged(t *testing.T) {
	s := newTestStore(t)
	seedStore(t, s)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ImportData(path, false); !errors.Is(err, ErrDeserialize) {
		t.Fatalf("expected ErrDeserialize, got %v", err)
	}
	if n := len(s.GetAllAccounts()); n != 2 {
		t.Fatalf("state changed after failed import: %d accounts", n)
	}
}

func TestBackupPath(t *testing.T) {
	s := newTestStore(t)
	path, err := s.CreateTimestampedBackup()
	if err != nil {
		t.Fatalf("CreateTimestampedBackup() error = %v", err)
	}
	got, err := s.BackupPath(filepath.Base(path))
	if err != nil || got != path {
		t.Fatalf("BackupPath() = %q, %v; want %q", got, err, path)
	}
	for _, bad := range []string{"", "../accounts.json", "accounts.json", "backup_x/../../y.json"} {
		if _, err := s.BackupPath(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("BackupPath(%q) error = %v, want ErrValidation", bad, err)
		}
	}
}
