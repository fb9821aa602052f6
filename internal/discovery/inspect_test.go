package discovery

import (
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newStateDB(t *testing.T, items ...Item) string {
	t.Helper()
	return newStateDBIn(t, t.TempDir(), items...)
}

func newStateDBIn(t *testing.T, dir string, items ...Item) string {
	t.Helper()
	path := filepath.Join(dir, "state.vscdb")
	dsn := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := db.AutoMigrate(&Item{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	for _, it := range items {
		if err := db.Create(&it).Error; err != nil {
			t.Fatalf("insert %s: %v", it.Key, err)
		}
	}
	sqlDB, _ := db.DB()
	sqlDB.Close()
	return path
}

func TestInspect_MissingStoreIsInactive(t *testing.T) {
	info, err := Inspect(filepath.Join(t.TempDir(), "missing.vscdb"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.IsActive {
		t.Fatal("expected inactive for missing store")
	}
}

func TestInspect_SignedIn(t *testing.T) {
	path := newStateDB(t,
		Item{Key: keyAuthStatus, Value: `{"name":"Ada","apiKey":"sk-ws-0123456789","email":"ada@example.com","teamId":"team-1","planName":"Pro"}`},
		Item{Key: keyLastVersion, Value: "1.12.3"},
		Item{Key: "unrelated", Value: "x"},
	)

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !info.IsActive || info.Email != "ada@example.com" || info.Name != "Ada" ||
		info.PlanName != "Pro" || info.TeamID != "team-1" || info.Version != "1.12.3" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := info.Masked().APIKey; got != "sk-w...6789" {
		t.Fatalf("unexpected masked key %q", got)
	}
}

func TestInspect_SignedOut(t *testing.T) {
	path := newStateDB(t, Item{Key: keyLastVersion, Value: "1.0.0"})
	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.IsActive || info.Version != "1.0.0" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestInspect_PathWithURIMetacharacters(t *testing.T) {
	dirs := []string{"a#b", "with space", "100%", "a&mode=rw"}
	if runtime.GOOS != "windows" {
		dirs = append(dirs, "a?b")
	}
	for _, name := range dirs {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), name)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				t.Fatal(err)
			}
			path := newStateDBIn(t, dir,
				Item{Key: keyAuthStatus, Value: `{"email":"ada@example.com"}`},
				Item{Key: keyLastVersion, Value: "1.0.0"},
			)
			info, err := Inspect(path)
			if err != nil {
				t.Fatalf("inspect: %v", err)
			}
			if !info.IsActive || info.Email != "ada@example.com" || info.Version != "1.0.0" {
				t.Fatalf("unexpected info: %+v", info)
			}
		})
	}
}

func TestReadOnlyDSN(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix paths")
	}
	got := readOnlyDSN("/tmp/a#b?c/state.vscdb")
	if got != "file:///tmp/a%23b%3Fc/state.vscdb?mode=ro" {
		t.Fatalf("readOnlyDSN() = %q", got)
	}
}

func TestStatePath(t *testing.T) {
	p := StatePath("Windsurf")
	if filepath.Base(p) != "state.vscdb" {
		t.Fatalf("unexpected state path %q", p)
	}
}
