package discovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/pysugar/surfvault/internal/util"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	keyAuthStatus  = "windsurfAuthStatus"
	keyLastVersion = "windsurfChangelog/lastVersion"
)

// Item is one row of the client's key/value state table.
type Item struct {
	Key   string `gorm:"column:key;primaryKey"`
	Value string `gorm:"column:value"`
}

// TableName pins the table name used by the client.
func (Item) TableName() string { return "ItemTable" }

// LocalInfo describes the account the local client is signed in with.
type LocalInfo struct {
	Path     string `json:"path"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	PlanName string `json:"plan_name,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
	Version  string `json:"version,omitempty"`
	IsActive bool   `json:"is_active"`
}

type authStatus struct {
	Name     string `json:"name"`
	APIKey   string `json:"apiKey"`
	Email    string `json:"email"`
	TeamID   string `json:"teamId"`
	PlanName string `json:"planName"`
}

// Inspect reads the signed-in identity from the state store at path. A
// missing store is reported as inactive, not as an error. The store is
// opened read-only.
func Inspect(path string) (*LocalInfo, error) {
	info := &LocalInfo{Path: path}
	if !fileExists(path) {
		return info, nil
	}

	db, err := gorm.Open(sqlite.Open(readOnlyDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	version, err := readItem(db, keyLastVersion)
	if err != nil {
		return nil, err
	}
	info.Version = version

	raw, err := readItem(db, keyAuthStatus)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return info, nil
	}
	var status authStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		log.Printf("⚠️ Discovery: unreadable auth status in %s: %v", path, err)
		return info, nil
	}
	info.Email = status.Email
	info.Name = status.Name
	info.APIKey = status.APIKey
	info.PlanName = status.PlanName
	info.TeamID = status.TeamID
	info.IsActive = true
	return info, nil
}

// readOnlyDSN builds a file URI, escaping characters such as '#' and '?'
// that would otherwise end the path.
func readOnlyDSN(path string) string {
	p := filepath.ToSlash(path)
	if filepath.VolumeName(path) != "" {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p, RawQuery: "mode=ro"}).String()
}

// InspectDefault inspects the default state store location.
func InspectDefault() (*LocalInfo, error) {
	return Inspect(DefaultStatePath())
}

func readItem(db *gorm.DB, key string) (string, error) {
	var item Item
	err := db.Where("key = ?", key).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return item.Value, nil
}

// Masked returns a copy with the API key masked.
func (i LocalInfo) Masked() LocalInfo {
	if i.APIKey != "" {
		i.APIKey = util.MaskSecret(i.APIKey)
	}
	return i
}
