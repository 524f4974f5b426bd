package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// versionLayout keeps migration files lexicographically ordered by creation
// time, matching the timestamps under migrations/.
const versionLayout = "20060102150405"

const scaffoldHeader = `-- Migration: %s
-- Created: %s
-- Description: %s

`

// Scaffold points at a freshly created migration file pair
type Scaffold struct {
	Version  string
	UpPath   string
	DownPath string
}

// CreateMigration scaffolds an up/down SQL pair under migrationsDir. The
// description defaults to the name when omitted.
func CreateMigration(migrationsDir, name, description string) (*Scaffold, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if description == "" {
		description = name
	}

	now := time.Now()
	version := now.Format(versionLayout)
	created := now.Format(time.RFC3339)
	base := filepath.Join(migrationsDir, version+"_"+slug)

	s := &Scaffold{
		Version:  version,
		UpPath:   base + ".up.sql",
		DownPath: base + ".down.sql",
	}

	up := fmt.Sprintf(scaffoldHeader, name, created, description) +
		"-- Write your UP migration SQL here\n"
	if err := os.WriteFile(s.UpPath, []byte(up), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}

	down := fmt.Sprintf(scaffoldHeader, name+" (Rollback)", created, "Rollback for "+description) +
		"-- Write your DOWN migration SQL here\n"
	if err := os.WriteFile(s.DownPath, []byte(down), 0o644); err != nil {
		_ = os.Remove(s.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return s, nil
}

// slugify lowers a migration name into the snake_case file-name segment,
// collapsing separator runs and dropping anything outside [a-z0-9_].
func slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the base names of the migration pairs in
// migrationsDir, sorted by version. A missing directory reads as empty.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".up.sql"))
	}
	sort.Strings(names)
	return names, nil
}
