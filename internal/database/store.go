package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Shows live as individual sqlite files under <dataDir>/shows/<name>.db.
// Exactly one show is active per process; selecting another one closes the
// current handle and opens the new file.

// ErrNoShow is returned by DB() when no show has been selected yet.
var ErrNoShow = errors.New("no show selected")

// ErrShowNotFound is returned when a named show file does not exist.
var ErrShowNotFound = errors.New("show not found")

// ErrShowExists is returned when creating a show whose file already exists.
var ErrShowExists = errors.New("show already exists")

// ErrActiveShow is returned when deleting the currently selected show.
var ErrActiveShow = errors.New("cannot delete the active show")

// ErrBadName is returned when a show name is empty or would escape the
// shows directory.
var ErrBadName = errors.New("invalid show name")

// Store manages the per-show database files and the handle to the active
// show.  All methods are safe for concurrent use; the handle swap on
// Select is guarded so readers never see a half-closed database.
type Store struct {
	mu       sync.RWMutex
	showsDir string
	name     string
	db       *sql.DB
}

// NewStore creates the shows directory under dataDir if needed and returns
// a Store with no show selected.
func NewStore(dataDir string) (*Store, error) {
	showsDir := filepath.Join(dataDir, "shows")
	if err := os.MkdirAll(showsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create shows dir: %w", err)
	}
	return &Store{showsDir: showsDir}, nil
}

// DB returns the handle to the active show's database, or ErrNoShow.
func (s *Store) DB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNoShow
	}
	return s.db, nil
}

// Current returns the active show's name, or "" when none is selected.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// List returns the names of all persisted shows, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.showsDir)
	if err != nil {
		return nil, fmt.Errorf("read shows dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".db") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".db"))
	}
	sort.Strings(names)
	return names, nil
}

// Select makes an existing show active.  The previous handle is closed,
// the show's database file is opened and the schema is migrated if an
// older file is missing tables.
func (s *Store) Select(name string) error {
	if err := validateShowName(name); err != nil {
		return err
	}
	if _, err := os.Stat(s.path(name)); err != nil {
		return fmt.Errorf("%w: %q", ErrShowNotFound, name)
	}
	return s.activate(name)
}

// Create creates a new show file, seeds the default columns and selects
// it.  The name must not match an existing show.
func (s *Store) Create(name string) error {
	if err := validateShowName(name); err != nil {
		return err
	}
	if _, err := os.Stat(s.path(name)); err == nil {
		return fmt.Errorf("%w: %q", ErrShowExists, name)
	}
	return s.activate(name)
}

func (s *Store) activate(name string) error {
	db, err := openShow(s.path(name))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		_ = s.db.Close()
	}
	s.db = db
	s.name = name
	return nil
}

// Delete removes a show's database file and its WAL sidecars.  The active
// show cannot be deleted.
func (s *Store) Delete(name string) error {
	if err := validateShowName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == s.name {
		return ErrActiveShow
	}
	path := s.path(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %q", ErrShowNotFound, name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete show: %w", err)
	}
	for _, ext := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + ext); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete show sidecar: %w", err)
		}
	}
	return nil
}

// Close releases the active show's handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.name = ""
	return err
}

func (s *Store) path(name string) string {
	return filepath.Join(s.showsDir, name+".db")
}

func validateShowName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrBadName)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ErrBadName
	}
	return nil
}

// openShow opens a show database with WAL journaling and foreign keys
// enabled, then ensures the schema exists.
func openShow(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open show database: %w", err)
	}
	// sqlite allows a single writer; keeping one connection avoids
	// SQLITE_BUSY between the write path and snapshot reads.
	db.SetMaxOpenConns(1)
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
