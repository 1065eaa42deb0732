package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store provides persistence for configuration data.
type Store interface {
	Load() error
	Save() error

	// GetSection returns a copy of one section, empty when absent
	GetSection(sectionID string) (map[string]interface{}, error)
	SetSection(sectionID string, data map[string]interface{}) error

	GetAll() (map[string]map[string]interface{}, error)
	SetAll(data map[string]map[string]interface{}) error
}

// documentVersion is written to every saved file. Files of another major
// version are refused rather than misread.
const documentVersion = "1.0"

// ErrUnsupportedVersion is returned when loading a file written by an
// incompatible release.
var ErrUnsupportedVersion = errors.New("unsupported config version")

// document is the on-disk layout.
type document struct {
	Version  string                            `json:"version"`
	Sections map[string]map[string]interface{} `json:"sections"`
}

// secretKey names one value that is only persisted when the user wrote it
// into the file themselves.
type secretKey struct {
	section string
	key     string
}

// FileStore keeps the configuration in one JSON document.
//
// Keys registered with WithSecret are never introduced into the file by a
// save: a password that reached the store through defaults or flags stays in
// memory, while one the user put in the file is written back unchanged.
type FileStore struct {
	path     string
	mu       sync.RWMutex
	sections map[string]map[string]interface{}
	modified bool

	secrets []secretKey

	// onDisk holds the secrets present in the file when it was last loaded
	onDisk map[secretKey]bool
}

// StoreOption configures a FileStore.
type StoreOption func(*FileStore)

// WithSecret marks key of section as a credential.
func WithSecret(section, key string) StoreOption {
	return func(s *FileStore) {
		s.secrets = append(s.secrets, secretKey{section: section, key: key})
	}
}

// DefaultPath returns ~/.dirtycheck/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".dirtycheck", "config.json"), nil
}

// NewFileStore opens the store at path, or at DefaultPath when path is
// empty. A missing file is an empty configuration.
func NewFileStore(path string, opts ...StoreOption) (*FileStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	s := &FileStore{
		path:     path,
		sections: make(map[string]map[string]interface{}),
		onDisk:   make(map[secretKey]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return s, nil
}

// Load replaces the in-memory configuration with the file's contents.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.sections = make(map[string]map[string]interface{})
		s.onDisk = make(map[secretKey]bool)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}
	if err := checkVersion(doc.Version); err != nil {
		return err
	}

	if doc.Sections == nil {
		doc.Sections = make(map[string]map[string]interface{})
	}
	s.sections = doc.Sections
	s.onDisk = make(map[secretKey]bool)
	for _, secret := range s.secrets {
		if _, ok := doc.Sections[secret.section][secret.key]; ok {
			s.onDisk[secret] = true
		}
	}
	s.modified = false
	return nil
}

// checkVersion accepts files without a version and any 1.x version.
func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	major, _, _ := strings.Cut(v, ".")
	want, _, _ := strings.Cut(documentVersion, ".")
	if major != want {
		return fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, v, documentVersion)
	}
	return nil
}

// Save writes the configuration atomically with owner-only permissions.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := document{Version: documentVersion, Sections: copyAll(s.sections)}
	for _, secret := range s.secrets {
		if !s.onDisk[secret] {
			delete(doc.Sections[secret.section], secret.key)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, append(data, '\n'), 0600); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	s.modified = false
	return nil
}

// GetSection returns a copy of one section.
func (s *FileStore) GetSection(sectionID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySection(s.sections[sectionID]), nil
}

// SetSection replaces one section with a copy of data.
func (s *FileStore) SetSection(sectionID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[sectionID] = copySection(data)
	s.modified = true
	return nil
}

// GetAll returns a deep copy of every section.
func (s *FileStore) GetAll() (map[string]map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyAll(s.sections), nil
}

// SetAll replaces every section.
func (s *FileStore) SetAll(data map[string]map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections = copyAll(data)
	s.modified = true
	return nil
}

// IsModified reports unsaved changes.
func (s *FileStore) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

// copySection returns a copy of data that callers may modify freely. A nil
// section yields an empty map.
func copySection(data map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func copyAll(data map[string]map[string]interface{}) map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(data))
	for id, section := range data {
		out[id] = copySection(section)
	}
	return out
}
