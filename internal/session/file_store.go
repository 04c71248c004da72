package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
)

// Well-known keys of the persisted session document.
const (
	TokenKey  = "site"
	UserKey   = "user"
	expiryKey = "expiry"
)

// FileStore persists the session as a small JSON document so a restart restores it
// without a network round trip.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	loaded  bool
	current *models.Session
}

// NewFileStore builds a store backed by the file at path. The file is read lazily.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Get returns the persisted session, or nil when the document is absent or incomplete.
func (f *FileStore) Get() (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loaded {
		current, err := f.read()
		if err != nil {
			return nil, err
		}
		f.current = current
		f.loaded = true
	}

	return clone(f.current), nil
}

// Set writes token and profile in a single file replace.
func (f *FileStore) Set(s models.Session) error {
	if err := checkComplete(s); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.write(s); err != nil {
		return err
	}
	f.current = clone(&s)
	f.loaded = true

	f.logger.Debug("session persisted", zap.Int("user_id", s.User.ID), zap.String("path", f.path))
	return nil
}

// Clear removes the document. A missing file is not an error.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file %s: %w", f.path, err)
	}
	f.current = nil
	f.loaded = true
	return nil
}

func (f *FileStore) read() (*models.Session, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session file %s: %w", f.path, err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		f.logger.Warn("ignoring unreadable session file", zap.String("path", f.path), zap.Error(err))
		return nil, nil
	}

	var s models.Session
	if err := unmarshalKey(doc, TokenKey, &s.Token); err != nil {
		return nil, err
	}
	if err := unmarshalKey(doc, UserKey, &s.User); err != nil {
		return nil, err
	}
	if rawExpiry, ok := doc[expiryKey]; ok {
		var expiry time.Time
		if err := json.Unmarshal(rawExpiry, &expiry); err == nil {
			s.Expiry = &expiry
		}
	}

	if checkComplete(s) != nil {
		f.logger.Warn("ignoring incomplete session file", zap.String("path", f.path))
		return nil, nil
	}
	return &s, nil
}

func (f *FileStore) write(s models.Session) error {
	doc := map[string]any{
		TokenKey: s.Token,
		UserKey:  s.User,
	}
	if s.Expiry != nil {
		doc[expiryKey] = s.Expiry
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp session file: %w", err)
	}

	// rename is atomic on the same filesystem: readers see both keys or neither.
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace session file %s: %w", f.path, err)
	}
	return nil
}

func unmarshalKey(doc map[string]json.RawMessage, key string, out any) error {
	raw, ok := doc[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode session key %q: %w", key, err)
	}
	return nil
}
