package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Iron-Ham/taskfetch/internal/errors"
)

// StateFileName is the default name of the state file inside the data dir.
const StateFileName = "state.json"

// FileStore keeps the record in a JSON file. Writes are atomic (temp file
// plus rename) and every operation holds a flock on "<path>.lock".
type FileStore struct {
	path string
	mu   sync.Mutex
}

var (
	_ Port     = (*FileStore)(nil)
	_ Resetter = (*FileStore)(nil)
)

// NewFileStore creates a store backed by path, creating its parent
// directory if needed. The file itself is only created on the first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the state file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the stored record. A missing file yields the zero record.
func (s *FileStore) Load() (Record, error) {
	var rec Record
	err := s.withLock(func() error {
		var err error
		rec, err = s.read()
		return err
	})
	return rec, err
}

// FetchCount implements Port.
func (s *FileStore) FetchCount() (int, error) {
	rec, err := s.Load()
	if err != nil {
		return 0, err
	}
	return rec.FetchCount, nil
}

// ResponseCode implements Port.
func (s *FileStore) ResponseCode() (string, error) {
	rec, err := s.Load()
	if err != nil {
		return "", err
	}
	return rec.ResponseCode, nil
}

// StoreFetchCount implements Port.
func (s *FileStore) StoreFetchCount(count int) error {
	if err := validateCount(count); err != nil {
		return err
	}
	return s.update(func(rec *Record) {
		rec.FetchCount = count
	})
}

// StoreResponseCode implements Port.
func (s *FileStore) StoreResponseCode(code string) error {
	return s.update(func(rec *Record) {
		rec.ResponseCode = code
	})
}

// StoreData implements Port.
func (s *FileStore) StoreData(count int, code string) error {
	if err := validateCount(count); err != nil {
		return err
	}
	return s.withLock(func() error {
		return s.write(Record{FetchCount: count, ResponseCode: code})
	})
}

// Reset removes the state file.
func (s *FileStore) Reset() error {
	return s.withLock(func() error {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove state file: %w", err)
		}
		return nil
	})
}

// update applies fn to the current record and writes the result. A corrupted
// file is replaced rather than blocking writes forever.
func (s *FileStore) update(fn func(rec *Record)) error {
	return s.withLock(func() error {
		rec, err := s.read()
		if err != nil && !errors.Is(err, errors.ErrStoreCorrupted) {
			return err
		}
		fn(&rec)
		return s.write(rec)
	})
}

func (s *FileStore) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fl := newFileLock(s.path + ".lock")
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	defer func() { _ = fl.Unlock() }()

	return fn()
}

func (s *FileStore) read() (Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("read state file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", errors.ErrStoreCorrupted, s.path, err)
	}
	if rec.FetchCount < 0 {
		return Record{}, fmt.Errorf("%w: %s: negative fetch count %d", errors.ErrStoreCorrupted, s.path, rec.FetchCount)
	}
	return rec, nil
}

func (s *FileStore) write(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
