package storage

import "sync"

// MemoryStore is an in-process Port. ReadErr and WriteErr, when set, are
// returned by every read or write.
type MemoryStore struct {
	mu     sync.Mutex
	record Record
	writes int

	ReadErr  error
	WriteErr error
}

var (
	_ Port     = (*MemoryStore)(nil)
	_ Resetter = (*MemoryStore)(nil)
)

// NewMemoryStore creates a store seeded with rec.
func NewMemoryStore(rec Record) *MemoryStore {
	return &MemoryStore{record: rec}
}

// FetchCount implements Port.
func (m *MemoryStore) FetchCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	return m.record.FetchCount, nil
}

// ResponseCode implements Port.
func (m *MemoryStore) ResponseCode() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.record.ResponseCode, nil
}

// StoreFetchCount implements Port.
func (m *MemoryStore) StoreFetchCount(count int) error {
	if err := validateCount(count); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.record.FetchCount = count
	m.writes++
	return nil
}

// StoreResponseCode implements Port.
func (m *MemoryStore) StoreResponseCode(code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.record.ResponseCode = code
	m.writes++
	return nil
}

// StoreData implements Port.
func (m *MemoryStore) StoreData(count int, code string) error {
	if err := validateCount(count); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.record = Record{FetchCount: count, ResponseCode: code}
	m.writes++
	return nil
}

// Reset implements Resetter.
func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = Record{}
	return nil
}

// Record returns the stored record.
func (m *MemoryStore) Record() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record
}

// Writes returns the number of successful write operations.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
