package persist

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/huangsam/revmetrics/schema"
)

// Stores groups the stores sharing one database connection.
type Stores struct {
	sync.RWMutex // Protects the store pointers during initialization
	db           *sql.DB
	backend      schema.DatabaseBackend
	metrics      *MetricsStoreImpl
	history      *HistoryStoreImpl
	runs         *RunStoreImpl
}

// Global Manager instance for main logic.
var (
	Manager   = &Stores{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// NewStores wraps an open database.
func NewStores(db *sql.DB, backend schema.DatabaseBackend) *Stores {
	return &Stores{
		db:      db,
		backend: backend,
		metrics: NewMetricsStore(db, backend),
		history: NewHistoryStore(db, backend),
		runs:    NewRunStore(db, backend),
	}
}

// Backend returns the database backend.
func (s *Stores) Backend() schema.DatabaseBackend {
	s.RLock()
	defer s.RUnlock()
	return s.backend
}

// Metrics returns the metrics store.
func (s *Stores) Metrics() *MetricsStoreImpl {
	s.RLock()
	defer s.RUnlock()
	return s.metrics
}

// History returns the history reader.
func (s *Stores) History() *HistoryStoreImpl {
	s.RLock()
	defer s.RUnlock()
	return s.history
}

// Runs returns the run log.
func (s *Stores) Runs() *RunStoreImpl {
	s.RLock()
	defer s.RUnlock()
	return s.runs
}

// Close closes the shared connection.
func (s *Stores) Close() error {
	s.Lock()
	defer s.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// InitStores opens the database and initializes the global Manager.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		db, err := Open(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize stores: %w", err)
			return
		}
		stores := NewStores(db, backend)

		Manager.Lock()
		defer Manager.Unlock()
		Manager.db = stores.db
		Manager.backend = stores.backend
		Manager.metrics = stores.metrics
		Manager.history = stores.history
		Manager.runs = stores.runs
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		_ = Manager.Close()
	})
}
