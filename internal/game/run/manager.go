package run

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultHistoryLimit is how many history entries a listing returns when the
// caller does not say.
const DefaultHistoryLimit = 8

// HistoryEntry records one finished run.
type HistoryEntry struct {
	RunID      string    `json:"runId"`
	EndedAt    time.Time `json:"endedAt"`
	Difficulty string    `json:"difficulty"`
	Class      string    `json:"class"`
	Level      int       `json:"level"`
	Result     Outcome   `json:"result"`
	Note       string    `json:"note"`
}

// Store persists snapshots and history. LoadSnapshot returns an error
// matching ErrNoSnapshot when nothing is saved under the ID.
type Store interface {
	SaveSnapshot(ctx context.Context, runID string, data []byte) error
	LoadSnapshot(ctx context.Context, runID string) ([]byte, error)
	ClearSnapshot(ctx context.Context, runID string) error
	AppendHistory(ctx context.Context, e HistoryEntry) error
}

// ErrNoSnapshot is the sentinel a Store wraps when a snapshot is missing.
var ErrNoSnapshot = errors.New("no saved snapshot")

// Manager tracks active runs by ID and moves them to and from a Store.
// All methods are safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	runs  map[string]*Run
	deps  Deps
	store Store
	now   func() time.Time
}

// NewManager creates an empty Manager. store may be nil, in which case Save
// and Resume fail and Finish only forgets the run.
//
// Precondition: deps.Content and deps.Source must be non-nil.
func NewManager(deps Deps, store Store) *Manager {
	if deps.Content == nil || deps.Source == nil {
		panic("run.NewManager: precondition violated: content and source must be non-nil")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{
		runs:  make(map[string]*Run),
		deps:  deps,
		store: store,
		now:   time.Now,
	}
}

// Create starts a run under a fresh ID.
//
// Postcondition: Returns the registered run, or an error for an unknown
// class or difficulty.
func (m *Manager) Create(name, classID, difficultyID string) (*Run, error) {
	r, err := New(uuid.NewString(), name, classID, difficultyID, m.deps)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[r.ID] = r
	return r, nil
}

// Get returns the active run with id.
//
// Postcondition: Returns (run, nil) if found, or ErrRunNotFound otherwise.
func (m *Manager) Get(id string) (*Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, id)
	}
	return r, nil
}

// Remove forgets the active run with id.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[id]; !ok {
		return fmt.Errorf("%w: %q", ErrRunNotFound, id)
	}
	delete(m.runs, id)
	return nil
}

// Count returns the number of active runs.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}

func (m *Manager) requireStore() error {
	if m.store == nil {
		return errors.New("run manager has no store")
	}
	return nil
}

// Save snapshots the active run id into the store.
func (m *Manager) Save(ctx context.Context, id string) error {
	if err := m.requireStore(); err != nil {
		return err
	}
	r, err := m.Get(id)
	if err != nil {
		return err
	}
	data, err := r.Snapshot()
	if err != nil {
		return err
	}
	if err := m.store.SaveSnapshot(ctx, id, data); err != nil {
		return fmt.Errorf("saving run %s: %w", id, err)
	}
	return nil
}

// Resume loads run id from the store and registers it. An already active run
// is returned as is.
func (m *Manager) Resume(ctx context.Context, id string) (*Run, error) {
	if r, err := m.Get(id); err == nil {
		return r, nil
	}
	if err := m.requireStore(); err != nil {
		return nil, err
	}
	data, err := m.store.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	r, err := Restore(data, m.deps)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.runs[id]; ok {
		return existing, nil
	}
	m.runs[id] = r
	return r, nil
}

// Finish closes run id: an unfinished run is abandoned, a history entry is
// appended, the saved snapshot is cleared and the run is forgotten.
//
// Postcondition: the run is no longer active; returns the recorded entry.
func (m *Manager) Finish(ctx context.Context, id, note string) (HistoryEntry, error) {
	r, err := m.Get(id)
	if err != nil {
		return HistoryEntry{}, err
	}
	r.Abandon()
	p := r.Progress()
	entry := HistoryEntry{
		RunID:      id,
		EndedAt:    m.now().UTC(),
		Difficulty: p.Difficulty,
		Class:      p.Class,
		Level:      p.Level,
		Result:     r.outcome(),
		Note:       note,
	}
	if m.store != nil {
		if err := m.store.AppendHistory(ctx, entry); err != nil {
			return HistoryEntry{}, fmt.Errorf("recording run %s: %w", id, err)
		}
		if err := m.store.ClearSnapshot(ctx, id); err != nil && !errors.Is(err, ErrNoSnapshot) {
			return HistoryEntry{}, fmt.Errorf("clearing run %s: %w", id, err)
		}
	}
	m.deps.Logger.Info("run finished",
		zap.String("run", id),
		zap.String("result", string(entry.Result)),
		zap.Int("level", entry.Level),
	)
	return entry, m.Remove(id)
}

func (r *Run) outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Outcome
}
