// Package sessions binds each browser session to its prediction history and
// current predictor form.
package sessions

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"covidrisk/internal/models"
	"covidrisk/internal/predictions"
	"covidrisk/internal/submission"
)

// Workspace is the server-side state of one session.
type Workspace struct {
	id        string
	store     *predictions.Store
	predictor submission.Predictor

	mu       sync.Mutex
	form     *submission.Flow
	lastSeen time.Time
}

// ID returns the session id the workspace belongs to.
func (w *Workspace) ID() string {
	return w.id
}

// Store returns the session's prediction history.
func (w *Workspace) Store() *predictions.Store {
	return w.store
}

// Form returns the current form instance, creating one if needed.
func (w *Workspace) Form() *submission.Flow {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.form == nil || w.form.Closed() {
		w.form = submission.New(w.predictor, w.store)
	}
	return w.form
}

// NewForm replaces the current form instance. The old one is closed, so a
// result still in flight for it is discarded.
func (w *Workspace) NewForm() *submission.Flow {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.form != nil {
		w.form.Close()
	}
	w.form = submission.New(w.predictor, w.store)
	return w.form
}

// FormByID returns the current form instance if it matches id.
func (w *Workspace) FormByID(id uuid.UUID) (*submission.Flow, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.form == nil || w.form.ID() != id || w.form.Closed() {
		return nil, ErrStaleForm
	}
	return w.form, nil
}

func (w *Workspace) close() {
	w.mu.Lock()
	if w.form != nil {
		w.form.Close()
	}
	w.mu.Unlock()
	w.store.Close()
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Manager owns every live workspace. All stores share one id sequence, so
// record ids are unique across the process.
type Manager struct {
	seq       *predictions.Sequence
	predictor submission.Predictor
	now       func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewManager creates a manager whose forms call p.
func NewManager(p submission.Predictor) *Manager {
	return &Manager{
		seq:        &predictions.Sequence{},
		predictor:  p,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the workspace for a session id, creating it on first use.
func (m *Manager) Get(id string) *Workspace {
	m.mu.Lock()
	ws, ok := m.workspaces[id]
	if !ok {
		ws = &Workspace{
			id:        id,
			store:     predictions.NewStoreWithSequence(m.seq),
			predictor: m.predictor,
			lastSeen:  m.now(),
		}
		m.workspaces[id] = ws
	}
	m.mu.Unlock()

	ws.touch(m.now())
	return ws
}

// Drop discards a session's workspace and its history.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	ws, ok := m.workspaces[id]
	delete(m.workspaces, id)
	m.mu.Unlock()

	if ok {
		ws.close()
	}
}

// Sweep drops workspaces idle for longer than maxIdle and returns how many
// were removed.
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	m.mu.Lock()
	var expired []*Workspace
	for id, ws := range m.workspaces {
		if ws.idleSince().Before(cutoff) {
			expired = append(expired, ws)
			delete(m.workspaces, id)
		}
	}
	m.mu.Unlock()

	for _, ws := range expired {
		ws.close()
	}
	return len(expired)
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workspaces)
}

// Histories returns a copy of every live history.
func (m *Manager) Histories() [][]models.PredictionRecord {
	m.mu.Lock()
	stores := make([]*predictions.Store, 0, len(m.workspaces))
	for _, ws := range m.workspaces {
		stores = append(stores, ws.store)
	}
	m.mu.Unlock()

	out := make([][]models.PredictionRecord, len(stores))
	for i, s := range stores {
		out[i] = s.List()
	}
	return out
}
