package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-tplform/pkg/session"
)

// ControllerFactory builds the controller for a new workspace. notifier must
// be installed on the controller so the page can show failures.
type ControllerFactory func(notifier session.Notifier) (*session.Controller, error)

// workspace is one browser's editing state.
type workspace struct {
	ctrl     *session.Controller
	notices  *noticeLog
	lastSeen time.Time
}

// noticeLog keeps the most recent failure for display on the next page view.
type noticeLog struct {
	mu   sync.Mutex
	last *session.Notice
}

func (l *noticeLog) Notify(n session.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n.Failed() {
		l.last = &n
		return
	}
	switch n.Kind {
	case session.NoticeLoaded, session.NoticeRendered, session.NoticeExported:
		l.last = nil
	}
}

// Take returns and clears the last failure.
func (l *noticeLog) Take() (session.Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.last == nil {
		return session.Notice{}, false
	}
	n := *l.last
	l.last = nil
	return n, true
}

// workspaces maps workspace IDs to controllers. Entries idle for longer than
// ttl are dropped when new workspaces are created.
type workspaces struct {
	mu      sync.Mutex
	items   map[string]*workspace
	factory ControllerFactory
	ttl     time.Duration
	now     func() time.Time
}

func newWorkspaces(factory ControllerFactory, ttl time.Duration) *workspaces {
	return &workspaces{
		items:   make(map[string]*workspace),
		factory: factory,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the workspace for id, if present.
func (w *workspaces) Get(id string) (*workspace, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ws, ok := w.items[id]
	if ok {
		ws.lastSeen = w.now()
	}
	return ws, ok
}

// Create allocates a fresh workspace and returns its ID.
func (w *workspaces) Create() (string, *workspace, error) {
	if w.factory == nil {
		return "", nil, errors.New("server: controller factory is nil")
	}
	notices := &noticeLog{}
	ctrl, err := w.factory(notices)
	if err != nil {
		return "", nil, err
	}
	ws := &workspace{ctrl: ctrl, notices: notices}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.evictLocked()
	ws.lastSeen = w.now()
	id := uuid.NewString()
	w.items[id] = ws
	return id, ws, nil
}

// Len reports the number of live workspaces.
func (w *workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

func (w *workspaces) evictLocked() {
	if w.ttl <= 0 {
		return
	}
	cutoff := w.now().Add(-w.ttl)
	for id, ws := range w.items {
		if ws.lastSeen.Before(cutoff) {
			delete(w.items, id)
		}
	}
}
