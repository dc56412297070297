package notes

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"noteboard/internal/session"
)

// Registry holds the mounted views of a browser-facing server, keyed by view id.
type Registry struct {
	svc *Service
	log *slog.Logger
	ttl time.Duration

	mu    sync.Mutex
	views map[string]*View
}

// NewRegistry returns an empty registry. Views idle for longer than ttl are dropped by Sweep.
func NewRegistry(svc *Service, ttl time.Duration, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		svc:   svc,
		log:   log,
		ttl:   ttl,
		views: make(map[string]*View),
	}
}

// Mount creates a view for sess. The caller performs the initial Load.
func (r *Registry) Mount(sess session.Session) *View {
	v := NewView(uuid.NewString(), sess, r.svc, r.log)
	r.mu.Lock()
	r.views[v.ID] = v
	r.mu.Unlock()
	r.log.Debug("view mounted", "view", v.ID)
	return v
}

// Get returns the view with id if it was mounted with the same session.
func (r *Registry) Get(id string, sess session.Session) (*View, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[id]
	if !ok || v.sess.Token != sess.Token {
		return nil, false
	}
	return v, true
}

// Unmount drops one view.
func (r *Registry) Unmount(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, id)
}

// UnmountSession drops every view mounted with sess.
func (r *Registry) UnmountSession(sess session.Session) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, v := range r.views {
		if v.sess.Token == sess.Token {
			delete(r.views, id)
			n++
		}
	}
	return n
}

// Len is the number of mounted views.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

// Sweep drops views idle since before now-ttl.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, v := range r.views {
		if v.LastActive().Before(cutoff) {
			delete(r.views, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx ends.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := r.Sweep(now); n > 0 {
				r.log.Debug("idle views dropped", "count", n)
			}
		}
	}
}
