package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FileStore keeps the token in <dir>/token for terminal clients.
type FileStore struct {
	dir string
	log *slog.Logger
}

// NewFileStore returns a store rooted at dir. An empty dir means ~/.noteboard.
func NewFileStore(dir string, log *slog.Logger) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, ".noteboard")
	}
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{dir: dir, log: log}, nil
}

// Path is the token file location.
func (f *FileStore) Path() string {
	return filepath.Join(f.dir, Key)
}

// Load returns the stored session or ErrNoToken.
func (f *FileStore) Load() (Session, error) {
	b, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, ErrNoToken
	}
	if err != nil {
		return Session{}, fmt.Errorf("read token: %w", err)
	}
	s := Session{Token: strings.TrimSpace(string(b))}
	if !s.Valid() {
		return Session{}, ErrNoToken
	}
	return s, nil
}

// Save writes the token with owner-only permissions.
func (f *FileStore) Save(s Session) error {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	tmp := f.Path() + ".tmp"
	if err := os.WriteFile(tmp, []byte(s.Token), 0600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(tmp, f.Path()); err != nil {
		return fmt.Errorf("replace token: %w", err)
	}
	f.log.Debug("token stored", "path", f.Path())
	return nil
}

// Clear removes the token. Clearing an absent token is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Watch returns a channel that is closed once the token file is removed, e.g. by a logout from
// another terminal. The watch ends with ctx.
func (f *FileStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := os.MkdirAll(f.dir, 0700); err != nil {
		return nil, fmt.Errorf("create token dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(f.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", f.dir, err)
	}

	gone := make(chan struct{})
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != Key {
					continue
				}
				if !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				// A rename onto the path is a Save; only a missing file means logout.
				if _, err := os.Stat(f.Path()); errors.Is(err, os.ErrNotExist) {
					f.log.Debug("token removed", "path", f.Path())
					close(gone)
					return
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.log.Error("token watch error", "error", werr)
			}
		}
	}()
	return gone, nil
}
