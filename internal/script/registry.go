package script

import (
	"cmp"
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// Registry keeps named fragments loaded from files and reloads them when the
// files change. It implements FragmentSource.
type Registry struct {
	mu            sync.RWMutex
	fs            afero.Fs
	fragments     map[string]*entry
	watcher       *fsnotify.Watcher
	watcherActive bool
	logger        *GateLogger
}

type entry struct {
	fragment     Fragment
	path         string
	checksum     string
	lastModified time.Time
}

// FragmentMetadata describes a loaded fragment without its source.
type FragmentMetadata struct {
	Name           string
	Path           string
	AllowTransport bool
	LastModified   time.Time
	Checksum       string
	Size           int
}

// NewRegistry creates a registry reading files from fs
func NewRegistry(fs afero.Fs) *Registry {
	return &Registry{
		fs:        fs,
		fragments: make(map[string]*entry),
		logger:    gateLogger,
	}
}

// AddFile loads path as the fragment name.
func (r *Registry) AddFile(name, path string, allowTransport bool) error {
	content, modified, err := r.read(path)
	if err != nil {
		return NewScriptError(ErrorTypeNotFound, name, "failed to read fragment", err)
	}

	r.mu.Lock()
	r.fragments[name] = &entry{
		fragment:     Fragment{Name: name, Source: content, AllowTransport: allowTransport},
		path:         path,
		checksum:     r.generateChecksum(content),
		lastModified: modified,
	}
	r.mu.Unlock()

	r.logger.LogLifecycle(slog.LevelInfo, "Loaded fragment", name,
		slog.String("path", path),
		slog.Int("size", len(content)),
	)
	return nil
}

// Set stores an in-memory fragment, replacing any fragment with the same
// name. It reports whether the source changed.
func (r *Registry) Set(f Fragment) bool {
	checksum := r.generateChecksum(f.Source)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.fragments[f.Name]; ok && e.checksum == checksum && e.fragment.AllowTransport == f.AllowTransport {
		return false
	}
	r.fragments[f.Name] = &entry{fragment: f, checksum: checksum, lastModified: time.Now()}
	return true
}

// Remove drops the named fragment.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fragments, name)
}

// Fragment retrieves a fragment by name
func (r *Registry) Fragment(name string) (Fragment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.fragments[name]
	if !ok {
		return Fragment{}, NewScriptError(ErrorTypeNotFound, name, "fragment not found", nil)
	}
	return e.fragment, nil
}

// Fragments returns the named fragments in the given order, skipping names
// that are not loaded.
func (r *Registry) Fragments(names ...string) []Fragment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Fragment, 0, len(names))
	for _, name := range names {
		if e, ok := r.fragments[name]; ok {
			out = append(out, e.fragment)
		}
	}
	return out
}

// List returns all fragment names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.fragments))
	for name := range r.fragments {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Reload re-reads a file-backed fragment and reports whether its source
// changed.
func (r *Registry) Reload(name string) (bool, error) {
	r.mu.RLock()
	e, ok := r.fragments[name]
	r.mu.RUnlock()
	if !ok || e.path == "" {
		return false, NewScriptError(ErrorTypeNotFound, name, "fragment is not backed by a file", nil)
	}

	content, modified, err := r.read(e.path)
	if err != nil {
		return false, NewScriptError(ErrorTypeNotFound, name, "failed to reload fragment", err)
	}

	checksum := r.generateChecksum(content)
	r.mu.Lock()
	defer r.mu.Unlock()
	if checksum == e.checksum {
		return false, nil
	}
	e.fragment.Source = content
	e.checksum = checksum
	e.lastModified = modified
	return true, nil
}

// Watch begins monitoring file-backed fragments. onChange receives the
// fragment name after its source changed on disk.
func (r *Registry) Watch(ctx context.Context, onChange func(name string)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watcherActive {
		slog.Debug("Fragment watcher already active")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}

	// Editors often replace files on save, so the directory is watched
	// rather than the file itself.
	paths := make(map[string]string)
	for name, e := range r.fragments {
		if e.path == "" {
			continue
		}
		abs, err := filepath.Abs(e.path)
		if err != nil {
			watcher.Close()
			return fmt.Errorf("failed to resolve %s: %w", e.path, err)
		}
		paths[abs] = name
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}
	}

	r.watcher = watcher
	r.watcherActive = true
	go r.watchFiles(ctx, watcher, paths, onChange)

	slog.Debug("Started fragment watcher", "files", len(paths))
	return nil
}

func (r *Registry) watchFiles(ctx context.Context, watcher *fsnotify.Watcher, paths map[string]string, onChange func(string)) {
	defer func() {
		r.mu.Lock()
		watcher.Close()
		if r.watcher == watcher {
			r.watcher = nil
			r.watcherActive = false
		}
		r.mu.Unlock()
		slog.Info("Fragment watcher stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			name, watched := paths[filepath.Clean(event.Name)]
			if !watched || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			changed, err := r.Reload(name)
			r.logger.LogHotReload("reload", name, event.Name, err)
			if err == nil && changed {
				onChange(name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File system watcher error", "error", err)
		}
	}
}

// StopWatcher stops the file system watcher
func (r *Registry) StopWatcher() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watcher != nil {
		r.watcher.Close()
		r.watcher = nil
		r.watcherActive = false
	}
}

// Metadata returns metadata about all loaded fragments
func (r *Registry) Metadata() []FragmentMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FragmentMetadata, 0, len(r.fragments))
	for name, e := range r.fragments {
		out = append(out, FragmentMetadata{
			Name:           name,
			Path:           e.path,
			AllowTransport: e.fragment.AllowTransport,
			LastModified:   e.lastModified,
			Checksum:       e.checksum,
			Size:           len(e.fragment.Source),
		})
	}
	slices.SortFunc(out, func(a, b FragmentMetadata) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

func (r *Registry) read(path string) (string, time.Time, error) {
	content, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return "", time.Time{}, err
	}
	modified := time.Now()
	if info, err := r.fs.Stat(path); err == nil {
		modified = info.ModTime()
	}
	return string(content), modified, nil
}

// generateChecksum creates a checksum for fragment content
func (r *Registry) generateChecksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}
