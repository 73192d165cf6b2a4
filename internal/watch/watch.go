// Package watch observes a directory for newly exported invoice PDFs and
// hands them to a processing callback as they settle.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the create/write bursts a non-atomic PDF export
// produces into one event per file.
const DefaultDebounce = 2 * time.Second

// ErrNoRoots is returned when Start is called without directories to watch.
var ErrNoRoots = errors.New("no directories to watch")

// Config configures a Watcher.
type Config struct {
	Roots       []string      // directories to watch, recursive
	Debounce    time.Duration // settle time per file; DefaultDebounce if zero
	InitialScan bool          // emit PDFs already present at start
	Logger      *slog.Logger
}

// Watcher emits paths of settled PDF files under the watched roots.
type Watcher struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool

	// inflight counts armed debounce timers so shutdown can wait for their
	// callbacks before closing the output channel.
	inflight sync.WaitGroup
}

// New creates a Watcher.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Roots) == 0 {
		return nil, ErrNoRoots
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		cfg:     cfg,
		logger:  logger,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Start watches until ctx is cancelled, sending settled PDF paths on the
// returned channel. The channel closes when the watcher stops.
func (w *Watcher) Start(ctx context.Context) (<-chan string, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	out := make(chan string, 256)

	for _, root := range w.cfg.Roots {
		if err := w.addTree(fw, root, out); err != nil {
			fw.Close()
			return nil, err
		}
	}

	go func() {
		defer close(out)
		defer fw.Close()
		defer w.drainTimers()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				w.handleEvent(ctx, fw, ev, out)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.logger.Error("watch error", "error", err)
			}
		}
	}()

	return out, nil
}

// addTree registers root and its subdirectories, optionally emitting files
// already present.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string, out chan<- string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		if w.cfg.InitialScan && isPDF(path) {
			select {
			case out <- path:
			default:
				w.logger.Warn("dropping initial-scan file, channel full", "path", path)
			}
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, ev fsnotify.Event, out chan<- string) {
	if ev.Op.Has(fsnotify.Create) {
		// New subdirectory: watch it too. Regular files ride on their
		// directory's watch and must not consume watch descriptors.
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := fw.Add(ev.Name); err == nil {
				w.logger.Debug("watching new directory", "path", ev.Name)
			}
			return
		}
	}

	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) {
		return
	}
	if !isPDF(ev.Name) {
		return
	}

	w.debounce(ctx, ev.Name, out)
}

// debounce (re)arms a per-file timer; the file is emitted once no further
// event arrived within the settle window.
func (w *Watcher) debounce(ctx context.Context, path string, out chan<- string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	if timer, ok := w.pending[path]; ok {
		if timer.Stop() {
			w.inflight.Done()
		}
	}

	w.inflight.Add(1)
	w.pending[path] = time.AfterFunc(w.cfg.Debounce, func() {
		defer w.inflight.Done()

		w.mu.Lock()
		delete(w.pending, path)
		closed := w.closed
		w.mu.Unlock()

		// The channel closes only after drainTimers has waited for every
		// callback, so an open watcher here means the send is safe.
		if closed {
			return
		}

		select {
		case out <- path:
		case <-ctx.Done():
		}
	})
}

// drainTimers stops pending debounce timers and waits for callbacks already
// firing. Must complete before the output channel closes, or a late timer
// would send on a closed channel.
func (w *Watcher) drainTimers() {
	w.mu.Lock()
	w.closed = true
	for path, timer := range w.pending {
		if timer.Stop() {
			w.inflight.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.inflight.Wait()
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// ProcessSettled runs fn for path, retrying while the exporter may still be
// writing the file. Carrier portals write large PDFs non-atomically, so the
// first attempts can see a truncated file.
func ProcessSettled(ctx context.Context, path string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
