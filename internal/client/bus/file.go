package bus

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FileBus watches the database file (and its -wal/-journal siblings) and
// reports writes as key-less changes. It needs no broker but cannot tell who
// wrote or what; Publish is a no-op because the write itself is the signal.
type FileBus struct {
	dir  string
	base string
}

// NewFileBus watches the SQLite database at dbPath.
func NewFileBus(dbPath string) *FileBus {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		abs = dbPath
	}
	return &FileBus{dir: filepath.Dir(abs), base: filepath.Base(abs)}
}

func (b *FileBus) Publish(context.Context, Change) error {
	return nil
}

func (b *FileBus) Subscribe(ctx context.Context) (<-chan Change, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(b.dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", b.dir, err)
	}

	out := make(chan Change, 1)

	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !b.relevant(ev) {
					continue
				}
				// one pending signal is enough, readers reload everything
				select {
				case out <- Change{}:
				default:
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}

func (b *FileBus) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), b.base)
}

func (b *FileBus) Close() error {
	return nil
}
