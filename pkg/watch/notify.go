package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/calvin/pkg/errors"
	"github.com/arthur-debert/calvin/pkg/logging"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// EventBuffer is the capacity of the notification queue.
const EventBuffer = 256

// Notifier is a Source backed by fsnotify. fsnotify watches single
// directories, so every directory below the root is registered, including
// ones created later.
type Notifier struct {
	root    string
	ignore  *Matcher
	watcher *fsnotify.Watcher
	events  chan Event
	errs    chan error
	logger  zerolog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewNotifier starts watching root recursively.
func NewNotifier(root string, ignore *Matcher) (*Notifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrNotifyBackend, "cannot create file watcher")
	}
	n := &Notifier{
		root:    root,
		ignore:  ignore,
		watcher: w,
		events:  make(chan Event, EventBuffer),
		errs:    make(chan error, 1),
		logger:  logging.GetLogger("watch.notify"),
		done:    make(chan struct{}),
	}
	if err := n.addTree(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	go n.forward()
	return n, nil
}

func (n *Notifier) Events() <-chan Event { return n.events }
func (n *Notifier) Errors() <-chan error { return n.errs }

// Close stops the watcher. Safe to call more than once.
func (n *Notifier) Close() error {
	var err error
	n.closeOnce.Do(func() {
		close(n.done)
		err = n.watcher.Close()
	})
	return err
}

func (n *Notifier) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p != dir {
				return nil
			}
			return errors.Wrapf(err, errors.ErrNotifyBackend, "cannot walk %s", p)
		}
		if !d.IsDir() {
			return nil
		}
		if rel, rerr := filepath.Rel(n.root, p); rerr == nil && rel != "." && n.ignore.Match(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		if err := n.watcher.Add(p); err != nil {
			return errors.Wrapf(err, errors.ErrNotifyBackend, "cannot watch %s", p)
		}
		n.logger.Trace().Str("dir", p).Msg("watching")
		return nil
	})
}

func (n *Notifier) forward() {
	defer close(n.events)
	for {
		select {
		case <-n.done:
			return
		case ev, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := n.addTree(ev.Name); err != nil {
						n.logger.Warn().Err(err).Str("dir", ev.Name).Msg("cannot watch new directory")
					}
				}
			}
			select {
			case n.events <- Event{Path: ev.Name, Op: ev.Op.String()}:
			case <-n.done:
				return
			}
		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			select {
			case n.errs <- err:
			default:
				n.logger.Warn().Err(err).Msg("dropping watcher error")
			}
		}
	}
}
