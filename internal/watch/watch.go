package watch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

type Options struct {
	Dir       string
	Extension string
}

type Event struct {
	Profile string
	Op      string
}

type Logger func(msg string)

// Start reports profile files created, rewritten or removed in opts.Dir
// until ctx is done or the returned stop func is called.
func Start(ctx context.Context, opts Options, onEvent func(Event), logf Logger) (func() error, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Dir == "" {
		return nil, errors.New("watch dir is empty")
	}
	if opts.Extension == "" {
		opts.Extension = ".json"
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(opts.Dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				name := filepath.Base(ev.Name)
				if !strings.HasSuffix(name, opts.Extension) {
					continue
				}
				op := opName(ev.Op)
				if op == "" {
					continue
				}
				if onEvent != nil {
					onEvent(Event{Profile: strings.TrimSuffix(name, opts.Extension), Op: op})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if err != nil && logf != nil {
					logf("watch error: " + err.Error())
				}
			}
		}
	}()

	stop := func() error {
		err := watcher.Close()
		<-done
		return err
	}
	return stop, nil
}

func opName(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "created"
	case op&fsnotify.Write != 0:
		return "written"
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return "removed"
	default:
		return ""
	}
}
