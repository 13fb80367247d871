package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events editors emit on save.
const reloadDebounce = 100 * time.Millisecond

// TuningWatcher reloads a tuning file whenever it changes on disk.
// Successfully parsed tunings are delivered on Events, load failures on Errors.
type TuningWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	Events  chan Tuning
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// WatchTuning starts watching the directory that holds path. The directory is
// watched instead of the file so atomic replace-on-save keeps working.
func WatchTuning(path string) (*TuningWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	tw := &TuningWatcher{
		path:    filepath.Clean(path),
		watcher: w,
		Events:  make(chan Tuning, 4),
		Errors:  make(chan error, 4),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go tw.run()
	return tw, nil
}

// Close stops the watcher. Events and Errors are closed once the watch
// goroutine exits.
func (tw *TuningWatcher) Close() error {
	var err error
	tw.once.Do(func() {
		close(tw.closeCh)
		err = tw.watcher.Close()
		<-tw.done
	})
	return err
}

func (tw *TuningWatcher) run() {
	defer func() {
		close(tw.Events)
		close(tw.Errors)
		close(tw.done)
	}()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-tw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != tw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			t, err := LoadTuning(tw.path)
			if err != nil {
				tw.send(nil, err)
				continue
			}
			tw.send(&t, nil)
		case err, ok := <-tw.watcher.Errors:
			if !ok {
				return
			}
			tw.send(nil, err)
		case <-tw.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// send delivers without blocking past Close.
func (tw *TuningWatcher) send(t *Tuning, err error) {
	if t != nil {
		select {
		case tw.Events <- *t:
		case <-tw.closeCh:
		}
		return
	}
	select {
	case tw.Errors <- err:
	case <-tw.closeCh:
	}
}
