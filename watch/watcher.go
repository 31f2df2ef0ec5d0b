package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bioimagesuiteweb/bisresample/batch"
	"github.com/bioimagesuiteweb/bisresample/config"
)

// Watcher resamples every new or rewritten input file in a directory once
// it has been quiet for the settle time.
type Watcher struct {
	conf    config.Watch
	runner  *batch.Runner
	values  map[string]string
	metrics *Metrics
	log     *zap.Logger

	pending map[string]time.Time
}

// New returns a watcher that submits jobs to runner. metrics may be nil.
func New(conf config.Watch, runner *batch.Runner, values map[string]string, metrics *Metrics, log *zap.Logger) *Watcher {
	if conf.Settle <= 0 {
		conf.Settle = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		conf:    conf,
		runner:  runner,
		values:  values,
		metrics: metrics,
		log:     log,
		pending: make(map[string]time.Time),
	}
}

// Run watches until ctx is done. Files already in the directory without an
// output are queued on start.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.conf.Dir, 0o755); err != nil {
		return err
	}
	if err := os.MkdirAll(w.conf.OutDir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
		w.log.Info("watch has ended", zap.String("dir", w.conf.Dir))
	}()

	if err := watcher.Add(w.conf.Dir); err != nil {
		return err
	}
	w.log.Info("watching", zap.String("dir", w.conf.Dir), zap.String("out", w.conf.OutDir))

	w.queueExisting()

	tick := time.NewTicker(max(w.conf.Settle/2, time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				w.touch(event.Name, time.Now())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case now := <-tick.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.HasSuffix(base, w.conf.Suffix) && !batch.IsOutput(path)
}

func (w *Watcher) touch(path string, at time.Time) {
	if !w.accepts(path) {
		return
	}
	w.pending[path] = at
}

func (w *Watcher) queueExisting() {
	entries, err := os.ReadDir(w.conf.Dir)
	if err != nil {
		w.log.Warn("scan failed", zap.Error(err))
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(w.conf.Dir, e.Name())
		if _, err := os.Stat(batch.OutputName(path, w.conf.OutDir)); err == nil {
			continue
		}
		w.touch(path, time.Time{})
	}
}

// flush runs the jobs whose files have settled.
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.conf.Settle {
			ready = append(ready, path)
		}
	}
	if len(ready) == 0 {
		return
	}
	sort.Strings(ready)
	for _, p := range ready {
		delete(w.pending, p)
	}

	for _, res := range w.runner.Run(ctx, batch.Jobs(ready, w.conf.OutDir, w.values)) {
		if w.metrics != nil {
			w.metrics.Observe(res)
		}
	}
}
