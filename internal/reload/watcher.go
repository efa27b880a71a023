// Package reload hot-reloads the index access policy when the config
// file changes on disk or on SIGHUP.
package reload

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/audit"
	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/indexfilter"
)

const defaultPollInterval = 5 * time.Second

// WatcherConfig configures the policy watcher.
type WatcherConfig struct {
	// ConfigPath is the configuration file to watch. Empty disables
	// file polling; SIGHUP still triggers a reload.
	ConfigPath string

	// PollInterval is how often to check for file changes.
	// Defaults to 5 seconds if zero.
	PollInterval time.Duration

	// Audit, if non-nil, receives a config_reload event per swap.
	Audit *audit.Logger
}

func (c WatcherConfig) pollIntervalOrDefault() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return defaultPollInterval
}

// Watcher reloads the access policy when the config file's mtime moves
// forward or the process receives SIGHUP.
type Watcher struct {
	cfg     WatcherConfig
	logger  *slog.Logger
	sighup  chan os.Signal
	stop    chan struct{}
	stopped chan struct{}

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once

	reloads atomic.Int64 // observed by tests
}

// NewWatcher creates a policy watcher.
func NewWatcher(cfg WatcherConfig, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		cfg:     cfg,
		logger:  logger,
		sighup:  make(chan os.Signal, 1),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins watching. Safe to call multiple times — only the first
// call starts the goroutine.
func (w *Watcher) Start(ctx context.Context) {
	w.startOnce.Do(func() {
		w.started.Store(true)
		signal.Notify(w.sighup, syscall.SIGHUP)
		// The mtime baseline is taken before Start returns; changes
		// made from this point on are detected.
		go w.run(ctx, w.statModTime())
	})
}

// Stop stops the watcher. Safe to call multiple times and before Start.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
	})
	if w.started.Load() {
		<-w.stopped
	}
}

// Reloads returns how many policy swaps this watcher performed.
func (w *Watcher) Reloads() int64 {
	return w.reloads.Load()
}

func (w *Watcher) run(ctx context.Context, lastMod time.Time) {
	defer close(w.stopped)
	defer signal.Stop(w.sighup)

	ticker := time.NewTicker(w.cfg.pollIntervalOrDefault())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-w.sighup:
			w.reload("SIGHUP")
		case <-ticker.C:
			if w.cfg.ConfigPath == "" {
				continue
			}
			current := w.statModTime()
			if current.IsZero() {
				continue
			}
			if current.After(lastMod) {
				lastMod = current
				w.reload("file modified")
			}
		}
	}
}

func (w *Watcher) reload(trigger string) {
	policy := indexfilter.Load(w.cfg.ConfigPath, w.logger)
	w.reloads.Add(1)
	w.logger.Info("access policy reloaded",
		"trigger", trigger,
		"allowed", len(policy.AllowedPatterns()),
		"denied", len(policy.DeniedPatterns()),
	)
	if w.cfg.Audit != nil {
		w.cfg.Audit.Log(audit.Event{
			Type: audit.EventConfigReload,
			Detail: fmt.Sprintf("%s: allowed=%d denied=%d", trigger,
				len(policy.AllowedPatterns()), len(policy.DeniedPatterns())),
		})
	}
}

func (w *Watcher) statModTime() time.Time {
	if w.cfg.ConfigPath == "" {
		return time.Time{}
	}
	info, err := os.Stat(w.cfg.ConfigPath)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
