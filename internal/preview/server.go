// Package preview runs a local HTTP server over the generated site, rebuilding
// on content changes and optionally on a fixed schedule.
package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/logfields"
	"git.home.luguber.info/inful/blogsmith/internal/metrics"
	"git.home.luguber.info/inful/blogsmith/internal/site"
)

const debounceWindow = 300 * time.Millisecond

// buildStatus tracks the most recent build result for the status endpoint.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastBuildID  string
	lastBuildEnd time.Time
	goodBuilds   int
}

func (bs *buildStatus) setError(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = err
}

func (bs *buildStatus) setSuccess(report *site.BuildReport) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.lastError = nil
	bs.lastBuildID = report.BuildID
	bs.lastBuildEnd = report.End
	bs.goodBuilds++
}

func (bs *buildStatus) snapshot() (buildID string, end time.Time, good int, err error) {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastBuildID, bs.lastBuildEnd, bs.goodBuilds, bs.lastError
}

// Options controls the preview server.
type Options struct {
	Port         int
	Watch        bool          // rebuild on content changes
	RebuildEvery time.Duration // 0 disables scheduled rebuilds
}

// Server serves the output directory and coordinates rebuilds.
type Server struct {
	cfg      *config.Config
	asm      *site.Assembler
	opts     Options
	status   *buildStatus
	registry *prom.Registry
}

// NewServer creates a preview server. Rebuilds include drafts so work in
// progress is visible locally.
func NewServer(cfg *config.Config, outputDir string, opts Options) (*Server, error) {
	registry := prom.NewRegistry()
	asm, err := site.NewAssembler(cfg, outputDir, true)
	if err != nil {
		return nil, err
	}
	asm.SetRecorder(metrics.NewPrometheusRecorder(registry))
	return &Server{
		cfg:      cfg,
		asm:      asm,
		opts:     opts,
		status:   &buildStatus{},
		registry: registry,
	}, nil
}

// Run performs an initial build and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.opts.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpServer := &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		if serveErr := httpServer.Serve(ln); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("Preview server failed", logfields.Error(serveErr))
		}
	}()
	slog.Info("Preview server listening",
		slog.Int("port", s.opts.Port),
		logfields.URL(fmt.Sprintf("http://localhost:%d", s.opts.Port)))

	rebuildReq := make(chan struct{}, 1)
	workerDone := s.startRebuildWorker(ctx, rebuildReq)

	var watcher *fsnotify.Watcher
	if s.opts.Watch {
		watcher, err = s.setupWatcher()
		if err != nil {
			slog.Warn("Content watching disabled", logfields.Error(err))
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	var scheduler gocron.Scheduler
	if s.opts.RebuildEvery > 0 {
		scheduler, err = s.startScheduler(rebuildReq)
		if err != nil {
			slog.Warn("Scheduled rebuilds disabled", logfields.Error(err))
		} else {
			defer func() { _ = scheduler.Shutdown() }()
		}
	}

	err = s.eventLoop(ctx, watcher, rebuildReq)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		slog.Warn("HTTP shutdown error", logfields.Error(shutdownErr))
	}
	<-workerDone
	return err
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.asm.OutputDir())))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, _, good, lastErr := s.status.snapshot()
	if good == 0 && lastErr != nil {
		http.Error(w, "no successful build yet", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	buildID, end, good, lastErr := s.status.snapshot()
	payload := map[string]any{
		"good_builds":   good,
		"last_build_id": buildID,
	}
	if !end.IsZero() {
		payload["last_build_end"] = end.Format(time.RFC3339)
	}
	if lastErr != nil {
		payload["last_error"] = lastErr.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// startRebuildWorker serializes rebuild requests; a request arriving while a
// build runs collapses into one follow-up rebuild.
func (s *Server) startRebuildWorker(ctx context.Context, rebuildReq chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-rebuildReq:
				if !ok {
					return
				}
				s.rebuild(ctx)
			}
		}
	}()
	return done
}

func (s *Server) rebuild(ctx context.Context) {
	report, err := s.asm.Build(ctx)
	if err != nil {
		slog.Warn("Rebuild failed; keeping previous output", logfields.Error(err))
		s.status.setError(err)
		return
	}
	s.status.setSuccess(report)
}

func (s *Server) setupWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, s.cfg.Content.Directory); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	slog.Info("Watching content directory", logfields.Path(s.cfg.Content.Directory))
	return watcher, nil
}

func (s *Server) startScheduler(rebuildReq chan struct{}) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("gocron: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(s.opts.RebuildEvery),
		gocron.NewTask(func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
	}
	scheduler.Start()
	slog.Info("Scheduled periodic rebuilds", slog.Duration("every", s.opts.RebuildEvery))
	return scheduler, nil
}

// eventLoop turns watcher events into debounced rebuild requests until ctx is done.
func (s *Server) eventLoop(ctx context.Context, watcher *fsnotify.Watcher, rebuildReq chan struct{}) error {
	var mu sync.Mutex
	var timer *time.Timer
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}

	var events chan fsnotify.Event
	var watchErrs chan error
	if watcher != nil {
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutting down preview server")
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.handleFileEvent(watcher, ev, trigger)
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (s *Server) handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnoreEvent(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("Content change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if addErr := w.Add(path); addErr != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(addErr))
			}
		}
		return nil
	})
}

// shouldIgnoreEvent filters out hidden files and editor temp/swap files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
