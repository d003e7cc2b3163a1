// Package dataset owns the current dataset snapshot: it loads the input
// files (or their sqlite cache), watches them for changes and swaps in a
// new snapshot when they are rewritten.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/accidents-dashboard-tui/internal/db"
	"github.com/j-veylop/accidents-dashboard-tui/internal/geo"
	"github.com/j-veylop/accidents-dashboard-tui/internal/loader"
	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// Load triggers recorded in the load history.
const (
	TriggerStartup = "startup"
	TriggerReload  = "reload"
	TriggerImport  = "import"
)

// ErrClosed is returned by Load once the service has been closed.
var ErrClosed = errors.New("dataset service closed")

// historyKeep is the number of load history rows kept in the cache.
const historyKeep = 200

// Event represents a dataset service event.
type Event struct {
	Type    EventType
	Error   error
	Dataset *models.Dataset
}

// EventType defines the type of dataset event.
type EventType int

const (
	EventDatasetLoaded EventType = iota
	EventDatasetReloaded
	EventError
)

// Options configures the service.
type Options struct {
	AccidentsPath      string
	MunicipalitiesPath string
	BoundariesPath     string
	Loader             loader.Options
	Watch              bool
	Debounce           time.Duration
}

// Service holds the current snapshot and reloads it on file changes.
type Service struct {
	mu       sync.RWMutex
	dataset  *models.Dataset
	outlines geo.Outlines
	lastErr  error

	opts          Options
	db            *db.DB
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once

	// loadMu serializes loads; closed is guarded by it.
	loadMu sync.Mutex
	closed bool
}

// New creates the service and performs the initial load. A load failure is
// not fatal: it is kept in LastError and sent as an EventError so the UI can
// show it. database may be nil when the cache is disabled.
func New(ctx context.Context, opts Options, database *db.DB) (*Service, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}

	s := &Service{
		opts:      opts,
		db:        database,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	if ds, err := s.Load(ctx, TriggerStartup, false); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
	} else {
		s.sendEvent(Event{Type: EventDatasetLoaded, Dataset: ds})
	}

	if opts.BoundariesPath != "" {
		if err := s.loadBoundaries(); err != nil {
			logger.Warn("map outlines unavailable", "path", opts.BoundariesPath, "error", err)
		}
	}

	if opts.Watch {
		if err := s.startWatcher(); err != nil {
			return nil, fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	return s, nil
}

// Events returns the event channel for subscribing to dataset changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Dataset returns the current snapshot, or nil if nothing loaded yet.
func (s *Service) Dataset() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Outlines returns the state boundaries, or nil when none are configured.
func (s *Service) Outlines() geo.Outlines {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outlines
}

// LastError returns the error of the most recent failed load, cleared by a
// successful one.
func (s *Service) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Load reads the dataset and makes it current. Unless force is set, an
// unchanged pair of input files is read from the cache instead of being
// parsed again. Every attempt is recorded in the load history.
func (s *Service) Load(ctx context.Context, trigger string, force bool) (*models.Dataset, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	entry := &models.LoadHistoryEntry{LoadedAt: start, Trigger: trigger}

	ds, err := s.load(ctx, force)
	entry.Duration = time.Since(start)
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.LoadID = ds.ID
		entry.AccidentRows = ds.Report.AccidentRows
		entry.MunicipalityRows = ds.Report.MunicipalityRows
		entry.NullCoordinates = ds.Report.NullCoordinates
		entry.FromCache = isCached(ds)
	}
	s.recordHistory(entry)

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.dataset = ds
	}
	s.mu.Unlock()

	if err != nil {
		logger.Error("dataset load failed", "trigger", trigger, "error", err)
		return nil, err
	}

	logger.Info("dataset ready",
		"trigger", trigger,
		"load_id", ds.ID,
		"from_cache", entry.FromCache,
		"duration", entry.Duration)
	return ds, nil
}

func (s *Service) load(ctx context.Context, force bool) (*models.Dataset, error) {
	if s.db != nil && !force {
		if ds := s.fromCache(); ds != nil {
			return ds, nil
		}
	}

	ds, err := loader.Load(ctx, s.opts.AccidentsPath, s.opts.MunicipalitiesPath, s.opts.Loader)
	if err != nil {
		return nil, err
	}

	if s.db != nil {
		if err := s.db.SaveDataset(ds); err != nil {
			logger.Warn("failed to cache dataset", "error", err)
		}
	}
	return ds, nil
}

// fromCache returns the cached snapshot when both input files are
// unchanged and were parsed with the current loader options, or nil.
func (s *Service) fromCache() *models.Dataset {
	current := make([]models.SourceInfo, 0, 2)
	for _, src := range []struct{ path, kind string }{
		{s.opts.AccidentsPath, loader.KindAccidents},
		{s.opts.MunicipalitiesPath, loader.KindMunicipalities},
	} {
		info, err := loader.Stat(src.path, src.kind)
		if err != nil {
			return nil
		}
		info.Options = s.opts.Loader.Fingerprint()
		current = append(current, info)
	}

	ok, err := s.db.SourcesMatch(current)
	if err != nil {
		logger.Warn("failed to check dataset cache", "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	ds, err := s.db.LoadDataset()
	if err != nil {
		if !errors.Is(err, db.ErrCacheEmpty) {
			logger.Warn("failed to read dataset cache", "error", err)
		}
		return nil
	}
	return ds
}

func isCached(ds *models.Dataset) bool {
	for _, src := range ds.Sources {
		if src.FromCache {
			return true
		}
	}
	return false
}

func (s *Service) recordHistory(entry *models.LoadHistoryEntry) {
	if s.db == nil {
		return
	}
	if err := s.db.InsertLoadHistory(entry); err != nil {
		logger.Warn("failed to record load history", "error", err)
		return
	}
	if _, err := s.db.CleanupLoadHistory(historyKeep); err != nil {
		logger.Warn("failed to trim load history", "error", err)
	}
}

// History returns the most recent load attempts, newest first.
func (s *Service) History(limit int) ([]models.LoadHistoryEntry, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.GetLoadHistory(limit)
}

// Reload re-reads the input files and emits EventDatasetReloaded.
func (s *Service) Reload(ctx context.Context) error {
	ds, err := s.Load(ctx, TriggerReload, false)
	if errors.Is(err, ErrClosed) {
		return err
	}
	if err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return err
	}
	s.sendEvent(Event{Type: EventDatasetReloaded, Dataset: ds})
	return nil
}

// startWatcher watches the directories holding the input files.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	dirs := make(map[string]struct{})
	for _, p := range []string{s.opts.AccidentsPath, s.opts.MunicipalitiesPath} {
		dirs[filepath.Dir(p)] = struct{}{}
	}

	var watched int
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logger.Warn("cannot watch data directory", "dir", dir, "error", err)
			continue
		}
		watched++
	}
	if watched == 0 {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		s.watcher = nil
		logger.Warn("hot reload disabled: no data directory could be watched")
		return nil
	}

	go s.watchLoop()
	return nil
}

// isInput reports whether a watcher event concerns one of the input files.
func (s *Service) isInput(name string) bool {
	for _, p := range []string{s.opts.AccidentsPath, s.opts.MunicipalitiesPath} {
		if filepath.Clean(name) == filepath.Clean(p) || filepath.Base(name) == filepath.Base(p) {
			return true
		}
	}
	return false
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if !s.isInput(event.Name) {
				continue
			}

			// Editors and exporters often write in several steps.
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(s.opts.Debounce, s.handleFileChange)
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleFileChange() {
	select {
	case <-s.stopChan:
		return
	default:
	}
	logger.Info("input files changed, reloading")
	_ = s.Reload(context.Background())
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and waits for a running load to finish, so
// nothing touches the cache after it returns. Later calls are no-ops.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		s.loadMu.Lock()
		s.closed = true
		s.loadMu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
