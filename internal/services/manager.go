// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/accidents-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/accidents-dashboard-tui/internal/config"
	"github.com/j-veylop/accidents-dashboard-tui/internal/db"
	"github.com/j-veylop/accidents-dashboard-tui/internal/geo"
	"github.com/j-veylop/accidents-dashboard-tui/internal/loader"
	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/services/dataset"
	"github.com/j-veylop/accidents-dashboard-tui/internal/services/report"
)

type (
	// DatasetLoadedEvent is emitted after the initial load.
	DatasetLoadedEvent struct {
		Dataset *models.Dataset
	}

	// DatasetReloadedEvent is emitted when the input files changed and a new
	// snapshot replaced the current one.
	DatasetReloadedEvent struct {
		Dataset *models.Dataset
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (DatasetLoadedEvent) isServiceEvent()   {}
func (DatasetReloadedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()           {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	dataset     *dataset.Service
	reports     *report.Service
	database    *db.DB
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager and loads the dataset.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:       cfg,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}

	var err error
	if cfg.CacheEnabled() {
		m.database, err = db.New(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
	}

	granularity, _ := models.ParseGranularity(cfg.Granularity)
	m.reports = report.New(aggregator.Options{
		TopN:        cfg.TopN,
		Granularity: granularity,
	})

	m.dataset, err = dataset.New(context.Background(), dataset.Options{
		AccidentsPath:      cfg.AccidentsPath,
		MunicipalitiesPath: cfg.MunicipalitiesPath,
		BoundariesPath:     cfg.BoundariesPath,
		Loader: loader.Options{
			Delimiter: cfg.CSVDelimiter,
			Encoding:  cfg.CSVEncoding,
		},
		Watch:    cfg.WatchData,
		Debounce: cfg.ReloadDebounce,
	}, m.database)
	if err != nil {
		if m.database != nil {
			_ = m.database.Close()
		}
		return nil, err
	}

	go m.routeEvents()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.dataset.Events():
			m.handleDatasetEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleDatasetEvent converts and broadcasts dataset events.
func (m *Manager) handleDatasetEvent(event dataset.Event) {
	switch event.Type {
	case dataset.EventDatasetLoaded:
		m.broadcast(DatasetLoadedEvent{Dataset: event.Dataset})

	case dataset.EventDatasetReloaded:
		m.broadcast(DatasetReloadedEvent{Dataset: event.Dataset})
		m.notifyReload(event.Dataset)

	case dataset.EventError:
		m.broadcast(ErrorEvent{
			Service: "dataset",
			Error:   event.Error,
		})
	}
}

func (m *Manager) notifyReload(ds *models.Dataset) {
	if !m.cfg.NotifyOnReload || ds == nil {
		return
	}
	body := fmt.Sprintf("%s accidents, %s municipalities",
		humanize.Comma(int64(ds.Report.AccidentRows)),
		humanize.Comma(int64(ds.Report.MunicipalityRows)))
	if err := beeep.Notify("Accident data reloaded", body, ""); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Dataset returns the dataset service.
func (m *Manager) Dataset() *dataset.Service {
	return m.dataset
}

// Reports returns the report service.
func (m *Manager) Reports() *report.Service {
	return m.reports
}

// Database returns the cache database, or nil when caching is disabled.
func (m *Manager) Database() *db.DB {
	return m.database
}

// BuildReport computes the views for a state from the current snapshot.
func (m *Manager) BuildReport(filter models.StateFilter, granularity models.Granularity) (*models.StateReport, error) {
	ds := m.dataset.Dataset()
	if ds == nil {
		if err := m.dataset.LastError(); err != nil {
			return nil, err
		}
		return nil, aggregator.ErrEmptyDataset
	}
	return m.reports.Build(ds, filter, granularity)
}

// BuildMap projects a report onto a density grid of the given size.
func (m *Manager) BuildMap(rep *models.StateReport, cols, rows int) *geo.DensityGrid {
	return m.reports.Map(rep, m.dataset.Outlines(), cols, rows)
}

// Reload re-reads the input files.
func (m *Manager) Reload() error {
	return m.dataset.Reload(context.Background())
}

// LoadHistory returns recent dataset loads, newest first.
func (m *Manager) LoadHistory(limit int) ([]models.LoadHistoryEntry, error) {
	return m.dataset.History(limit)
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.dataset.Close(); err != nil {
		errs = append(errs, err)
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// InitialState returns the current snapshot and the state selection the UI
// should start with.
func (m *Manager) InitialState() (*models.Dataset, models.StateFilter) {
	ds := m.dataset.Dataset()
	if m.cfg.DefaultState != "" {
		return ds, models.NewStateFilter(m.cfg.DefaultState)
	}
	if states := ds.States(); len(states) > 0 {
		return ds, models.StateFilter(states[0])
	}
	return ds, models.AllStates
}
