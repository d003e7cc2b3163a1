// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"strconv"
	"sync"
	"time"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Report  bool
	Reload  bool
}

// State is the data shared between the root model and the tabs. The
// dataset and report pointers are immutable snapshots; replacing them is
// the only mutation.
type State struct {
	mu sync.RWMutex

	Dataset     *models.Dataset
	Report      *models.StateReport
	Filter      models.StateFilter
	Granularity models.Granularity
	History     []models.LoadHistoryEntry

	// LoadErr is the reason no dataset is available. ReportErr is set when
	// the last report could not be built.
	LoadErr   error
	ReportErr error

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates the shared state with the initial load pending.
func NewState() *State {
	return &State{
		Filter:        models.AllStates,
		Granularity:   models.GranularityMonth,
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "report":
		s.Loading.Report = loading
	case "reload":
		s.Loading.Reload = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Report || s.Loading.Reload
}

// IsReportLoading reports whether a report build is in flight.
func (s *State) IsReportLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Report
}

// IsReloading reports whether a manual reload is in flight.
func (s *State) IsReloading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Reload
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// SetDataset installs a new snapshot. The current filter is kept when the
// new dataset still contains that state and reset to ALL otherwise.
func (s *State) SetDataset(ds *models.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Dataset = ds
	s.LoadErr = nil
	s.LastUpdated = time.Now()

	if !s.Filter.IsAll() && !hasState(ds, s.Filter) {
		s.Filter = models.AllStates
	}
}

func hasState(ds *models.Dataset, f models.StateFilter) bool {
	for _, uf := range ds.States() {
		if uf == string(f) {
			return true
		}
	}
	return false
}

// GetDataset returns the current snapshot.
func (s *State) GetDataset() *models.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Dataset
}

// SetLoadError records why no dataset is available.
func (s *State) SetLoadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LoadErr = err
}

// GetLoadError returns the load error, if any.
func (s *State) GetLoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LoadErr
}

// StateOptions returns the selector entries: "ALL" followed by the sorted
// state codes of the current dataset.
func (s *State) StateOptions() []models.StateFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := s.Dataset.States()
	opts := make([]models.StateFilter, 0, len(states)+1)
	opts = append(opts, models.AllStates)
	for _, uf := range states {
		opts = append(opts, models.StateFilter(uf))
	}
	return opts
}

// SetFilter changes the state selection.
func (s *State) SetFilter(f models.StateFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Filter = f
}

// GetFilter returns the current state selection.
func (s *State) GetFilter() models.StateFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Filter
}

// SetGranularity changes the period size of the temporal views.
func (s *State) SetGranularity(g models.Granularity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Granularity = g
}

// GetGranularity returns the current period size.
func (s *State) GetGranularity() models.Granularity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Granularity
}

// SetReport replaces the current report and the error of its build.
func (s *State) SetReport(rep *models.StateReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Report = rep
	s.ReportErr = err
	s.LastUpdated = time.Now()
}

// GetReport returns the current report and the error of the last build.
func (s *State) GetReport() (*models.StateReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Report, s.ReportErr
}

// SetHistory replaces the load history.
func (s *State) SetHistory(entries []models.LoadHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = entries
}

// GetHistory returns a copy of the load history.
func (s *State) GetHistory() []models.LoadHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.LoadHistoryEntry, len(s.History))
	copy(out, s.History)
	return out
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := "n" + strconv.Itoa(s.notificationSeq)

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}
