package app

import (
	"time"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
	"github.com/j-veylop/accidents-dashboard-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// DatasetLoadedMsg carries the snapshot available at startup and the state
// the UI should select first. Err is set when the initial load failed.
type DatasetLoadedMsg struct {
	Dataset *models.Dataset
	Filter  models.StateFilter
	Err     error
}

// SelectStateMsg requests switching the state filter.
type SelectStateMsg struct {
	Filter models.StateFilter
}

// SetGranularityMsg requests a different period size for the temporal views.
type SetGranularityMsg struct {
	Granularity models.Granularity
}

// ReportReadyMsg carries a freshly built report. DatasetID, Filter and
// Granularity identify the request so late results can be discarded.
type ReportReadyMsg struct {
	Report      *models.StateReport
	Err         error
	DatasetID   string
	Filter      models.StateFilter
	Granularity models.Granularity
}

// HistoryLoadedMsg carries the load history for the info tab.
type HistoryLoadedMsg struct {
	Entries []models.LoadHistoryEntry
	Err     error
}

// ReloadResultMsg reports the end of a manual reload.
type ReloadResultMsg struct {
	Err error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
