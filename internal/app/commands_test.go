package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestCommands_Tick(t *testing.T) {
	cmds := NewCommands(nil)
	cmd := cmds.Tick(time.Millisecond)
	if cmd == nil {
		t.Error("Tick returned nil")
	}
}

func TestCommands_Notifications(t *testing.T) {
	cmds := NewCommands(nil)

	tests := []struct {
		name string
		fn   func(string) tea.Cmd
		want NotificationType
		dur  time.Duration
	}{
		{"Success", cmds.NotifySuccess, NotificationSuccess, DefaultNotificationDuration},
		{"Error", cmds.NotifyError, NotificationError, LongNotificationDuration},
		{"Warning", cmds.NotifyWarning, NotificationWarning, DefaultNotificationDuration},
		{"Info", cmds.NotifyInfo, NotificationInfo, QuickNotificationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration != tt.dur {
				t.Errorf("Duration = %v, want %v", addMsg.Duration, tt.dur)
			}
		})
	}
}

func TestCommands_ClearNotification(t *testing.T) {
	cmds := NewCommands(nil)
	cmd := cmds.ClearNotification("id", time.Millisecond)
	if cmd == nil {
		t.Fatal("ClearNotification returned nil")
	}
	msg, ok := cmd().(RemoveNotificationMsg)
	if !ok || msg.ID != "id" {
		t.Errorf("ClearNotification produced %#v", msg)
	}
}

func TestCommands_WithManager(t *testing.T) {
	mgr := testManager(t)
	cmds := NewCommands(mgr)

	loaded, ok := loadDatasetCmd(mgr)().(DatasetLoadedMsg)
	if !ok {
		t.Fatal("loadDatasetCmd should produce DatasetLoadedMsg")
	}
	if loaded.Dataset == nil || loaded.Err != nil {
		t.Fatalf("unexpected initial load: %+v", loaded)
	}
	if loaded.Filter != "RJ" {
		t.Errorf("initial filter = %q, want RJ", loaded.Filter)
	}

	ready, ok := cmds.BuildReport(loaded.Dataset, "SP", 0)().(ReportReadyMsg)
	if !ok {
		t.Fatal("BuildReport should produce ReportReadyMsg")
	}
	if ready.Err != nil || ready.Report == nil || ready.Report.TotalAccidents != 1 {
		t.Errorf("unexpected report: %+v", ready)
	}
	if ready.DatasetID != loaded.Dataset.ID || ready.Filter != "SP" {
		t.Errorf("report not tagged with its request: %+v", ready)
	}

	history, ok := cmds.LoadHistory()().(HistoryLoadedMsg)
	if !ok || history.Err != nil || len(history.Entries) == 0 {
		t.Errorf("unexpected history: %+v", history)
	}

	reload, ok := cmds.Reload()().(ReloadResultMsg)
	if !ok || reload.Err != nil {
		t.Errorf("unexpected reload result: %+v", reload)
	}
}
