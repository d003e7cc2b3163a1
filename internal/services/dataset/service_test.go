package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/accidents-dashboard-tui/internal/db"
	"github.com/j-veylop/accidents-dashboard-tui/internal/loader"
)

const (
	accidentsCSV = "uf_acidente,codigo_ibge,data_acidente,hora_acidente,latitude,longitude\n" +
		"SP,3550308,2022-01-03,08:00,-23.5,-46.6\n" +
		"SP,3509502,2022-01-04,18:30,,\n" +
		"RJ,3304557,2022-02-01,12:00,-22.9,-43.2\n"

	municipalitiesCSV = "codigo_ibge,uf,municipio,populacao,frota_total\n" +
		"3550308,SP,São Paulo,12000000,9000000\n" +
		"3509502,SP,Campinas,1200000,900000\n" +
		"3304557,RJ,Rio de Janeiro,6700000,3000000\n"
)

func writeInputs(t *testing.T, dir string) Options {
	t.Helper()
	opts := Options{
		AccidentsPath:      filepath.Join(dir, "acidentes.csv"),
		MunicipalitiesPath: filepath.Join(dir, "localidades.csv"),
		Loader:             loader.Options{Delimiter: ','},
		Debounce:           50 * time.Millisecond,
	}
	if err := os.WriteFile(opts.AccidentsPath, []byte(accidentsCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(opts.MunicipalitiesPath, []byte(municipalitiesCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	return opts
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("db.New failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func newTestService(t *testing.T, opts Options, database *db.DB) *Service {
	t.Helper()
	svc, err := New(context.Background(), opts, database)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(); err != nil {
			t.Logf("Close() failed: %v", err)
		}
	})
	return svc
}

func waitForEvent(t *testing.T, svc *Service, want EventType) Event {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-svc.Events():
			if ev.Type == want {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for event %d", want)
		}
	}
}

func TestNew_LoadsDataset(t *testing.T) {
	opts := writeInputs(t, t.TempDir())
	svc := newTestService(t, opts, nil)

	ev := waitForEvent(t, svc, EventDatasetLoaded)
	if ev.Dataset == nil || len(ev.Dataset.Accidents) != 3 {
		t.Fatalf("unexpected loaded dataset: %+v", ev.Dataset)
	}

	ds := svc.Dataset()
	if ds != ev.Dataset {
		t.Error("Dataset() should return the loaded snapshot")
	}
	if ds.Report.NullCoordinates != 1 {
		t.Errorf("NullCoordinates = %d, want 1", ds.Report.NullCoordinates)
	}
	if svc.LastError() != nil {
		t.Errorf("LastError() = %v, want nil", svc.LastError())
	}
	if h, err := svc.History(10); err != nil || h != nil {
		t.Errorf("History without cache = %v, %v; want nil, nil", h, err)
	}
}

func TestNew_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	svc := newTestService(t, Options{
		AccidentsPath:      filepath.Join(dir, "missing.csv"),
		MunicipalitiesPath: filepath.Join(dir, "also-missing.csv"),
	}, nil)

	ev := waitForEvent(t, svc, EventError)
	if ev.Error == nil {
		t.Error("expected error event for missing inputs")
	}
	if svc.Dataset() != nil {
		t.Error("Dataset() should be nil after a failed load")
	}
	if svc.LastError() == nil {
		t.Error("LastError() should be set")
	}
}

func TestLoad_UsesCache(t *testing.T) {
	opts := writeInputs(t, t.TempDir())
	database := newTestDB(t)

	first := newTestService(t, opts, database)
	if first.Dataset() == nil {
		t.Fatal("initial load failed")
	}
	firstID := first.Dataset().ID

	second := newTestService(t, opts, database)
	ds := second.Dataset()
	if ds == nil {
		t.Fatal("cached load failed")
	}
	if ds.ID != firstID {
		t.Errorf("cached load ID = %q, want %q", ds.ID, firstID)
	}
	if !isCached(ds) {
		t.Error("second load should come from the cache")
	}

	forced, err := second.Load(context.Background(), TriggerImport, true)
	if err != nil {
		t.Fatalf("forced Load failed: %v", err)
	}
	if isCached(forced) || forced.ID == firstID {
		t.Error("forced load should re-read the files")
	}

	history, err := second.History(10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("got %d history entries, want 3", len(history))
	}
	if history[0].Trigger != TriggerImport || history[0].FromCache {
		t.Errorf("unexpected newest entry: %+v", history[0])
	}
	if !history[1].FromCache {
		t.Errorf("second startup should be recorded as cached: %+v", history[1])
	}
}

func TestLoad_ReparsesWhenOptionsChange(t *testing.T) {
	dir := t.TempDir()
	opts := writeInputs(t, dir)
	latin1 := "codigo_ibge,uf,municipio,populacao,frota_total\n" +
		"3550308,SP,S\xe3o Paulo,12000000,9000000\n"
	if err := os.WriteFile(opts.MunicipalitiesPath, []byte(latin1), 0o600); err != nil {
		t.Fatal(err)
	}
	database := newTestDB(t)

	first := newTestService(t, opts, database)
	if first.Dataset() == nil {
		t.Fatal("initial load failed")
	}

	tests := []struct {
		name   string
		loader loader.Options
		want   string
	}{
		{"EncodingChanged", loader.Options{Delimiter: ',', Encoding: "latin1"}, "São Paulo"},
		{"DelimiterChanged", loader.Options{Delimiter: ';'}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := opts
			changed.Loader = tt.loader
			svc := newTestService(t, changed, database)

			if tt.want == "" {
				if svc.Dataset() != nil {
					t.Fatal("a semicolon-delimited read of a comma file should fail, not hit the cache")
				}
				return
			}

			ds := svc.Dataset()
			if ds == nil {
				t.Fatalf("load failed: %v", svc.LastError())
			}
			if isCached(ds) {
				t.Error("changed loader options must not be served from the cache")
			}
			if got := ds.Municipalities[0].Name; got != tt.want {
				t.Errorf("municipality name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReload_OnFileChange(t *testing.T) {
	opts := writeInputs(t, t.TempDir())
	opts.Watch = true
	svc := newTestService(t, opts, nil)
	waitForEvent(t, svc, EventDatasetLoaded)

	updated := accidentsCSV + "RJ,3304557,2022-03-01,07:15,-22.9,-43.2\n"
	if err := os.WriteFile(opts.AccidentsPath, []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}

	ev := waitForEvent(t, svc, EventDatasetReloaded)
	if got := len(ev.Dataset.Accidents); got != 4 {
		t.Errorf("reloaded dataset has %d accidents, want 4", got)
	}
	if svc.Dataset() != ev.Dataset {
		t.Error("reload should swap the current snapshot")
	}
}

func TestReload_KeepsSnapshotOnError(t *testing.T) {
	opts := writeInputs(t, t.TempDir())
	svc := newTestService(t, opts, nil)
	before := svc.Dataset()

	if err := os.WriteFile(opts.AccidentsPath, []byte("foo,bar\n1,2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := svc.Reload(context.Background()); err == nil {
		t.Fatal("expected reload error for missing columns")
	}
	if svc.Dataset() != before {
		t.Error("failed reload must keep the previous snapshot")
	}
	if svc.LastError() == nil {
		t.Error("LastError() should be set after a failed reload")
	}
}

func TestClose_WaitsForLoadAndIsIdempotent(t *testing.T) {
	opts := writeInputs(t, t.TempDir())
	svc, err := New(context.Background(), opts, newTestDB(t))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	// Hold the load lock as an in-flight reload would.
	svc.loadMu.Lock()
	done := make(chan error, 1)
	go func() { done <- svc.Close() }()

	select {
	case <-done:
		t.Fatal("Close returned while a load was still running")
	case <-time.After(50 * time.Millisecond):
	}

	svc.loadMu.Unlock()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Close() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the load finished")
	}

	if err := svc.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
	if _, err := svc.Load(context.Background(), TriggerReload, true); !errors.Is(err, ErrClosed) {
		t.Errorf("Load after Close = %v, want ErrClosed", err)
	}
	if err := svc.Reload(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Reload after Close = %v, want ErrClosed", err)
	}
}

func TestIsInput(t *testing.T) {
	svc := &Service{opts: Options{
		AccidentsPath:      "/data/acidentes.csv",
		MunicipalitiesPath: "/data/localidades.xlsx",
	}}

	tests := []struct {
		name string
		want bool
	}{
		{"/data/acidentes.csv", true},
		{"/data/localidades.xlsx", true},
		{"/data/acidentes.csv.tmp", false},
		{"/data/other.csv", false},
	}
	for _, tt := range tests {
		if got := svc.isInput(tt.name); got != tt.want {
			t.Errorf("isInput(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
