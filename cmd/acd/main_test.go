package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/j-veylop/accidents-dashboard-tui/internal/aggregator"
)

// setupEnv writes a small dataset and points the configuration at it.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	accidents := filepath.Join(dir, "acidentes.csv")
	municipalities := filepath.Join(dir, "localidades.csv")
	if err := os.WriteFile(accidents, []byte(
		"uf_acidente;codigo_ibge;data_acidente;hora_acidente\n"+
			"SP;1;2022-01-03;08:00\n"+
			"SP;1;2022-01-10;18:00\n"+
			"RJ;2;2022-01-04;09:00\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(municipalities, []byte(
		"codigo_ibge;uf;municipio;populacao;frota_total\n"+
			"1;SP;São Paulo;1000;500\n"+
			"2;RJ;Rio de Janeiro;2000;800\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ACCIDENTS_PATH", accidents)
	t.Setenv("MUNICIPALITIES_PATH", municipalities)
	t.Setenv("BOUNDARIES_PATH", "")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("CSV_ENCODING", "utf-8")
	t.Setenv("CACHE_PATH", filepath.Join(dir, "cache.db"))
	t.Setenv("LOG_PATH", filepath.Join(dir, "acd.log"))
	t.Setenv("DEFAULT_STATE", "")
	t.Setenv("GRANULARITY", "month")
	t.Setenv("TOP_N", "10")
	t.Setenv("WATCH_DATA", "false")
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReportCommand_JSON(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "report", "--state", "sp", "--format", "json", "--granularity", "month")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}

	var got struct {
		State          string `json:"state"`
		TotalAccidents int    `json:"total_accidents"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.State != "SP" || got.TotalAccidents != 2 {
		t.Errorf("report = %+v, want SP with 2 accidents", got)
	}
}

func TestReportCommand_NoData(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "report", "--state", "AC", "--format", "text", "--granularity", "week")
	if !errors.Is(err, aggregator.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if !strings.Contains(out, "No accidents recorded for AC.") {
		t.Errorf("output = %q", out)
	}
}

func TestReportCommand_BadFlags(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"report", "--state", "SP", "--format", "xml", "--granularity", "month"}},
		{"granularity", []string{"report", "--state", "SP", "--format", "text", "--granularity", "daily"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestImportCommand(t *testing.T) {
	dir := setupEnv(t)

	out, err := execute(t, "import")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Imported 3 accidents and 2 municipalities") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "cache.db")); err != nil {
		t.Errorf("cache not written: %v", err)
	}
}

func TestImportCommand_CacheDisabled(t *testing.T) {
	setupEnv(t)
	t.Setenv("CACHE_PATH", "off")

	if _, err := execute(t, "import"); err == nil {
		t.Error("import should fail without a cache")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "acd ") {
		t.Errorf("output = %q", out)
	}
}
