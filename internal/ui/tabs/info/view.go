package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/accidents-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/accidents-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderSourcesCard(),
		m.renderQualityCard(),
		m.renderHistoryCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Data sources, data quality and load history")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 100)
}

// renderSourcesCard shows the loaded snapshot and its input files.
func (m *Model) renderSourcesCard() string {
	rows := []string{styles.CardTitleStyle.Render("Data sources")}

	ds := m.state.GetDataset()
	if ds == nil {
		msg := "No dataset loaded"
		if err := m.state.GetLoadError(); err != nil {
			msg = err.Error()
		}
		rows = append(rows, styles.ErrorTextStyle.Render(msg))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	for _, s := range ds.Sources {
		rows = append(rows,
			m.renderConfigRow(s.Kind, s.Path),
			m.renderConfigRow("", sourceLine(s)),
		)
	}

	r := ds.Report
	rows = append(rows, "",
		m.renderConfigRow("Snapshot", ds.ID),
		m.renderConfigRow("Loaded", fmt.Sprintf("%s (took %s)", humanize.Time(ds.LoadedAt), r.Duration.Round(time.Millisecond))),
		m.renderConfigRow("Accidents", humanize.Comma(int64(r.AccidentRows))),
		m.renderConfigRow("Municipalities", humanize.Comma(int64(r.MunicipalityRows))),
		m.renderConfigRow("No coordinates", humanize.Comma(int64(r.NullCoordinates))),
		m.renderConfigRow("No city code", humanize.Comma(int64(r.MissingMunicipalityCode))),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderQualityCard lists the rows the current report excluded.
func (m *Model) renderQualityCard() string {
	rows := []string{styles.CardTitleStyle.Render("Data quality · " + m.state.GetFilter().String())}

	rep, _ := m.state.GetReport()
	if rep == nil {
		rows = append(rows, styles.HelpStyle.Render("No report yet"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	q := rep.Quality
	tally := func(label string, n int) string {
		v := humanize.Comma(int64(n))
		if n > 0 {
			v = styles.WarningTextStyle.Render(v)
		}
		return m.renderConfigRow(label, v)
	}
	rows = append(rows,
		tally("Unmatched codes", q.UnmatchedCodes),
		tally("  their accidents", q.UnmatchedAccidents),
		tally("Duplicate cities", q.DuplicateMunicipalities),
		tally("No population", q.PopulationSkipped),
		tally("No fleet", q.FleetSkipped),
		tally("Bad dates", q.PeriodDropped),
		tally("Bad times", q.HourDropped),
		tally("No coordinates", q.NullCoordinates),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderHistoryCard shows the most recent load attempts.
func (m *Model) renderHistoryCard() string {
	body := styles.HelpStyle.Render("No loads recorded")
	if len(m.history.Rows()) > 0 {
		m.history.SetHeight(len(m.history.Rows()) + 1)
		body = m.history.View()
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Load history"),
		body,
	))
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration")}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	c := m.config
	boundaries := c.BoundariesPath
	if boundaries == "" {
		boundaries = "not configured"
	}
	cache := c.CachePath
	if !c.CacheEnabled() {
		cache = "disabled"
	}
	delimiter := string(c.CSVDelimiter)
	if c.CSVDelimiter == '\t' {
		delimiter = "tab"
	}

	rows = append(rows,
		m.renderConfigRow("Boundaries", boundaries),
		m.renderConfigRow("CSV", fmt.Sprintf("delimiter %q · %s", delimiter, c.CSVEncoding)),
		m.renderConfigRow("Cache", cache),
		m.renderConfigRow("Top N", fmt.Sprintf("%d", c.TopN)),
		m.renderConfigRow("Watch files", fmt.Sprintf("%t (debounce %s)", c.WatchData, c.ReloadDebounce)),
		m.renderConfigRow("Log", fmt.Sprintf("%s (%s)", c.LogPath, c.LogLevel)),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderConfigRow renders a key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	if label != "" {
		label += ":"
	}
	return labelStyle.Render(label) + " " + valueStyle.Render(value)
}

// renderAboutCard renders the version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About"),
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
