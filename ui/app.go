package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/model"
	"github.com/ftahirops/celltop/report"
)

// Page identifies the current screen.
type Page int

const (
	PageOverview Page = iota
	PageAnalytics
	PageTable
	PageProcesses
	pageCount
)

var pageNames = []string{"Overview", "Analytics", "Table", "Processes"}

// tickMsg fires when the auto-refresh interval elapses. gen ties it to the
// timer that scheduled it so that a restarted interval drops stale ticks.
type tickMsg struct {
	gen int
	at  time.Time
}

type refreshMsg struct {
	view engine.View
}

// saveConfirmMsg is sent after a save completes.
type saveConfirmMsg struct {
	what string
	path string
	err  error
}

// Options configures the TUI.
type Options struct {
	Session    *engine.Session
	ConfigPath string // empty means the default config location
	ReportDir  string
	Log        logrus.FieldLogger
}

// Model is the bubbletea model.
type Model struct {
	session    *engine.Session
	configPath string
	reportDir  string
	log        logrus.FieldLogger
	width      int
	height     int

	// Data
	view    engine.View
	hasView bool

	// Navigation
	page     Page
	showHelp bool
	scroll   int // vertical scroll offset

	// Auto-refresh timer generation
	tickGen int

	// Save / status feedback
	saveMsg     string
	saveMsgTime time.Time
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return Model{
		session:    opts.Session,
		configPath: opts.ConfigPath,
		reportDir:  opts.ReportDir,
		log:        log,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{refresh(m.session)}
	if m.session.AutoRefresh() {
		cmds = append(cmds, tick(m.session.Interval(), m.tickGen))
	}
	return tea.Batch(cmds...)
}

func tick(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg{gen: gen, at: t} })
}

func refresh(s *engine.Session) tea.Cmd {
	return func() tea.Msg {
		return refreshMsg{view: s.Refresh()}
	}
}

// restartTimer invalidates any pending tick and schedules a new one if
// auto-refresh is on.
func (m *Model) restartTimer() tea.Cmd {
	m.tickGen++
	if !m.session.AutoRefresh() {
		return nil
	}
	return tick(m.session.Interval(), m.tickGen)
}

// saveSnapshot writes the current view to a JSON file.
func saveSnapshot(dir string, v engine.View) tea.Cmd {
	return func() tea.Msg {
		path, err := report.SaveJSON(dir, v, time.Now())
		return saveConfirmMsg{what: "Saved", path: path, err: err}
	}
}

// exportMarkdown writes the current view as a markdown report.
func exportMarkdown(dir string, v engine.View) tea.Cmd {
	return func() tea.Msg {
		path, err := report.SaveMarkdown(dir, v, time.Now())
		return saveConfirmMsg{what: "Exported", path: path, err: err}
	}
}

// filterChanged re-derives the view after a filter edit.
func (m *Model) filterChanged() {
	m.view = m.session.View()
	m.scroll = 0
	m.log.WithField("processes", m.session.Filter().String()).Debug("filter changed")
}

func (m *Model) setPage(p Page) {
	m.page = p
	m.scroll = 0
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "?":
			m.showHelp = true
		case "r":
			timer := m.restartTimer()
			return m, tea.Batch(refresh(m.session), timer)
		case "a":
			m.session.SetAutoRefresh(!m.session.AutoRefresh())
			m.view = m.session.View()
			m.log.WithField("auto", m.session.AutoRefresh()).Debug("auto-refresh toggled")
			timer := m.restartTimer()
			return m, timer
		case "1", "2", "3", "4", "5":
			idx := int(key[0] - '1')
			m.session.ToggleProcess(model.AllProcesses[idx])
			m.filterChanged()
		case "0":
			m.session.SetFilter(engine.AllProcessesFilter())
			m.filterChanged()
		case "x":
			m.session.SetFilter(engine.NewProcessFilter())
			m.filterChanged()
		case "tab":
			m.setPage((m.page + 1) % pageCount)
		case "shift+tab":
			m.setPage((m.page - 1 + pageCount) % pageCount)
		case "f1":
			m.setPage(PageOverview)
		case "f2":
			m.setPage(PageAnalytics)
		case "f3":
			m.setPage(PageTable)
		case "f4":
			m.setPage(PageProcesses)
		case "b", "esc":
			m.setPage(PageOverview)
		case "j", "down":
			m.scroll++
		case "k", "up":
			if m.scroll > 0 {
				m.scroll--
			}
		case "G":
			m.scroll += 20
		case "g":
			m.scroll = 0
		case "S":
			if m.hasView {
				return m, saveSnapshot(m.reportDir, m.view)
			}
		case "P":
			if m.hasView {
				return m, exportMarkdown(m.reportDir, m.view)
			}
		case "ctrl+d":
			f := m.session.Filter()
			if err := saveDefaultFilter(m.configPath, f); err != nil {
				m.saveMsg = fmt.Sprintf("Error: %v", err)
				m.log.WithError(err).Warn("save default filter")
			} else {
				m.saveMsg = fmt.Sprintf("Default filter: %s", f)
			}
			m.saveMsgTime = time.Now()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		if msg.gen != m.tickGen || !m.session.AutoRefresh() {
			return m, nil
		}
		return m, tea.Batch(tick(m.session.Interval(), m.tickGen), refresh(m.session))
	case refreshMsg:
		m.view = msg.view
		m.hasView = true
		m.log.WithFields(logrus.Fields{
			"cells":  len(msg.view.Readings),
			"alerts": msg.view.Alerts.Count(),
		}).Debug("refreshed")
	case saveConfirmMsg:
		if msg.err != nil {
			m.saveMsg = fmt.Sprintf("Save failed: %v", msg.err)
			m.log.WithError(msg.err).Warn("save report")
		} else {
			m.saveMsg = fmt.Sprintf("%s: %s", msg.what, msg.path)
		}
		m.saveMsgTime = time.Now()
	}
	return m, nil
}

func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}
	if m.width == 0 {
		return "Loading..."
	}
	if !m.hasView {
		return "Generating first snapshot..."
	}

	var content string
	switch m.page {
	case PageOverview:
		content = renderOverview(m.view, m.width)
	case PageAnalytics:
		content = renderAnalyticsPage(m.view, m.width)
	case PageTable:
		content = renderTablePage(m.view, m.width)
	case PageProcesses:
		content = renderProcessesPage(m.view, m.session.Filter(), m.width)
	}

	// Inject clock + interval into the first line (top-right)
	content = m.injectClock(content)

	// Apply scroll, clamped to the content
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	scroll := m.scroll
	if scroll >= len(lines) {
		scroll = len(lines) - 1
	}
	if scroll > 0 {
		lines = lines[scroll:]
	}
	// Trim to viewport height (leave room for footer and status bar)
	maxLines := m.height - 3
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	content = strings.Join(lines, "\n")

	return content + "\n" + m.renderFooter() + "\n" + m.renderStatusBar()
}

// renderFooter shows when the displayed snapshot was taken.
func (m Model) renderFooter() string {
	if m.view.LastUpdate.IsZero() {
		return dimStyle.Render(" Last Updated: never")
	}
	return dimStyle.Render(" Last Updated: " + m.view.LastUpdate.Format(report.TimeLayout))
}

func (m Model) renderStatusBar() string {
	buildTabs := func(full bool) string {
		var tabs []string
		for i, name := range pageNames {
			label := fmt.Sprintf("F%d", i+1)
			if full {
				label += ":" + name
			}
			if Page(i) == m.page {
				tabs = append(tabs, headerStyle.Render("["+label+"]"))
			} else {
				tabs = append(tabs, dimStyle.Render(" "+label+" "))
			}
		}
		return strings.Join(tabs, "")
	}

	// Indicators (refresh mode, filter, save msg)
	var indicators string
	if m.view.Auto {
		indicators += "  " + okStyle.Render(fmt.Sprintf("[AUTO %s]", m.view.Interval))
	} else {
		indicators += "  " + critStyle.Render("[PAUSED]")
	}
	indicators += "  " + dimStyle.Render("[filter: "+engine.NewProcessFilter(m.view.Processes...).String()+"]")
	if m.saveMsg != "" && time.Since(m.saveMsgTime) < 5*time.Second {
		indicators += "  " + okStyle.Render(m.saveMsg)
	}

	help := helpStyle.Render("r:refresh  a:auto  1-5:filter  S:save  P:report  ?:help  q:quit")

	for _, full := range []bool{true, false} {
		left := buildTabs(full) + indicators
		leftW := lipgloss.Width(left)
		helpW := lipgloss.Width(help)
		if leftW+helpW+1 <= m.width {
			return left + strings.Repeat(" ", m.width-leftW-helpW) + help
		}
		if leftW <= m.width {
			return left
		}
	}
	return buildTabs(false)
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("celltop: Battery Cell Charging Monitor"))
	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("Navigation"))
	sb.WriteString("\n")
	sb.WriteString("  F1        Overview (tiles, alerts, cell cards)\n")
	sb.WriteString("  F2        Analytics (scatter, histogram, capacity, power)\n")
	sb.WriteString("  F3        Detailed cell table\n")
	sb.WriteString("  F4        Charging process types and filter\n")
	sb.WriteString("  Tab       Next page (Shift+Tab previous)\n")
	sb.WriteString("  b / Esc   Back to overview\n")
	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render("Controls"))
	sb.WriteString("\n")
	sb.WriteString("  r         Refresh now (restarts the interval)\n")
	sb.WriteString("  a         Toggle auto-refresh\n")
	for i, p := range model.AllProcesses {
		sb.WriteString(fmt.Sprintf("  %d         Toggle %s in the process filter\n", i+1, p))
	}
	sb.WriteString("  0         Select all processes\n")
	sb.WriteString("  x         Clear the process filter\n")
	sb.WriteString("  Ctrl+D    Save current filter as default\n")
	sb.WriteString("  S         Save snapshot to JSON file\n")
	sb.WriteString("  P         Export report as markdown\n")
	sb.WriteString("  j/k       Scroll down/up\n")
	sb.WriteString("  g/G       Top / jump down\n")
	sb.WriteString("  ?         Toggle this help\n")
	sb.WriteString("  q/Ctrl+C  Quit\n")
	sb.WriteString("\n")
	sb.WriteString(headerStyle.Render("Alerts"))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  High Temperature   any shown cell above %d°C\n", overTemperatureC))
	sb.WriteString(fmt.Sprintf("  Low Capacity       any shown cell below %d%%\n", lowCapacityPct))
	sb.WriteString("  Error              any shown cell in Error status\n")
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Press any key to close"))
	return sb.String()
}

// injectClock overlays "HH:MM:SS  every Ns" on the top-right of the first content line.
func (m Model) injectClock(content string) string {
	if m.width < 40 {
		return content
	}

	now := time.Now().Format("15:04:05")
	intervalStr := fmt.Sprintf("%.0fs", m.session.Interval().Seconds())
	clock := dimStyle.Render(now + "  every " + intervalStr)
	clockW := lipgloss.Width(clock)

	lines := strings.Split(content, "\n")
	firstLine := lines[0]
	lineW := lipgloss.Width(firstLine)
	gap := m.width - lineW - clockW
	if gap < 2 {
		// Not enough room, so the clock gets its own line
		return strings.Repeat(" ", m.width-clockW) + clock + "\n" + content
	}
	lines[0] = firstLine + strings.Repeat(" ", gap) + clock
	return strings.Join(lines, "\n")
}
