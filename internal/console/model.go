package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/rxadmin/inactivity"
	"github.com/jrsteele09/rxadmin/users"
)

// Tab is one of the console's screens.
type Tab int

const (
	TabDashboard Tab = iota
	TabList
)

const maxListRows = 15

type loadedMsg struct {
	snap Snapshot
	err  error
}

type tickMsg time.Time

// LoggedOutMsg ends the console once the monitor has logged the user out.
type LoggedOutMsg struct {
	Reason inactivity.Reason
}

var (
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	activeTab   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("63")).Padding(0, 1)
	inactiveTab = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
)

type Model struct {
	ctx    context.Context
	source Source
	user   *users.User

	spinner spinner.Model
	loading bool
	snap    Snapshot
	err     error

	tab      Tab
	width    int
	height   int
	reason   inactivity.Reason
	quitting bool
}

func NewModel(ctx context.Context, source Source) Model {
	return Model{
		ctx:     ctx,
		source:  source,
		user:    source.User(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
	}
}

// Reason is why the console closed with a logout, or zero when the user just quit.
func (m Model) Reason() inactivity.Reason {
	return m.reason
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load(), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.source.Observe(inactivity.EventKeyPress)
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		if tea.MouseEvent(msg).IsWheel() {
			m.source.Observe(inactivity.EventScroll)
		} else {
			m.source.Observe(inactivity.EventPointerDown)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
		}
		return m, nil

	case LoggedOutMsg:
		m.reason = msg.Reason
		m.quitting = true
		return m, tea.Quit

	case tickMsg:
		return m, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "tab", "right", "left":
		if m.tab == TabDashboard {
			m.tab = TabList
		} else {
			m.tab = TabDashboard
		}
	case "r":
		m.loading = true
		return m, m.load()
	case "L":
		return m, m.logout()
	}
	return m, nil
}

func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.source.Load(m.ctx)
		return loadedMsg{snap: snap, err: err}
	}
}

// logout goes through the monitor, whose listener sends the LoggedOutMsg that quits.
func (m Model) logout() tea.Cmd {
	return func() tea.Msg {
		m.source.Logout(m.ctx)
		return nil
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(bannerStyle.Render(figure.NewFigure("rxadmin", "small", true).String()))
	b.WriteString("\n")
	b.WriteString(m.header())
	b.WriteString("\n\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Loading...")
	case m.err != nil:
		b.WriteString(errorStyle.Render("Failed to load: " + m.err.Error()))
	case m.tab == TabDashboard:
		b.WriteString(m.dashboardView())
	default:
		b.WriteString(m.listView())
	}

	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("tab switch view • r refresh • L log out • q quit"))
	return b.String()
}

func (m Model) header() string {
	if m.user == nil {
		return titleStyle.Render("Not signed in")
	}
	line := titleStyle.Render(m.user.DisplayName()) + mutedStyle.Render(" ("+string(m.user.Role)+")")
	if left := m.source.IdleRemaining(); left > 0 {
		line += mutedStyle.Render(fmt.Sprintf("  idle logout in %s", left.Round(time.Second)))
	}
	return line
}

func (m Model) listTitle() string {
	if m.user.IsSuperAdmin() {
		return "Companies"
	}
	return "Orders"
}

func (m Model) tabs() string {
	names := []string{"Dashboard", m.listTitle()}
	rendered := make([]string, len(names))
	for i, name := range names {
		if Tab(i) == m.tab {
			rendered[i] = activeTab.Render(name)
		} else {
			rendered[i] = inactiveTab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) dashboardView() string {
	stats := m.snap.Stats
	if stats == nil {
		return mutedStyle.Render("No statistics")
	}

	var boxes []string
	if stats.Companies != nil {
		boxes = append(boxes, box("Companies", stats.Companies.Total,
			fmt.Sprintf("%d active, %d suspended", stats.Companies.Active, stats.Companies.Suspended)))
	}
	boxes = append(boxes,
		box("Users", stats.Users.Total, fmt.Sprintf("%d new this month", stats.Users.NewThisMonth)),
		box("Patients", stats.Patients.Total, fmt.Sprintf("%d new this month", stats.Patients.NewThisMonth)),
		box("Orders", stats.Orders.Total, fmt.Sprintf("%d pending, %d processing", stats.Orders.Pending, stats.Orders.Processing)),
		boxStyle.Render(titleStyle.Render("Revenue")+"\n"+money(stats.Revenue.Total)+"\n"+
			mutedStyle.Render(money(stats.Revenue.ThisMonth)+" this month")),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func box(title string, total int, detail string) string {
	return boxStyle.Render(titleStyle.Render(title) + "\n" + strconv.Itoa(total) + "\n" + mutedStyle.Render(detail))
}

func (m Model) listView() string {
	var lines []string
	if m.user.IsSuperAdmin() {
		for _, t := range m.snap.Companies {
			lines = append(lines, fmt.Sprintf("%-28s %-10s %4d patients %4d active orders", t.Name, t.Status, t.PatientsCount, t.ActiveOrders))
		}
	} else {
		for _, o := range m.snap.Orders {
			lines = append(lines, fmt.Sprintf("%-20s %-24s %-11s %10s", o.PatientName, o.MedicationName, o.Status, money(o.Amount)))
		}
	}
	if len(lines) == 0 {
		return mutedStyle.Render("Nothing to show")
	}
	if len(lines) > maxListRows {
		more := len(lines) - maxListRows
		lines = append(lines[:maxListRows], mutedStyle.Render(fmt.Sprintf("... and %d more", more)))
	}
	return strings.Join(lines, "\n")
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}
