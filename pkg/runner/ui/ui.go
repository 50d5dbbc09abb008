// Package ui hosts the interactive worklist: a Bubble Tea model fed by the
// live store subscription, with the session controller deciding the
// visible bucket.
package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/agenda/pkg/alert"
	"tableflip.dev/agenda/pkg/categorize"
	"tableflip.dev/agenda/pkg/dispatch"
	"tableflip.dev/agenda/pkg/feed"
	"tableflip.dev/agenda/pkg/gcal"
	"tableflip.dev/agenda/pkg/session"
	"tableflip.dev/agenda/pkg/store"
	"tableflip.dev/agenda/pkg/timeutil"
)

// UI runs the live worklist until the user quits.
type UI struct {
	Persistence store.Persistence
}

func (u *UI) Do(ctx context.Context) error {
	if u.Persistence == nil {
		return errors.New("can not start ui, no persistence")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	agg := feed.New()
	updates := make(chan resultMsg, 8)
	agg.Notify(func(r categorize.Result) {
		// The calendar integration counts as active when the user holds a
		// stored grant, even before the mirror has any events in it.
		active := gcal.HasStoredToken() || agg.HasCalendarItems()
		select {
		case updates <- resultMsg{result: r, calendarActive: active}:
		default:
			// The next update supersedes a missed one.
		}
	})

	unsubscribe, err := feed.Subscribe(ctx, u.Persistence, agg.Update)
	if err != nil {
		return err
	}
	defer unsubscribe()

	m := model{
		ctrl:       session.NewController(),
		dispatcher: dispatch.Dispatcher{Writer: u.Persistence},
		updates:    updates,
		result:     agg.Recompute(),
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

type resultMsg struct {
	result         categorize.Result
	calendarActive bool
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle       = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	focusStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	overdueStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	cursorStyle    = lipgloss.NewStyle().Bold(true)
	faintStyle     = lipgloss.NewStyle().Faint(true)
)

type model struct {
	ctrl       *session.Controller
	dispatcher dispatch.Dispatcher
	updates    <-chan resultMsg

	result categorize.Result
	cursor int
	status string
}

func (m model) Init() tea.Cmd {
	return m.waitForUpdate()
}

func (m model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg:
		m.result = msg.result
		m.ctrl.Observe(msg.result, msg.calendarActive)
		m.clampCursor()
		return m, m.waitForUpdate()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.selectBucket(1)
		case "shift+tab":
			m.selectBucket(-1)
		case "1", "2", "3", "4", "5":
			idx := int(msg.String()[0] - '1')
			m.ctrl.Select(categorize.AllBuckets()[idx])
			m.clampCursor()
		case "j", "down":
			m.cursor++
			m.clampCursor()
		case "k", "up":
			m.cursor--
			m.clampCursor()
		case "x":
			m.act(func(item alert.Item) string {
				if err := m.dispatcher.Complete(context.Background(), item); err != nil {
					return err.Error()
				}
				return fmt.Sprintf("completed %s", item.Title)
			})
		case "s":
			m.act(func(item alert.Item) string {
				newDate, err := m.dispatcher.Snooze(context.Background(), item)
				if err != nil {
					return err.Error()
				}
				return fmt.Sprintf("snoozed %s until %s", item.Title, newDate.Local().Format("Jan 2"))
			})
		case "o", "enter":
			m.act(func(item alert.Item) string {
				link, err := dispatch.NavigationTarget(item)
				if err != nil {
					return err.Error()
				}
				return link.String()
			})
		}
	}
	return m, nil
}

func (m *model) act(fn func(alert.Item) string) {
	items := m.visibleItems()
	if len(items) == 0 {
		return
	}
	m.status = fn(items[m.cursor])
}

func (m *model) selectBucket(delta int) {
	buckets := categorize.AllBuckets()
	current := 0
	for i, b := range buckets {
		if b == m.ctrl.Visible() {
			current = i
			break
		}
	}
	m.ctrl.Select(buckets[(current+delta+len(buckets))%len(buckets)])
	m.clampCursor()
}

func (m *model) clampCursor() {
	items := m.visibleItems()
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) visibleItems() []alert.Item {
	return m.result.Buckets[m.ctrl.Visible()]
}

func (m model) View() string {
	var tabs string
	for _, b := range categorize.AllBuckets() {
		label := fmt.Sprintf("%s %d", b.Title(), m.result.Counts[b])
		if b == m.ctrl.Visible() {
			tabs += activeTabStyle.Render(label)
		} else {
			tabs += tabStyle.Render(label)
		}
	}

	out := titleStyle.Render("agenda") + "  " + tabs + "\n\n"

	if m.result.Focus != nil {
		out += focusStyle.Render(fmt.Sprintf("▶ %s (%s)", m.result.Focus.Title, m.result.Focus.Source)) + "\n\n"
	}

	items := m.visibleItems()
	if len(items) == 0 {
		out += faintStyle.Render("  nothing here") + "\n"
	}
	now := time.Now()
	for i, item := range items {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		line := fmt.Sprintf("[%s] %s  %s %s", item.Source, item.Date.Local().Format("Jan 2 15:04"), item.Title,
			faintStyle.Render("("+timeutil.Until(now, item.Date)+")"))
		if item.Overdue(now) {
			line = overdueStyle.Render("! ") + line
		} else {
			line = "  " + line
		}
		out += cursor + line + "\n"
	}

	out += "\n"
	if m.status != "" {
		out += m.status + "\n"
	}
	out += faintStyle.Render("tab/1-5 bucket · j/k move · x complete · s snooze · o open · q quit") + "\n"
	return out
}
