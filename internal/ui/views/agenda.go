package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/models"
	"github.com/andrewbrowne3/caltrack/internal/ui/keys"
	"github.com/andrewbrowne3/caltrack/internal/ui/styles"
)

// agendaDays is how far ahead the agenda looks
const agendaDays = 7

type eventsLoadedMsg struct {
	events []models.Event
	err    error
}

type eventCreatedMsg struct {
	err error
}

type eventDeletedMsg struct {
	err error
}

type defaultCalendarMsg struct {
	id int64
}

type AgendaView struct {
	api    *api.Client
	styles *styles.Styles
	keys   keys.KeyMap
	events []models.Event
	cursor int
	width  int
	height int
	loaded bool
	errMsg string

	creating   bool
	calendarID int64
	newTitle   textinput.Model
	newStart   textinput.Model
	focusIdx   int // 0=title, 1=start, 2=confirm

	confirmingDelete bool
	deleteTargetID   int64
}

func NewAgendaView(client *api.Client) *AgendaView {
	newTitle := textinput.New()
	newTitle.Placeholder = "Event title"
	newTitle.CharLimit = 100

	newStart := textinput.New()
	newStart.Placeholder = "2025-03-14 09:00"
	newStart.CharLimit = 16

	return &AgendaView{
		api:      client,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		newTitle: newTitle,
		newStart: newStart,
	}
}

func (v *AgendaView) Init() tea.Cmd {
	return tea.Batch(v.loadEvents, v.loadDefaultCalendar)
}

// loadDefaultCalendar picks the calendar new events land on
func (v *AgendaView) loadDefaultCalendar() tea.Msg {
	cals, err := v.api.ListCalendars(context.Background())
	if err != nil || len(cals) == 0 {
		return defaultCalendarMsg{}
	}
	for _, c := range cals {
		if c.Active {
			return defaultCalendarMsg{id: c.ID}
		}
	}
	return defaultCalendarMsg{id: cals[0].ID}
}

func (v *AgendaView) loadEvents() tea.Msg {
	now := time.Now()
	events, err := v.api.ListEvents(context.Background(), api.EventFilter{
		Start: now,
		End:   now.AddDate(0, 0, agendaDays),
	})
	return eventsLoadedMsg{events: events, err: err}
}

func (v *AgendaView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case defaultCalendarMsg:
		v.calendarID = msg.id
		return v, nil

	case eventsLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.errMsg = "load failed: " + msg.err.Error()
			return v, nil
		}
		v.events = msg.events
		if v.cursor >= len(v.events) {
			v.cursor = max(len(v.events)-1, 0)
		}
		v.errMsg = ""
		return v, nil

	case eventCreatedMsg:
		if msg.err != nil {
			v.errMsg = "create failed: " + msg.err.Error()
			return v, nil
		}
		return v, v.loadEvents

	case eventDeletedMsg:
		if msg.err != nil {
			v.errMsg = "delete failed: " + msg.err.Error()
			return v, nil
		}
		return v, v.loadEvents

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.events)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newTitle.Reset()
			v.newStart.Reset()
			v.newTitle.Focus()
			v.newStart.Blur()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Delete):
			if v.cursor < len(v.events) {
				v.confirmingDelete = true
				v.deleteTargetID = v.events[v.cursor].ID
			}
		case key.Matches(msg, v.keys.Reload):
			return v, v.loadEvents
		}
	}
	return v, nil
}

func (v *AgendaView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteTargetID
		client := v.api
		v.confirmingDelete = false
		return v, func() tea.Msg {
			return eventDeletedMsg{err: client.DeleteEvent(context.Background(), id)}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *AgendaView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 2) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 3
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter), msg.String() == "ctrl+s":
		if msg.String() != "ctrl+s" && v.focusIdx < 2 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.submitCreate()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newStart, cmd = v.newStart.Update(msg)
	}
	return v, cmd
}

func (v *AgendaView) submitCreate() tea.Cmd {
	title := strings.TrimSpace(v.newTitle.Value())
	if title == "" {
		return nil
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(v.newStart.Value()), time.Local)
	if err != nil {
		v.errMsg = "start must look like 2025-03-14 09:00"
		return nil
	}
	if v.calendarID == 0 {
		v.errMsg = "no calendar available yet"
		return nil
	}

	client := v.api
	in := api.EventInput{
		CalendarID: v.calendarID,
		Title:      title,
		Start:      start,
		End:        start.Add(time.Hour),
		Status:     models.EventStatusConfirmed,
	}
	v.creating = false
	v.errMsg = ""
	return func() tea.Msg {
		_, err := client.CreateEvent(context.Background(), in)
		return eventCreatedMsg{err: err}
	}
}

func (v *AgendaView) updateFocus() {
	v.newTitle.Blur()
	v.newStart.Blur()
	switch v.focusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newStart.Focus()
	}
}

func (v *AgendaView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	s := v.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Agenda") + "\n\n")

	if len(v.events) == 0 {
		b.WriteString(s.TitleMuted.Render("  Nothing scheduled. Press 'n' to add an event.") + "\n")
	}

	lastDay := ""
	for i, e := range v.events {
		day := e.Start.Format("Mon Jan 2")
		if day != lastDay {
			b.WriteString(s.TitleMuted.Render(day) + "\n")
			lastDay = day
		}

		when := s.EventTime.Render(e.Start.Format("15:04"))
		if e.AllDay {
			when = s.EventAllDay.Render("all-day")
		}

		line := fmt.Sprintf("%s  %s", when, e.Title)
		if i == v.cursor {
			b.WriteString(s.ListSelected.Render(line) + "\n")
		} else {
			b.WriteString(s.ListItem.Render(line) + "\n")
		}
	}

	if v.errMsg != "" {
		b.WriteString("\n" + s.StatusError.Render(v.errMsg) + "\n")
	}
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *AgendaView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle := s.Input
	startStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		startStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Event"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		"",
		"Start:",
		startStyle.Width(inputWidth).Render(v.newStart.View()),
		"",
		btnStyle.Render(" Create "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *AgendaView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Event?"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *AgendaView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s new • %s del • %s reload • %s quit",
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
