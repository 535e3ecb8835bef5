package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/models"
	"github.com/andrewbrowne3/caltrack/internal/optimistic"
	"github.com/andrewbrowne3/caltrack/internal/ui/keys"
	"github.com/andrewbrowne3/caltrack/internal/ui/styles"
)

var calendarVisibility = optimistic.BoolField[models.Calendar]{
	Get: func(c *models.Calendar) bool { return c.Visible },
	Set: func(c *models.Calendar, v bool) { c.SetVisible(v) },
}

type calendarsLoadedMsg struct {
	calendars []models.Calendar
	err       error
}

type calendarToggledMsg struct {
	op  *optimistic.Toggle[models.Calendar]
	cal *models.Calendar
	err error
}

// CalendarsView lists calendars; visibility toggles use the same
// optimistic flow as goal completion.
type CalendarsView struct {
	api       *api.Client
	styles    *styles.Styles
	keys      keys.KeyMap
	calendars []models.Calendar
	cursor    int
	width     int
	height    int
	loaded    bool
	errMsg    string
}

func NewCalendarsView(client *api.Client) *CalendarsView {
	return &CalendarsView{
		api:    client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (v *CalendarsView) Init() tea.Cmd {
	return v.loadCalendars
}

func (v *CalendarsView) loadCalendars() tea.Msg {
	cals, err := v.api.ListCalendars(context.Background())
	return calendarsLoadedMsg{calendars: cals, err: err}
}

func (v *CalendarsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case calendarsLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.errMsg = "load failed: " + msg.err.Error()
			return v, nil
		}
		v.calendars = msg.calendars
		if v.cursor >= len(v.calendars) {
			v.cursor = max(len(v.calendars)-1, 0)
		}
		v.errMsg = ""
		return v, nil

	case calendarToggledMsg:
		if err := msg.op.Resolve(msg.cal, msg.err); err != nil {
			v.errMsg = "update failed: " + err.Error()
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.calendars)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.Toggle):
			if v.cursor < len(v.calendars) {
				return v, v.toggleVisibility(&v.calendars[v.cursor])
			}
		case key.Matches(msg, v.keys.Reload):
			return v, v.loadCalendars
		}
	}
	return v, nil
}

func (v *CalendarsView) toggleVisibility(cal *models.Calendar) tea.Cmd {
	v.errMsg = ""
	op := optimistic.Begin(cal, calendarVisibility)
	id := cal.ID
	visible := op.Applied()
	client := v.api
	return func() tea.Msg {
		updated, err := client.SetCalendarVisibility(context.Background(), id, visible)
		return calendarToggledMsg{op: op, cal: updated, err: err}
	}
}

func (v *CalendarsView) View() string {
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	s := v.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Calendars") + "\n\n")

	if len(v.calendars) == 0 {
		b.WriteString(s.TitleMuted.Render("  No calendars.") + "\n")
	}

	for i, c := range v.calendars {
		mark := "[ ]"
		if c.Visible {
			mark = s.GoalDone.Render("[v]")
		}
		line := fmt.Sprintf("%s %s", mark, c.Name)
		if i == v.cursor {
			b.WriteString(s.ListSelected.Render(line) + "\n")
		} else {
			b.WriteString(s.ListItem.Render(line) + "\n")
		}
	}

	if v.errMsg != "" {
		b.WriteString("\n" + s.StatusError.Render(v.errMsg) + "\n")
	}
	b.WriteString(s.Help.Render(
		fmt.Sprintf("%s show/hide • %s reload • %s quit",
			s.HelpKey.Render("space"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("q"),
		),
	))

	return styles.CenterView(b.String(), v.width, v.height)
}
