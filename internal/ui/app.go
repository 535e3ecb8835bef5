package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/auth"
	"github.com/andrewbrowne3/caltrack/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLogin View = iota
	ViewGoals
	ViewAgenda
	ViewCalendars
)

type bootstrapDoneMsg struct {
	state auth.State
}

type loggedOutMsg struct{}

type App struct {
	ctrl        *auth.Controller
	api         *api.Client
	currentView View
	login       *views.LoginView
	goals       *views.GoalsView
	agenda      *views.AgendaView
	calendars   *views.CalendarsView
	width       int
	height      int
}

// Creates a new application
func NewApp(ctrl *auth.Controller, client *api.Client) *App {
	return &App{
		ctrl:        ctrl,
		api:         client,
		currentView: ViewLogin,
		login:       views.NewLoginView(ctrl),
	}
}

func (a *App) Init() tea.Cmd {
	ctrl := a.ctrl
	return func() tea.Msg {
		return bootstrapDoneMsg{state: ctrl.Bootstrap(context.Background())}
	}
}

func (a *App) openMainViews() tea.Cmd {
	a.currentView = ViewGoals
	a.goals = views.NewGoalsView(a.api)
	a.agenda = views.NewAgendaView(a.api)
	a.calendars = views.NewCalendarsView(a.api)

	return tea.Batch(
		a.goals.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) openLogin() tea.Cmd {
	a.currentView = ViewLogin
	a.login = views.NewLoginView(a.ctrl)
	a.goals = nil
	a.agenda = nil
	a.calendars = nil

	return tea.Batch(
		a.login.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Fan out so hidden views keep the right size
		a.login.Update(msg)
		if a.goals != nil {
			a.goals.Update(msg)
			a.agenda.Update(msg)
			a.calendars.Update(msg)
		}

	case bootstrapDoneMsg:
		if msg.state == auth.StateAuthenticated {
			return a, a.openMainViews()
		}
		return a, a.login.Init()

	case views.LoggedIn:
		return a, a.openMainViews()

	case loggedOutMsg:
		return a, a.openLogin()

	case tea.KeyMsg:
		if a.currentView != ViewLogin {
			switch msg.String() {
			case "ctrl+g":
				a.currentView = ViewGoals
				return a, a.goals.Init()
			case "ctrl+e":
				a.currentView = ViewAgenda
				return a, a.agenda.Init()
			case "ctrl+k":
				a.currentView = ViewCalendars
				return a, a.calendars.Init()
			case "ctrl+l":
				ctrl := a.ctrl
				return a, func() tea.Msg {
					ctrl.Logout(context.Background())
					return loggedOutMsg{}
				}
			}
		}
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewGoals:
		_, cmd = a.goals.Update(msg)
	case ViewAgenda:
		_, cmd = a.agenda.Update(msg)
	case ViewCalendars:
		_, cmd = a.calendars.Update(msg)
	default:
		_, cmd = a.login.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewGoals:
		if a.goals != nil {
			return a.goals.View()
		}
	case ViewAgenda:
		if a.agenda != nil {
			return a.agenda.View()
		}
	case ViewCalendars:
		if a.calendars != nil {
			return a.calendars.View()
		}
	}
	return a.login.View()
}
