package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrewbrowne3/caltrack/internal/auth"
	"github.com/andrewbrowne3/caltrack/internal/ui/keys"
	"github.com/andrewbrowne3/caltrack/internal/ui/styles"
)

// LoggedIn signals the app that authentication succeeded
type LoggedIn struct{}

type loginResultMsg struct {
	err error
}

type LoginView struct {
	ctrl       *auth.Controller
	styles     *styles.Styles
	keys       keys.KeyMap
	email      textinput.Model
	password   textinput.Model
	focusIdx   int // 0=email, 1=password, 2=button
	submitting bool
	errMsg     string
	width      int
	height     int
}

func NewLoginView(ctrl *auth.Controller) *LoginView {
	s := styles.NewStyles()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 100
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return &LoginView{
		ctrl:     ctrl,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		email:    email,
		password: password,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

func (v *LoginView) submit() tea.Cmd {
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	if email == "" || password == "" {
		v.errMsg = "email and password are required"
		return nil
	}

	v.submitting = true
	v.errMsg = ""
	ctrl := v.ctrl
	return func() tea.Msg {
		return loginResultMsg{err: ctrl.Login(context.Background(), email, password)}
	}
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case loginResultMsg:
		v.submitting = false
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		return v, func() tea.Msg { return LoggedIn{} }

	case tea.KeyMsg:
		if v.submitting {
			return v, nil
		}

		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit

		case msg.String() == "shift+tab":
			v.focusIdx = (v.focusIdx + 2) % 3
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = (v.focusIdx + 1) % 3
			v.updateFocus()
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.focusIdx < 2 {
				v.focusIdx++
				v.updateFocus()
				return v, nil
			}
			return v, v.submit()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.email, cmd = v.email.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) updateFocus() {
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		v.email.Focus()
	case 1:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	emailStyle := s.Input
	passwordStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passwordStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 40)

	status := ""
	if v.submitting {
		status = s.StatusInfo.Render("Signing in...")
	} else if v.errMsg != "" {
		status = s.StatusError.Render(v.errMsg)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("caltrack"),
		s.TitleMuted.Render("Sign in to your account"),
		"",
		"Email:",
		emailStyle.Width(inputWidth).Render(v.email.View()),
		"",
		"Password:",
		passwordStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(" Sign In "),
		"",
		status,
		"",
		s.TitleMuted.Render("Tab: next • Enter: submit • Ctrl+C: quit"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
