package views

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/andrewbrowne3/caltrack/internal/api"
	"github.com/andrewbrowne3/caltrack/internal/models"
	"github.com/andrewbrowne3/caltrack/internal/optimistic"
	"github.com/andrewbrowne3/caltrack/internal/ui/keys"
	"github.com/andrewbrowne3/caltrack/internal/ui/styles"
)

var goalCompletion = optimistic.BoolField[models.Goal]{
	Get: func(g *models.Goal) bool { return g.IsCompleted },
	Set: func(g *models.Goal, v bool) { g.SetCompleted(v) },
}

type goalItem struct {
	goal *models.Goal
}

func (i goalItem) Title() string       { return i.goal.Title }
func (i goalItem) Description() string { return i.goal.Status }
func (i goalItem) FilterValue() string { return i.goal.Title }

type goalDelegate struct {
	styles *styles.Styles
	width  int
}

func (d goalDelegate) Height() int                               { return 2 }
func (d goalDelegate) Spacing() int                              { return 1 }
func (d goalDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d goalDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(goalItem)
	if !ok {
		return
	}
	g := it.goal

	selected := index == m.Index()
	width := max(d.width-4, 20)

	check := "[ ]"
	if g.IsCompleted {
		check = d.styles.GoalDone.Render("[x]")
	}

	detail := g.Status
	if g.TargetValue > 0 {
		detail = fmt.Sprintf("%s • %s", g.Status,
			d.styles.GoalProgress.Render(fmt.Sprintf("%.0f%% (%.0f/%.0f)", g.ProgressPercentage, g.CurrentValue, g.TargetValue)))
	}

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s",
		titleStyle.Render(check+" "+g.Title),
		descStyle.Render(detail),
	)
}

type goalsLoadedMsg struct {
	goals []models.Goal
	err   error
}

type goalToggledMsg struct {
	op   *optimistic.Toggle[models.Goal]
	goal *models.Goal
	err  error
}

type goalCreatedMsg struct {
	goal *models.Goal
	err  error
}

type goalDeletedMsg struct {
	err error
}

type GoalsView struct {
	api      *api.Client
	list     list.Model
	delegate *goalDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	goals    []models.Goal
	width    int
	height   int
	loaded   bool
	errMsg   string

	creating  bool
	newTitle  textinput.Model
	newTarget textinput.Model
	focusIdx  int // 0=title, 1=target, 2=confirm

	confirmingDelete bool
	deleteTargetID   int64
}

func NewGoalsView(client *api.Client) *GoalsView {
	s := styles.NewStyles()

	newTitle := textinput.New()
	newTitle.Placeholder = "Goal title"
	newTitle.CharLimit = 100

	newTarget := textinput.New()
	newTarget.Placeholder = "Target value (optional)"
	newTarget.CharLimit = 10

	delegate := &goalDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Goals"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &GoalsView{
		api:       client,
		list:      l,
		delegate:  delegate,
		styles:    s,
		keys:      keys.DefaultKeyMap(),
		newTitle:  newTitle,
		newTarget: newTarget,
	}
}

func (v *GoalsView) Init() tea.Cmd {
	return v.loadGoals
}

func (v *GoalsView) loadGoals() tea.Msg {
	goals, err := v.api.ListGoals(context.Background(), api.GoalFilter{})
	return goalsLoadedMsg{goals: goals, err: err}
}

func (v *GoalsView) setItems() {
	items := make([]list.Item, len(v.goals))
	for i := range v.goals {
		items[i] = goalItem{goal: &v.goals[i]}
	}
	v.list.SetItems(items)
}

func (v *GoalsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case goalsLoadedMsg:
		v.loaded = true
		if msg.err != nil {
			v.errMsg = "load failed: " + msg.err.Error()
			return v, nil
		}
		v.goals = msg.goals
		v.setItems()
		v.errMsg = ""
		return v, nil

	case goalToggledMsg:
		// Server confirmed or rejected the optimistic flip. The resolve
		// is a no-op if a newer toggle took over in the meantime.
		if err := msg.op.Resolve(msg.goal, msg.err); err != nil {
			v.errMsg = "update failed: " + err.Error()
		}
		return v, nil

	case goalCreatedMsg:
		if msg.err != nil {
			v.errMsg = "create failed: " + msg.err.Error()
			return v, nil
		}
		return v, v.loadGoals

	case goalDeletedMsg:
		if msg.err != nil {
			v.errMsg = "delete failed: " + msg.err.Error()
			return v, nil
		}
		return v, v.loadGoals

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

		case key.Matches(msg, v.keys.Toggle):
			if item, ok := v.list.SelectedItem().(goalItem); ok {
				return v, v.toggleGoal(item.goal)
			}

		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.focusIdx = 0
			v.newTitle.Reset()
			v.newTarget.Reset()
			v.newTitle.Focus()
			v.newTarget.Blur()
			return v, textinput.Blink

		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(goalItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.goal.ID
				return v, nil
			}

		case key.Matches(msg, v.keys.Reload):
			return v, v.loadGoals
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// toggleGoal flips the completion flag locally right away, then confirms
// with the server in the background.
func (v *GoalsView) toggleGoal(g *models.Goal) tea.Cmd {
	v.errMsg = ""
	op := optimistic.Begin(g, goalCompletion)
	id := g.ID
	done := op.Applied()
	client := v.api
	return func() tea.Msg {
		updated, err := client.SetGoalCompletion(context.Background(), id, done)
		return goalToggledMsg{op: op, goal: updated, err: err}
	}
}

func (v *GoalsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := v.deleteTargetID
		client := v.api
		v.confirmingDelete = false
		return v, func() tea.Msg {
			return goalDeletedMsg{err: client.DeleteGoal(context.Background(), id)}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *GoalsView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
		title := strings.TrimSpace(v.newTitle.Value())
		if title == "" {
			return v, nil
		}
		target, _ := strconv.ParseFloat(strings.TrimSpace(v.newTarget.Value()), 64)
		client := v.api
		v.creating = false
		return v, func() tea.Msg {
			g, err := client.CreateGoal(context.Background(), api.GoalInput{Title: title, TargetValue: target})
			return goalCreatedMsg{goal: g, err: err}
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newTarget, cmd = v.newTarget.Update(msg)
	}
	return v, cmd
}

func (v *GoalsView) updateFocus() {
	v.newTitle.Blur()
	v.newTarget.Blur()
	switch v.focusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newTarget.Focus()
	}
}

func (v *GoalsView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.creating {
		return v.renderCreateForm()
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}
	if len(v.list.Items()) == 0 {
		return v.renderEmpty()
	}

	content := v.list.View() + "\n" + v.renderStatus() + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *GoalsView) renderStatus() string {
	if v.errMsg == "" {
		return ""
	}
	return v.styles.StatusError.Render("  "+v.errMsg) + "\n"
}

func (v *GoalsView) renderEmpty() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Goals"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first goal"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *GoalsView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle := s.Input
	targetStyle := s.Input
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		targetStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Goal"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		"",
		"Target:",
		targetStyle.Width(inputWidth).Render(v.newTarget.View()),
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

func (v *GoalsView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Goal?"),
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

func (v *GoalsView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s toggle • %s new • %s del • %s reload • %s quit",
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("q"),
		),
	)
}
