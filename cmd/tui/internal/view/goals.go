package view

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/goal"
)

type goalState int

const (
	goalStateBrowse goalState = iota
	goalStateCreate
	goalStateContribute
)

type goalItem struct {
	goal goal.Goal
}

func (i goalItem) FilterValue() string { return i.goal.Name }

type GoalsModel struct {
	CommonModel
	svc *goal.Service

	state   goalState
	list    list.Model
	form    *huh.Form
	status  string
	loading bool
}

func NewGoalsModel(common CommonModel, svc *goal.Service) GoalsModel {
	l := list.New([]list.Item{}, goalDelegate{}, 80, 20)
	l.Title = "Goals"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return GoalsModel{CommonModel: common, svc: svc, list: l, loading: true}
}

func (m GoalsModel) Title() string { return "Goals" }

func (m GoalsModel) ShortHelp() string {
	if m.state != goalStateBrowse {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "Esc: back | n: new goal | c: contribute | r: refresh"
}

func (m GoalsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m GoalsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case goalsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		items := make([]list.Item, len(msg.goals))
		for i, g := range msg.goals {
			items[i] = goalItem{goal: g}
		}

		m.list.SetItems(items)

		return m, nil

	case goalSavedMsg:
		m.state = goalStateBrowse
		m.form = nil

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error saving: %v", msg.err))
			return m, nil
		}

		m.status = msg.message

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil
	}

	if m.state != goalStateBrowse {
		return m.updateForm(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "n":
			return m.startCreate()
		case "c":
			return m.startContribute()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m GoalsModel) startCreate() (tea.Model, tea.Cmd) {
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name cannot be empty")
					}

					return nil
				}),
			huh.NewInput().
				Key("target").
				Title("Target amount").
				Validate(validateAmount),
			huh.NewInput().
				Key("saved").
				Title("Already saved (optional)").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}

					return validateAmount(s)
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = goalStateCreate

	return m, m.form.Init()
}

func (m GoalsModel) startContribute() (tea.Model, tea.Cmd) {
	if _, ok := m.list.SelectedItem().(goalItem); !ok {
		return m, nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Validate(validateAmount),
			huh.NewConfirm().
				Key("withdraw").
				Title("Withdraw instead of deposit?").
				Affirmative("Withdraw").
				Negative("Deposit"),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = goalStateContribute

	return m, m.form.Init()
}

func (m GoalsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = goalStateBrowse
		m.form = nil

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == goalStateCreate {
		return m, m.createCmd()
	}

	return m, m.contributeCmd()
}

func (m GoalsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading goals...")
	}

	content := m.list.View()

	if m.form != nil {
		title := "New Goal"
		if m.state == goalStateContribute {
			title = "Contribute"
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

// Messages

type goalsLoadedMsg struct {
	goals []goal.Goal
	err   error
}

func (m GoalsModel) loadCmd() tea.Cmd {
	user := m.User

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		goals, err := m.svc.List(ctx, user)

		return goalsLoadedMsg{goals: goals, err: err}
	}
}

type goalSavedMsg struct {
	message string
	err     error
}

func (m GoalsModel) createCmd() tea.Cmd {
	user := m.User
	g := &goal.Goal{
		Name:          strings.TrimSpace(m.form.GetString("name")),
		GoalAmount:    parseAmount(m.form.GetString("target")),
		CurrentAmount: decimal.Zero,
	}

	if saved := m.form.GetString("saved"); strings.TrimSpace(saved) != "" {
		g.CurrentAmount = parseAmount(saved)
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return goalSavedMsg{message: "Goal created.", err: m.svc.Create(ctx, user, g)}
	}
}

func (m GoalsModel) contributeCmd() tea.Cmd {
	item, ok := m.list.SelectedItem().(goalItem)
	if !ok {
		return nil
	}

	user := m.User
	amount := parseAmount(m.form.GetString("amount"))

	if m.form.GetBool("withdraw") {
		amount = amount.Neg()
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		g, err := m.svc.Contribute(ctx, user, item.goal.ID, amount)
		if err != nil {
			return goalSavedMsg{err: err}
		}

		msg := fmt.Sprintf("%s now at %s.", g.Name, FormatMoney(g.CurrentAmount))
		if g.Reached() {
			msg += " Goal reached!"
		}

		return goalSavedMsg{message: msg}
	}
}

type goalDelegate struct{}

func (d goalDelegate) Height() int                             { return 2 }
func (d goalDelegate) Spacing() int                            { return 1 }
func (d goalDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d goalDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(goalItem)
	if !ok {
		return
	}

	name := i.goal.Name
	if index == m.Index() {
		name = activeStyle.Bold(true).Render("> " + name)
	} else {
		name = "  " + name
	}

	fmt.Fprintf(w, "%s\n    %s %s / %s (%s)",
		name,
		Bar(i.goal.Progress(), 24),
		FormatMoney(i.goal.CurrentAmount),
		FormatMoney(i.goal.GoalAmount),
		FormatPercent(i.goal.Progress()),
	)
}
