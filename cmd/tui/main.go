package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pocket/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pocket/internal/app"
	"github.com/MrJamesThe3rd/pocket/internal/config"
)

type screen int

const (
	screenMenu screen = iota
	screenOverview
	screenTransactions
	screenBudgets
	screenGoals
	screenImport
)

type model struct {
	app    *app.App
	common view.CommonModel

	current screen
	active  view.View
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) open(s screen) (tea.Model, tea.Cmd) {
	switch s {
	case screenOverview:
		m.active = view.NewDashboardModel(m.common, m.app.Overview)
	case screenTransactions:
		m.active = view.NewTransactionsModel(m.common, m.app.Transactions, m.app.Mirror, m.app.Reference)
	case screenBudgets:
		m.active = view.NewBudgetsModel(m.common, m.app.Budgets, m.app.Reference)
	case screenGoals:
		m.active = view.NewGoalsModel(m.common, m.app.Goals)
	case screenImport:
		m.active = view.NewImportModel(m.common, m.app.Importer, m.app.Reference)
	default:
		return m, nil
	}

	m.current = s

	var sizeCmd tea.Cmd
	if m.common.Width > 0 {
		sizeCmd = func() tea.Msg {
			return tea.WindowSizeMsg{Width: m.common.Width, Height: m.common.Height}
		}
	}

	return m, tea.Batch(m.active.Init(), sizeCmd)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.common.Width, m.common.Height = msg.Width, msg.Height
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.current == screenMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(screenOverview)
			case "2":
				return m.open(screenTransactions)
			case "3":
				return m.open(screenBudgets)
			case "4":
				return m.open(screenGoals)
			case "5":
				return m.open(screenImport)
			}

			return m, nil
		}
	case view.BackMsg:
		m.current = screenMenu
		m.active = nil

		return m, nil
	}

	if m.active == nil {
		return m, nil
	}

	next, cmd := m.active.Update(msg)
	if v, ok := next.(view.View); ok {
		m.active = v
	}

	return m, cmd
}

func (m model) View() string {
	if m.current == screenMenu || m.active == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"Pocket\n\n" +
				"1. Overview\n" +
				"2. Transactions\n" +
				"3. Budgets\n" +
				"4. Goals\n" +
				"5. Import Statement\n\n" +
				"q. Quit",
		)
	}

	help := lipgloss.NewStyle().Faint(true).Render(m.active.ShortHelp())

	return m.active.View() + "\n" + help
}

func initialModel() (model, *app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return model{}, nil, fmt.Errorf("loading config: %w", err)
	}

	user, err := uuid.Parse(cfg.Session.UserID)
	if err != nil {
		return model{}, nil, fmt.Errorf("SESSION_USER_ID must be a valid uuid: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return model{}, nil, err
	}

	return model{
		app:     a,
		common:  view.CommonModel{User: user},
		current: screenMenu,
	}, a, nil
}

func main() {
	m, a, err := initialModel()
	if err != nil {
		slog.Error("failed to start TUI", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
