package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocket/internal/budget"
	"github.com/MrJamesThe3rd/pocket/internal/reference"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

type budgetState int

const (
	budgetStateBrowse budgetState = iota
	budgetStateCreate
)

type BudgetsModel struct {
	CommonModel
	svc        *budget.Service
	references *reference.Service

	state      budgetState
	month      time.Time
	table      table.Model
	statuses   []budget.Status
	history    []budget.Status
	categories []reference.Category
	form       *huh.Form
	status     string
	loading    bool
}

func NewBudgetsModel(common CommonModel, svc *budget.Service, refs *reference.Service) BudgetsModel {
	columns := []table.Column{
		{Title: "Budget", Width: 20},
		{Title: "Target", Width: 12},
		{Title: "Spent", Width: 12},
		{Title: "Left", Width: 12},
		{Title: "Used", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	now := time.Now()

	return BudgetsModel{
		CommonModel: common,
		svc:         svc,
		references:  refs,
		month:       time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		table:       t,
		loading:     true,
	}
}

func (m BudgetsModel) Title() string { return "Budgets" }

func (m BudgetsModel) ShortHelp() string {
	if m.state == budgetStateCreate {
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return "Esc: back | n: new | h: history | [/]: month | r: refresh"
}

func (m BudgetsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BudgetsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case budgetsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.statuses = msg.statuses
		m.categories = msg.categories
		m.history = nil
		m.refreshTable()

		return m, nil

	case budgetHistoryMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.history = msg.history

		return m, nil

	case budgetSavedMsg:
		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error saving: %v", msg.err))
			return m, nil
		}

		m.status = "Budget created."

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(5, msg.Height-14))
		return m, nil
	}

	if m.state == budgetStateCreate {
		return m.updateCreate(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "[":
			m.month = m.month.AddDate(0, -1, 0)
			return m, m.loadCmd()
		case "]":
			m.month = m.month.AddDate(0, 1, 0)
			return m, m.loadCmd()
		case "h":
			return m, m.historyCmd()
		case "n":
			return m.startCreate()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BudgetsModel) startCreate() (tea.Model, tea.Cmd) {
	options := make([]huh.Option[uuid.UUID], 0, len(m.categories))

	for _, c := range m.categories {
		if c.Type == transaction.TypeExpense {
			options = append(options, huh.NewOption(strings.TrimSpace(c.Icon+" "+c.Name), c.ID))
		}
	}

	if len(options) == 0 {
		m.status = errorStyle.Render("No expense categories available.")
		return m, nil
	}

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
				Key("amount").
				Title("Monthly amount").
				Placeholder("250.00").
				Validate(validateAmount),
			huh.NewMultiSelect[uuid.UUID]().
				Key("categories").
				Title("Categories").
				Options(options...).
				Validate(func(ids []uuid.UUID) error {
					if len(ids) == 0 {
						return errors.New("pick at least one category")
					}

					return nil
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = budgetStateCreate
	m.table.Blur()

	return m, m.form.Init()
}

func (m BudgetsModel) updateCreate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = budgetStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m BudgetsModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading budgets...")
	}

	header := fmt.Sprintf("Month: %s", activeStyle.Render(m.month.Format("January 2006")))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	if len(m.history) > 0 {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.historyView())
	}

	if m.state == budgetStateCreate && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render("New Budget\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m BudgetsModel) historyView() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", headingStyle.Render(m.history[0].Name+" history"))

	for _, h := range m.history {
		fmt.Fprintf(&b, "%s %s %s\n",
			time.Date(h.Year, h.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006"),
			Bar(h.PercentageSpent, 15),
			FormatMoney(h.Spent),
		)
	}

	return lipgloss.NewStyle().
		Padding(0, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m *BudgetsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.statuses))

	for _, s := range m.statuses {
		rows = append(rows, table.Row{
			s.Name,
			FormatMoney(s.Target),
			FormatMoney(s.Spent),
			FormatMoney(s.Remaining),
			FormatPercent(s.PercentageSpent),
		})
	}

	m.table.SetRows(rows)
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	if err != nil {
		return errors.New("not a number")
	}

	if !d.IsPositive() {
		return errors.New("must be greater than zero")
	}

	return nil
}

func parseAmount(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
	return d
}

// Messages

type budgetsLoadedMsg struct {
	statuses   []budget.Status
	categories []reference.Category
	err        error
}

func (m BudgetsModel) loadCmd() tea.Cmd {
	user, month := m.User, m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		statuses, err := m.svc.Statuses(ctx, user, month)
		if err != nil {
			return budgetsLoadedMsg{err: err}
		}

		cats, _ := m.references.Categories(ctx, user)

		return budgetsLoadedMsg{statuses: statuses, categories: cats}
	}
}

type budgetHistoryMsg struct {
	history []budget.Status
	err     error
}

func (m BudgetsModel) historyCmd() tea.Cmd {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.statuses) {
		return nil
	}

	user, id := m.User, m.statuses[idx].ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		history, err := m.svc.History(ctx, user, id)

		return budgetHistoryMsg{history: history, err: err}
	}
}

type budgetSavedMsg struct {
	err error
}

func (m BudgetsModel) saveCmd() tea.Cmd {
	user := m.User
	categories, _ := m.form.Get("categories").([]uuid.UUID)
	b := &budget.Budget{
		Name:        strings.TrimSpace(m.form.GetString("name")),
		Amount:      parseAmount(m.form.GetString("amount")),
		Interval:    budget.IntervalMonth,
		StartDate:   m.month,
		CategoryIDs: categories,
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		return budgetSavedMsg{err: m.svc.Create(ctx, user, b)}
	}
}
