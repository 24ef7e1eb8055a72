package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pocket/internal/overview"
)

var cardStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1).
	Width(36)

type DashboardModel struct {
	CommonModel
	svc *overview.Service

	dashboard *overview.Dashboard
	stats     *overview.Stats
	loading   bool
	err       error
}

func NewDashboardModel(common CommonModel, svc *overview.Service) DashboardModel {
	return DashboardModel{CommonModel: common, svc: svc, loading: true}
}

func (m DashboardModel) Title() string     { return "Overview" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardMsg:
		m.loading = false
		m.err = msg.err
		m.dashboard = msg.dashboard
		m.stats = msg.stats

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading overview...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	d := m.dashboard

	remaining := cardStyle.Render(fmt.Sprintf(
		"%s\n\nIncome    %s\nExpense   %s\nRemaining %s\n%s %s spent",
		headingStyle.Render("This month"),
		incomeStyle.Render(FormatMoney(d.Remaining.Income)),
		expenseStyle.Render(FormatMoney(d.Remaining.Expense)),
		FormatMoney(d.Remaining.Remaining),
		Bar(d.Remaining.SpentPercentage, 20),
		FormatPercent(d.Remaining.SpentPercentage),
	))

	todayLeft := FormatPercent(d.DailyLimit.RemainingPercentage)
	if d.DailyLimit.RemainingPercentage < 0 {
		todayLeft = expenseStyle.Render(todayLeft + " overspent")
	}

	daily := cardStyle.Render(fmt.Sprintf(
		"%s\n\nLimit     %s\nSpent     %s\nLeft      %s\n%d days left, %s of today's limit",
		headingStyle.Render("Today"),
		FormatMoney(d.DailyLimit.DailyLimitAmount),
		FormatMoney(d.DailyLimit.SpentToday),
		FormatMoney(d.DailyLimit.RemainingToday),
		d.DailyLimit.RemainingDays,
		todayLeft,
	))

	var top strings.Builder

	top.WriteString(headingStyle.Render("Top categories") + "\n\n")

	if len(d.TopCategories) == 0 {
		top.WriteString(faintStyle.Render("No expenses yet."))
	}

	for _, s := range d.TopCategories {
		fmt.Fprintf(&top, "%-14s %s %s\n", strings.TrimSpace(s.Icon+" "+s.Name), FormatMoney(s.Amount), faintStyle.Render(FormatPercent(s.Percentage)))
	}

	payday := cardStyle.Render(fmt.Sprintf(
		"%s\n\n%d of %d days left\n%s\nNext: %s\n\nNet worth %s",
		headingStyle.Render("Pay day"),
		d.PayDay.RemainingDays,
		d.PayDay.DaysInMonth,
		Bar(100-d.PayDay.RemainingDaysPercentage, 20),
		FormatDate(d.PayDay.NextPayDay),
		FormatMoney(d.NetWorth),
	))

	rows := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, remaining, daily),
		lipgloss.JoinHorizontal(lipgloss.Top, cardStyle.Render(strings.TrimRight(top.String(), "\n")), payday),
	)

	if m.stats != nil {
		rows = lipgloss.JoinVertical(lipgloss.Left, rows, faintStyle.Render(fmt.Sprintf(
			"Year: +%s -%s | %d transactions",
			FormatMoney(m.stats.YearIncome),
			FormatMoney(m.stats.YearExpense),
			m.stats.TransactionCount,
		)))
	}

	return lipgloss.NewStyle().Padding(1).Render(rows + "\n\n" + m.recentView())
}

func (m DashboardModel) recentView() string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Last 7 days") + "\n")

	for _, g := range m.dashboard.Recent {
		fmt.Fprintf(&b, "\n%s\n", faintStyle.Render(g.Date.Format("Mon 02 Jan")))

		for _, tx := range g.Transactions {
			fmt.Fprintf(&b, "  %s  %s\n", FormatSigned(tx.Amount, tx.Type), tx.DescriptionText())
		}
	}

	return b.String()
}

type dashboardMsg struct {
	dashboard *overview.Dashboard
	stats     *overview.Stats
	err       error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	user := m.User

	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		d, err := m.svc.Dashboard(ctx, user)
		if err != nil {
			return dashboardMsg{err: err}
		}

		msg := dashboardMsg{dashboard: d}

		// The remote totals are a nice-to-have below the cards.
		if stats, err := m.svc.Stats(ctx, user); err == nil {
			msg.stats = &stats
		}

		return msg
	}
}
