package view

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

const (
	dbTimeout   = 10 * time.Second
	syncTimeout = 2 * time.Minute
)

var printer = message.NewPrinter(language.Portuguese)

var (
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// FormatMoney renders an amount with two decimals and locale grouping,
// e.g. 1.234,50 €.
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f €", f)
}

// FormatSigned colours an amount by direction and prefixes expenses with a
// minus sign.
func FormatSigned(amount decimal.Decimal, typ transaction.Type) string {
	if typ == transaction.TypeExpense {
		return expenseStyle.Render("-" + FormatMoney(amount))
	}

	return incomeStyle.Render("+" + FormatMoney(amount))
}

func FormatPercent(p float64) string {
	return printer.Sprintf("%.1f%%", p)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// Bar renders a fixed-width progress bar for a 0-100 percentage; values
// outside the range are clamped.
func Bar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	filled = max(0, min(width, filled))

	style := incomeStyle
	if pct >= 100 {
		style = expenseStyle
	}

	return style.Render(strings.Repeat("█", filled)) + faintStyle.Render(strings.Repeat("░", width-filled))
}

// DbCtx returns a context with a standard timeout for remote operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

// SyncCtx allows for a full mirror sync or a statement import.
func SyncCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), syncTimeout)
}
