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
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
	"github.com/MrJamesThe3rd/pocket/internal/mirror"
	"github.com/MrJamesThe3rd/pocket/internal/reference"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

type txState int

const (
	txStateTimeframe txState = iota
	txStateList
	txStateEditing
)

// dayItem heads a group of transactions in the list.
type dayItem struct {
	group aggregate.DayGroup
}

func (i dayItem) FilterValue() string { return "" }

type txItem struct {
	tx *transaction.Transaction
}

func (i txItem) Title() string {
	payee := ""
	if i.tx.PayeeName != nil {
		payee = faintStyle.Render(" @ " + *i.tx.PayeeName)
	}

	return fmt.Sprintf("%s  %s%s", FormatSigned(i.tx.Amount, i.tx.Type), i.tx.DescriptionText(), payee)
}

func (i txItem) FilterValue() string {
	return i.tx.DescriptionText() + " " + i.tx.CategoryName
}

type TransactionsModel struct {
	CommonModel
	txService  *transaction.Service
	mirror     *mirror.Coordinator
	references *reference.Service

	state           txState
	timeframePicker TimeframePicker
	list            list.Model
	form            *huh.Form
	period          aggregate.Period
	allTime         bool
	selectedTx      *transaction.Transaction
	categories      []reference.Category
	loading         bool
	status          string
}

func NewTransactionsModel(
	common CommonModel,
	txSvc *transaction.Service,
	sync *mirror.Coordinator,
	refs *reference.Service,
) TransactionsModel {
	l := list.New([]list.Item{}, txItemDelegate{}, 80, 20)
	l.Title = "Transactions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)

	return TransactionsModel{
		CommonModel:     common,
		txService:       txSvc,
		mirror:          sync,
		references:      refs,
		timeframePicker: NewTimeframePicker(),
		list:            l,
	}
}

func (m TransactionsModel) Title() string { return "Transactions" }

func (m TransactionsModel) ShortHelp() string {
	switch m.state {
	case txStateTimeframe:
		return "Esc: back | Enter: select"
	case txStateList:
		return "Esc: back | Enter: edit | /: filter | s: sync now | t: timeframe"
	case txStateEditing:
		return "Esc: cancel | Enter/Tab: navigate form"
	}

	return ""
}

func (m TransactionsModel) Init() tea.Cmd {
	return nil
}

func (m TransactionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TimeframeSelectedMsg:
		m.period = msg.Period
		m.allTime = msg.All
		m.loading = true
		m.state = txStateList

		return m, m.loadTxsCmd()

	case loadTxsMsg:
		m.loading = false
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return m, nil
		}

		m.categories = msg.categories
		m.list.SetItems(groupItems(msg.txs))

		m.status = ""
		if len(msg.txs) == 0 {
			m.status = "No transactions found."
		}

		return m, nil

	case syncResultMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Sync failed: %v", msg.err))
			return m, nil
		}

		m.status = fmt.Sprintf("Synced %d transactions.", msg.rows)

		return m, m.loadTxsCmd()

	case saveTxResultMsg:
		m.state = txStateList
		m.form = nil

		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Error saving: %v", msg.err))
			return m, nil
		}

		m.status = "Saved."

		return m, m.loadTxsCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)

		return m, nil
	}

	switch m.state {
	case txStateTimeframe:
		return m.updateTimeframe(msg)
	case txStateList:
		return m.updateList(msg)
	case txStateEditing:
		return m.updateEditing(msg)
	}

	return m, nil
}

func (m TransactionsModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.timeframePicker, cmd = m.timeframePicker.Update(msg)

	return m, cmd
}

func (m TransactionsModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "enter":
			return m.startEditing()
		case "s":
			m.status = "Syncing..."
			return m, m.syncCmd()
		case "t":
			m.state = txStateTimeframe
			m.timeframePicker = NewTimeframePicker()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	return m, cmd
}

func (m TransactionsModel) startEditing() (tea.Model, tea.Cmd) {
	selected, ok := m.list.SelectedItem().(txItem)
	if !ok {
		return m, nil
	}

	m.selectedTx = selected.tx

	desc := selected.tx.DescriptionText()
	category := selected.tx.CategoryID

	options := make([]huh.Option[uuid.UUID], 0, len(m.categories))

	for _, c := range m.categories {
		if c.Type == selected.tx.Type {
			options = append(options, huh.NewOption(strings.TrimSpace(c.Icon+" "+c.Name), c.ID))
		}
	}

	fields := []huh.Field{
		huh.NewInput().
			Key("description").
			Title("Description").
			Value(&desc),
	}

	if len(options) > 0 {
		fields = append(fields, huh.NewSelect[uuid.UUID]().
			Key("category").
			Title("Category").
			Options(options...).
			Value(&category))
	}

	fields = append(fields, huh.NewConfirm().
		Key("delete").
		Title("Delete this transaction?").
		Affirmative("Delete").
		Negative("Keep"))

	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(50).WithShowHelp(false)
	m.state = txStateEditing

	return m, m.form.Init()
}

func (m TransactionsModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = txStateList
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

	return m, m.saveTxCmd()
}

func (m TransactionsModel) View() string {
	switch m.state {
	case txStateTimeframe:
		return lipgloss.NewStyle().Padding(1).Render(m.timeframePicker.View())

	case txStateList:
		if m.loading {
			return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
		}

		statusLine := ""
		if m.status != "" {
			statusLine = faintStyle.Render(m.status) + "\n"
		}

		return lipgloss.NewStyle().Padding(1).Render(statusLine + m.list.View())

	case txStateEditing:
		if m.form == nil {
			return ""
		}

		return lipgloss.NewStyle().Padding(1).Render(m.txInfoView() + "\n" + m.form.View())
	}

	return ""
}

func (m TransactionsModel) txInfoView() string {
	if m.selectedTx == nil {
		return ""
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(fmt.Sprintf(
			"Date: %s  |  Type: %s  |  Amount: %s\nCategory: %s",
			FormatDate(m.selectedTx.Date),
			m.selectedTx.Type,
			FormatMoney(m.selectedTx.Amount),
			m.selectedTx.CategoryName,
		))
}

// groupItems flattens day groups into list rows, newest day first.
func groupItems(txs []*transaction.Transaction) []list.Item {
	groups := aggregate.GroupByDate(aggregate.SortByTimestamp(txs))
	items := make([]list.Item, 0, len(txs)+len(groups))

	for _, g := range groups {
		items = append(items, dayItem{group: g})

		for _, tx := range g.Transactions {
			items = append(items, txItem{tx: tx})
		}
	}

	return items
}

// Messages

type loadTxsMsg struct {
	txs        []*transaction.Transaction
	categories []reference.Category
	err        error
}

func (m TransactionsModel) loadTxsCmd() tea.Cmd {
	user, period, all := m.User, m.period, m.allTime

	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		txs, err := m.mirror.Load(ctx, user)
		if err != nil {
			return loadTxsMsg{err: err}
		}

		if !all {
			txs = aggregate.FilterByPeriod(txs, period)
		}

		// Categories only feed the edit form; an empty picker is fine.
		cats, _ := m.references.Categories(ctx, user)

		return loadTxsMsg{txs: txs, categories: cats}
	}
}

type syncResultMsg struct {
	rows int
	err  error
}

func (m TransactionsModel) syncCmd() tea.Cmd {
	user := m.User

	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		rows, err := m.mirror.ForceSync(ctx, user)
		if errors.Is(err, mirror.ErrSyncInProgress) {
			return syncResultMsg{err: errors.New("a sync is already running, try again shortly")}
		}

		return syncResultMsg{rows: rows, err: err}
	}
}

type saveTxResultMsg struct {
	err error
}

func (m TransactionsModel) saveTxCmd() tea.Cmd {
	user := m.User
	updated := *m.selectedTx
	desc := strings.TrimSpace(m.form.GetString("description"))
	remove := m.form.GetBool("delete")

	category := updated.CategoryID
	if id, ok := m.form.Get("category").(uuid.UUID); ok {
		category = id
	}
	svc := m.txService

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if remove {
			return saveTxResultMsg{err: svc.Delete(ctx, user, updated.ID)}
		}

		updated.Description = nil
		if desc != "" {
			updated.Description = &desc
		}

		updated.CategoryID = category

		return saveTxResultMsg{err: svc.Update(ctx, user, &updated)}
	}
}

// txItemDelegate renders day headers and transactions in the list.
type txItemDelegate struct{}

func (d txItemDelegate) Height() int                             { return 1 }
func (d txItemDelegate) Spacing() int                            { return 0 }
func (d txItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d txItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	switch i := item.(type) {
	case dayItem:
		fmt.Fprintf(w, "%s  %s %s",
			headingStyle.Render(i.group.Date.Format("Mon 02 Jan 2006")),
			incomeStyle.Render("+"+FormatMoney(i.group.Income)),
			expenseStyle.Render("-"+FormatMoney(i.group.Expense)),
		)
	case txItem:
		title := i.Title()
		if index == m.Index() {
			title = activeStyle.Bold(true).Render("> ") + title
		} else {
			title = "  " + title
		}

		fmt.Fprintf(w, "  %s", title)
	}
}
