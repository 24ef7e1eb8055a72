package view

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocket/internal/importer"
	"github.com/MrJamesThe3rd/pocket/internal/reference"
	"github.com/MrJamesThe3rd/pocket/internal/transaction"
)

type importState int

const (
	importStateLoading importState = iota
	importStateCategories
	importStateFilePick
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service
	references    *reference.Service

	state      importState
	form       *huh.Form
	filePicker filepicker.Model
	opts       importer.Options

	newParams    []transaction.CreateParams
	conflicts    []transaction.Conflict
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(common CommonModel, impSvc *importer.Service, refs *reference.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		CommonModel:   common,
		importService: impSvc,
		references:    refs,
		filePicker:    fp,
		selected:      make(map[int]bool),
	}
}

func (m ImportModel) Title() string { return "Import Statement" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Space: toggle | a: all | n: none | Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.loadCategoriesCmd()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importCategoriesMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error loading categories: %v", msg.err)

			return m, nil
		}

		return m.startCategories(msg.categories)

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		if len(msg.result.Conflicts) == 0 {
			m.state = importStateResult
			m.status = fmt.Sprintf("Imported %d transactions.", len(msg.result.Imported))

			return m, nil
		}

		m.newParams = msg.result.New
		m.conflicts = msg.result.Conflicts
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, c := range m.conflicts {
			items[i] = conflictItem{conflict: c, index: i}
		}

		m.conflictList = list.New(items, conflictDelegate{selected: m.selected}, 80, 20)
		m.conflictList.Title = fmt.Sprintf("%d possible duplicates, %d new", len(m.conflicts), len(m.newParams))
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case confirmResultMsg:
		m.state = importStateResult
		if msg.err != nil {
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d transactions.", msg.count)

		return m, nil
	}

	switch m.state {
	case importStateCategories:
		return m.updateCategories(msg)
	case importStateFilePick:
		return m.updateFilePick(msg)
	}

	return m, nil
}

func (m ImportModel) startCategories(cats []reference.Category) (tea.Model, tea.Cmd) {
	var expense, income []huh.Option[uuid.UUID]

	for _, c := range cats {
		opt := huh.NewOption(strings.TrimSpace(c.Icon+" "+c.Name), c.ID)

		switch c.Type {
		case transaction.TypeExpense:
			expense = append(expense, opt)
		case transaction.TypeIncome:
			income = append(income, opt)
		}
	}

	if len(expense) == 0 || len(income) == 0 {
		m.state = importStateResult
		m.err = errors.New("missing categories")
		m.status = "Create at least one expense and one income category before importing."

		return m, nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Key("expense").
				Title("Category for money out").
				Options(expense...),
			huh.NewSelect[uuid.UUID]().
				Key("income").
				Title("Category for money in").
				Options(income...),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = importStateCategories

	return m, m.form.Init()
}

func (m ImportModel) updateCategories(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.opts.ExpenseCategoryID, _ = m.form.Get("expense").(uuid.UUID)
	m.opts.IncomeCategoryID, _ = m.form.Get("income").(uuid.UUID)
	m.state = importStateFilePick

	return m, m.filePicker.Init()
}

func (m ImportModel) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick, importStateResult, importStateConflicts:
		m.err = nil
		m.status = ""
		m.conflicts = nil
		m.newParams = nil
		m.selected = make(map[int]bool)
		m.state = importStateLoading

		return m, m.loadCategoriesCmd()
	}

	return m, Back
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		for i := range m.conflicts {
			m.selected[i] = false
		}

		return m, nil
	case "enter":
		return m, m.confirmCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading categories...")
	case importStateCategories:
		return lipgloss.NewStyle().Padding(1).Render("Imported rows land in:\n\n" + m.form.View())
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render("Select a bank statement (CSV):\n\n" + m.filePicker.View())
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateConflicts:
		return lipgloss.NewStyle().Padding(1).Render(m.conflictList.View())
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewResult() string {
	style := incomeStyle
	if m.err != nil {
		style = errorStyle
	}

	return lipgloss.NewStyle().Padding(2).Render(style.Render(m.status) + "\n\n(Esc to go back)")
}

// Messages

type importCategoriesMsg struct {
	categories []reference.Category
	err        error
}

type importResultMsg struct {
	result *transaction.ImportResult
	err    error
}

type confirmResultMsg struct {
	count int
	err   error
}

func (m ImportModel) loadCategoriesCmd() tea.Cmd {
	user := m.User

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cats, err := m.references.Categories(ctx, user)

		return importCategoriesMsg{categories: cats, err: err}
	}
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	user, opts := m.User, m.opts

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := SyncCtx()
		defer cancel()

		result, err := m.importService.Import(ctx, user, f, opts)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{result: result}
	}
}

func (m ImportModel) confirmCmd() tea.Cmd {
	user := m.User
	params := append([]transaction.CreateParams(nil), m.newParams...)

	for i, c := range m.conflicts {
		if m.selected[i] {
			params = append(params, c.Incoming)
		}
	}

	return func() tea.Msg {
		ctx, cancel := SyncCtx()
		defer cancel()

		txs, err := m.importService.Confirm(ctx, user, params)
		if err != nil {
			return confirmResultMsg{err: err}
		}

		return confirmResultMsg{count: len(txs)}
	}
}

type conflictItem struct {
	conflict transaction.Conflict
	index    int
}

func (i conflictItem) FilterValue() string { return "" }

// conflictDelegate shares the selection map with the model, so toggles are
// visible on the next render.
type conflictDelegate struct {
	selected map[int]bool
}

func (d conflictDelegate) Height() int                             { return 2 }
func (d conflictDelegate) Spacing() int                            { return 1 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.selected[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	incoming := item.conflict.Incoming
	existing := item.conflict.Existing

	desc := ""
	if incoming.Description != nil {
		desc = *incoming.Description
	}

	fmt.Fprintf(w, "%s%s %s  %s  %s\n",
		cursor, checkbox,
		FormatDate(incoming.Date),
		FormatSigned(incoming.Amount, incoming.Type),
		desc,
	)

	fmt.Fprintf(w, "      Existing: %s  %s  %s [%s]",
		FormatDate(existing.Date),
		FormatSigned(existing.Amount, existing.Type),
		existing.DescriptionText(),
		existing.CategoryName,
	)
}
