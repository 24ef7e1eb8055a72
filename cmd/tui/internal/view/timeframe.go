package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/pocket/internal/aggregate"
)

// Timeframe is a predefined or custom date range selection.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeLast30Days
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeLast30Days:
		return "Last 30 Days"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Period resolves a predefined timeframe against now. All and Custom have
// no fixed period and return false.
func (t Timeframe) Period(now time.Time) (aggregate.Period, bool) {
	switch t {
	case TimeframeThisMonth:
		return aggregate.MonthOf(now), true
	case TimeframeLastMonth:
		return aggregate.MonthOf(time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, time.UTC)), true
	case TimeframeThisYear:
		return aggregate.YearOf(now), true
	case TimeframeLast30Days:
		return aggregate.NewPeriod(now.AddDate(0, 0, -29), now), true
	}

	return aggregate.Period{}, false
}

// TimeframeSelectedMsg is emitted once a range is chosen. Period is zero
// when All is true.
type TimeframeSelectedMsg struct {
	Period aggregate.Period
	All    bool
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker() TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   TimeframeThisMonth,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if m.state == timeframeStateSelect {
			return m.updateSelect(keyMsg)
		}

		return m.updateCustom(keyMsg)
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		switch m.selected {
		case TimeframeCustom:
			m.state = timeframeStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		case TimeframeAll:
			return m, selected(TimeframeSelectedMsg{All: true})
		}

		p, _ := m.selected.Period(m.now())

		return m, selected(TimeframeSelectedMsg{Period: p})
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink

	case "enter":
		p, err := parseRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil

		return m, selected(TimeframeSelectedMsg{Period: p})

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

func parseRange(rawStart, rawEnd string) (aggregate.Period, error) {
	start, err := time.Parse(time.DateOnly, rawStart)
	if err != nil {
		return aggregate.Period{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.Parse(time.DateOnly, rawEnd)
	if err != nil {
		return aggregate.Period{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return aggregate.Period{}, errors.New("end date is before start date")
	}

	return aggregate.NewPeriod(start, end), nil
}

func selected(msg TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var start, end tea.Cmd

	m.startInput, start = m.startInput.Update(msg)
	m.endInput, end = m.endInput.Update(msg)

	return m, tea.Batch(start, end)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Select Timeframe:\n\n"

	for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, tf)
	}

	return s + "\n(Enter to select, Esc to back)" + errStr
}

// IsSelecting reports whether the picker is on the list rather than the
// custom range inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}
