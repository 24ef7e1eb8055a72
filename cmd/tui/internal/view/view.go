package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views. User is the signed-in user every
// service call is scoped to.
type CommonModel struct {
	User   uuid.UUID
	Width  int
	Height int
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}
