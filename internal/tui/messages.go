package tui

import (
	"github.com/printandread/shelf/internal/domain"
	"github.com/printandread/shelf/internal/state"
	"github.com/printandread/shelf/internal/tui/components"
)

// LevelLoadedMsg carries the result of loading one column
type LevelLoadedMsg struct {
	Level    components.Level
	ParentID int64
	Items    []domain.ListItem
	Err      error
}

// SnapshotMsg delivers a new catalogue snapshot from the store subscription
type SnapshotMsg struct {
	State *state.State
}

// MaterialOpenedMsg reports that a material was handed to the viewer
type MaterialOpenedMsg struct {
	Material domain.Material
	Err      error
}

// StatusMsg shows a transient line in the status bar
type StatusMsg struct {
	Text string
	Err  error
}

// SpinnerTickMsg advances loading spinners
type SpinnerTickMsg struct{}
