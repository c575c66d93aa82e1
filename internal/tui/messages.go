package tui

import "github.com/billmal071/pavilion/internal/store"

// NavigateMsg asks the app to resolve Path and mount the matching view
type NavigateMsg struct {
	Path string
}

// StateMsg carries a committed store snapshot
type StateMsg struct {
	State store.State
}

// actionMsg reports a finished store action
type actionMsg struct {
	op    string
	state store.State
	err   error
}

// contentMsg carries the text for the reading view
type contentMsg struct {
	id      string
	content string
	err     error
}

const (
	opList    = "list"
	opBook    = "book"
	opDelete  = "delete"
	opDismiss = "dismiss"
)
