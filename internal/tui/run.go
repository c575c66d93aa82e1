package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/pavilion/internal/api"
	"github.com/billmal071/pavilion/internal/router"
	"github.com/billmal071/pavilion/internal/store"
)

// Run starts the full-screen browser at path
func Run(ctx context.Context, client api.Client, st *store.Store, path string) error {
	app := NewApp(ctx, router.New(), st, client, path)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	// loading flags are committed before the action's command returns
	unsubscribe := st.Subscribe(func(s store.State) {
		p.Send(StateMsg{State: s})
	})
	defer unsubscribe()

	_, err := p.Run()
	return err
}
