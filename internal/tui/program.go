package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/example/lbmenu/internal/menu"
)

// Presenter runs the terminal menu against a runner's snapshot stream.
type Presenter struct {
	options []tea.ProgramOption
}

// New constructs a terminal Presenter. Extra program options are appended to
// the defaults, which use the alternate screen.
func New(options ...tea.ProgramOption) *Presenter {
	return &Presenter{options: options}
}

// Run blocks until the user quits or ctx is canceled.
func (p *Presenter) Run(ctx context.Context, updates <-chan menu.Snapshot, actions menu.Actions) error {
	opts := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, p.options...)
	program := tea.NewProgram(NewModel(actions), opts...)

	forwardCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		for {
			select {
			case <-forwardCtx.Done():
				return
			case snap := <-updates:
				program.Send(snapshotMsg(snap))
			}
		}
	}()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
