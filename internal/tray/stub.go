//go:build !cgo && !windows

package tray

import (
	"context"
	"errors"

	"github.com/example/lbmenu/internal/menu"
)

// ErrUnavailable is returned when the binary was built without tray support.
var ErrUnavailable = errors.New("system tray is unavailable without cgo support")

// Presenter is a placeholder that always fails to run.
type Presenter struct {
	opts Options
}

// New constructs a tray Presenter.
func New(opts Options) *Presenter {
	return &Presenter{opts: opts}
}

// Run returns ErrUnavailable.
func (p *Presenter) Run(context.Context, <-chan menu.Snapshot, menu.Actions) error {
	return ErrUnavailable
}
