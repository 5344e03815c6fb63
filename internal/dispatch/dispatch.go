// Package dispatch launches resolved menu actions as detached processes.
package dispatch

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/example/lbmenu/internal/logging"
)

// ErrUnknownAction indicates the identifier is not part of the current action
// registry, typically because the menu was rebuilt since it was handed out.
var ErrUnknownAction = errors.New("dispatch: unknown action")

// Action is a resolved command leaf. It is immutable once registered.
type Action struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Path       string   `json:"path,omitempty"`
	Executable string   `json:"executable"`
	Args       []string `json:"args,omitempty"`
}

// String renders the command line for logs. It is not a shell command.
func (a Action) String() string {
	parts := make([]string, 0, len(a.Args)+1)
	parts = append(parts, a.Executable)
	for _, arg := range a.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			parts = append(parts, fmt.Sprintf("%q", arg))
			continue
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

// LaunchError reports that the operating system refused to start an action.
type LaunchError struct {
	Action Action
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %q (%s): %v", e.Action.Label, e.Action.Executable, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Lookup resolves action identifiers.
type Lookup interface {
	Lookup(id string) (Action, bool)
}

// Dispatcher starts actions without waiting for them. It holds no mutable
// state, so concurrent calls never serialize against each other.
type Dispatcher struct {
	actions Lookup
	start   func(*exec.Cmd) error
}

// New constructs a Dispatcher resolving identifiers through actions.
func New(actions Lookup) *Dispatcher {
	return &Dispatcher{actions: actions, start: startDetached}
}

// Dispatch launches the action registered under id.
func (d *Dispatcher) Dispatch(id string) error {
	if d.actions == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}
	action, ok := d.actions.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}
	return d.Launch(action)
}

// Launch starts action as an independent process and returns as soon as the
// process exists. Any children that already exited are reaped afterwards.
func (d *Dispatcher) Launch(action Action) error {
	if strings.TrimSpace(action.Executable) == "" {
		return &LaunchError{Action: action, Err: errors.New("empty executable")}
	}

	cmd := exec.Command(action.Executable, action.Args...)
	configureDetached(cmd)

	start := d.start
	if start == nil {
		start = startDetached
	}
	if err := start(cmd); err != nil {
		return &LaunchError{Action: action, Err: err}
	}
	logging.Debugf("launched %s", action)

	if n := Reap(); n > 0 {
		logging.Debugf("reaped %d finished child process(es)", n)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	if cmd.Process != nil {
		// the child is never waited on through os/exec; Reap collects it
		_ = cmd.Process.Release()
	}
	return nil
}
