package protocol

import "github.com/example/lbmenu/internal/dispatch"

const (
	// CommandMenuList requests the actions of the current menu.
	CommandMenuList = "menu.list"
	// CommandMenuRefresh rebuilds the menu and returns its actions.
	CommandMenuRefresh = "menu.refresh"
	// CommandActionDispatch launches one action of the current menu.
	CommandActionDispatch = "action.dispatch"
)

// Error codes carried in Response.Code.
const (
	CodeUnauthorized   = "unauthorized"
	CodeUnknownCommand = "unknown_command"
	CodeUnknownAction  = "unknown_action"
	CodeLaunchFailure  = "launch_failure"
	CodeBadRequest     = "bad_request"
)

// Request is the control payload sent by `lbmenu ctl` to a running launcher.
type Request struct {
	Token    string `json:"token"`
	Command  string `json:"command"`
	ActionID string `json:"actionId,omitempty"`
}

// Response is the reply emitted by the launcher.
type Response struct {
	Error       string            `json:"error,omitempty"`
	Code        string            `json:"code,omitempty"`
	Digest      string            `json:"digest,omitempty"`
	SettingsErr string            `json:"settingsError,omitempty"`
	Actions     []dispatch.Action `json:"actions,omitempty"`
}
