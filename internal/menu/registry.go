package menu

import "github.com/example/lbmenu/internal/dispatch"

// Registry maps action identifiers to resolved actions, preserving the order
// in which the builder registered them. It is not modified after a build.
type Registry struct {
	order []string
	byID  map[string]dispatch.Action
}

func newRegistry() *Registry {
	return &Registry{byID: make(map[string]dispatch.Action)}
}

func (r *Registry) add(action dispatch.Action) {
	if _, exists := r.byID[action.ID]; !exists {
		r.order = append(r.order, action.ID)
	}
	r.byID[action.ID] = action
}

// Lookup returns the action registered under id.
func (r *Registry) Lookup(id string) (dispatch.Action, bool) {
	if r == nil {
		return dispatch.Action{}, false
	}
	action, ok := r.byID[id]
	return action, ok
}

// Len reports the number of registered actions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Actions returns the registered actions in traversal order.
func (r *Registry) Actions() []dispatch.Action {
	if r == nil {
		return nil
	}
	out := make([]dispatch.Action, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
