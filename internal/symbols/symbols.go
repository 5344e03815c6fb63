// Package symbols holds the icon, command and variable tables consulted while
// a menu model is built.
package symbols

import "strings"

const (
	placeholderOpen  = "%("
	placeholderClose = ")s"
)

// Tables groups the three flat name to value mappings loaded with a
// configuration. Values may reference vars through %(name)s placeholders.
// Tables are read-only once constructed.
type Tables struct {
	Icons    map[string]string
	Commands map[string]string
	Vars     map[string]string
}

// New builds Tables from the provided maps. The maps are copied so later
// mutation by the caller does not leak into a built model.
func New(icons, commands, vars map[string]string) Tables {
	return Tables{
		Icons:    cloneMap(icons),
		Commands: cloneMap(commands),
		Vars:     cloneMap(vars),
	}
}

// WithVars returns a copy of t where defaults fill in any variable the
// configuration itself did not define.
func (t Tables) WithVars(defaults map[string]string) Tables {
	vars := cloneMap(defaults)
	for k, v := range t.Vars {
		vars[k] = v
	}
	return Tables{
		Icons:    cloneMap(t.Icons),
		Commands: cloneMap(t.Commands),
		Vars:     vars,
	}
}

// Expand substitutes every %(name)s placeholder naming a known var. Unknown
// names and unterminated placeholders are copied through verbatim, so Expand
// never fails. Substituted values are not expanded again.
func (t Tables) Expand(s string) string {
	if len(t.Vars) == 0 || !strings.Contains(s, placeholderOpen) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	rest := s
	for {
		start := strings.Index(rest, placeholderOpen)
		if start < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		tail := rest[start+len(placeholderOpen):]
		end := strings.Index(tail, placeholderClose)
		if end < 0 {
			b.WriteString(rest[start:])
			break
		}
		name := tail[:end]
		if value, ok := t.Vars[name]; ok && !strings.Contains(name, placeholderOpen) {
			b.WriteString(value)
			rest = tail[end+len(placeholderClose):]
			continue
		}
		// leave the opener in place and keep scanning after it so a nested
		// "%(a%(b)s" still resolves the inner placeholder
		b.WriteString(placeholderOpen)
		rest = tail
	}
	return b.String()
}

// Command resolves name through the command table, falling back to name as a
// literal command, and expands vars in the result.
func (t Tables) Command(name string) string {
	if value, ok := t.Commands[name]; ok {
		return t.Expand(value)
	}
	return t.Expand(name)
}

// Icon resolves name through the icon table, falling back to name as a
// literal path, and expands vars in the result. An empty name stays empty.
func (t Tables) Icon(name string) string {
	if name == "" {
		return ""
	}
	if value, ok := t.Icons[name]; ok {
		return t.Expand(value)
	}
	return t.Expand(name)
}

// LookupIcon resolves name through the icon table only. It reports false when
// name is not a defined icon symbol.
func (t Tables) LookupIcon(name string) (string, bool) {
	value, ok := t.Icons[name]
	if !ok {
		return "", false
	}
	return t.Expand(value), true
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
