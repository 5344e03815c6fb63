package configtree

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/example/lbmenu/internal/symbols"
)

// objectNode is the object-tree shape shared by the JSON, YAML and TOML
// settings files. Historical variants used different key names, so the
// aliases are all accepted.
type objectNode struct {
	Label       string       `json:"label" yaml:"label" toml:"label"`
	Icon        string       `json:"icon" yaml:"icon" toml:"icon"`
	Command     string       `json:"command" yaml:"command" toml:"command"`
	Cmd         string       `json:"cmd" yaml:"cmd" toml:"cmd"`
	CommandArgs []string     `json:"command-args" yaml:"command-args" toml:"command-args"`
	Arg         []string     `json:"arg" yaml:"arg" toml:"arg"`
	Args        []string     `json:"args" yaml:"args" toml:"args"`
	Items       []objectNode `json:"items" yaml:"items" toml:"items"`
}

type objectRoot struct {
	Label       string            `json:"label" yaml:"label" toml:"label"`
	Icon        string            `json:"icon" yaml:"icon" toml:"icon"`
	Command     string            `json:"command" yaml:"command" toml:"command"`
	Cmd         string            `json:"cmd" yaml:"cmd" toml:"cmd"`
	CommandArgs []string          `json:"command-args" yaml:"command-args" toml:"command-args"`
	Arg         []string          `json:"arg" yaml:"arg" toml:"arg"`
	Args        []string          `json:"args" yaml:"args" toml:"args"`
	Items       []objectNode      `json:"items" yaml:"items" toml:"items"`
	Icons       map[string]string `json:"icons" yaml:"icons" toml:"icons"`
	Commands    map[string]string `json:"commands" yaml:"commands" toml:"commands"`
	Vars        map[string]string `json:"vars" yaml:"vars" toml:"vars"`
}

func (r objectRoot) document() *Document {
	root := objectNode{
		Label:       r.Label,
		Icon:        r.Icon,
		Command:     r.Command,
		Cmd:         r.Cmd,
		CommandArgs: r.CommandArgs,
		Arg:         r.Arg,
		Args:        r.Args,
		Items:       r.Items,
	}
	return &Document{
		Root:    root.node(),
		Symbols: symbols.New(r.Icons, r.Commands, r.Vars),
	}
}

func (o objectNode) node() *Node {
	n := &Node{
		Label:   o.Label,
		Icon:    o.Icon,
		Command: firstNonEmpty(o.Command, o.Cmd),
	}
	if n.IsSeparator() {
		return n
	}
	n.Args = firstNonEmptyList(o.CommandArgs, o.Arg, o.Args)
	for _, item := range o.Items {
		n.Children = append(n.Children, item.node())
	}
	return n
}

func itemsDocument(items []objectNode) *Document {
	return objectRoot{Items: items}.document()
}

func parseJSON(data []byte) (*Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []objectNode
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return itemsDocument(items), nil
	}

	var root objectRoot
	if err := json.Unmarshal(trimmed, &root); err != nil {
		return nil, err
	}
	return root.document(), nil
}

func parseYAML(data []byte) (*Document, error) {
	var raw yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Kind == 0 {
		// empty document
		return objectRoot{}.document(), nil
	}

	content := &raw
	if raw.Kind == yaml.DocumentNode && len(raw.Content) > 0 {
		content = raw.Content[0]
	}

	switch content.Kind {
	case yaml.SequenceNode:
		var items []objectNode
		if err := content.Decode(&items); err != nil {
			return nil, err
		}
		return itemsDocument(items), nil
	case yaml.MappingNode:
		var root objectRoot
		if err := content.Decode(&root); err != nil {
			return nil, err
		}
		return root.document(), nil
	default:
		return nil, errors.New("yaml settings must be a mapping or a sequence")
	}
}

func parseTOML(data []byte) (*Document, error) {
	var root objectRoot
	if _, err := toml.Decode(string(data), &root); err != nil {
		return nil, err
	}
	return root.document(), nil
}
