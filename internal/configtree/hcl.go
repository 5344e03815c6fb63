package configtree

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/example/lbmenu/internal/symbols"
)

// hclItem is one `item "<label>" { ... }` block.
type hclItem struct {
	Label   string     `hcl:"label,label"`
	Icon    string     `hcl:"icon,optional"`
	Command string     `hcl:"command,optional"`
	Args    []string   `hcl:"args,optional"`
	Items   []*hclItem `hcl:"item,block"`
}

type hclRoot struct {
	Label    string            `hcl:"label,optional"`
	Icon     string            `hcl:"icon,optional"`
	Icons    map[string]string `hcl:"icons,optional"`
	Commands map[string]string `hcl:"commands,optional"`
	Vars     map[string]string `hcl:"vars,optional"`
	Items    []*hclItem        `hcl:"item,block"`
}

func parseHCL(data []byte) (*Document, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, "settings.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse: %w", diags)
	}

	var root hclRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode: %w", diags)
	}

	return &Document{
		Root: &Node{
			Label:    root.Label,
			Icon:     root.Icon,
			Children: hclChildren(root.Items),
		},
		Symbols: symbols.New(root.Icons, root.Commands, root.Vars),
	}, nil
}

func hclChildren(items []*hclItem) []*Node {
	var out []*Node
	for _, item := range items {
		node := &Node{
			Label:   item.Label,
			Icon:    item.Icon,
			Command: item.Command,
		}
		if !node.IsSeparator() {
			node.Args = firstNonEmptyList(item.Args)
			node.Children = hclChildren(item.Items)
		}
		out = append(out, node)
	}
	return out
}
