package configtree

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

type encodedNode struct {
	Label   string        `json:"label" yaml:"label" toml:"label"`
	Icon    string        `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	Command string        `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"`
	Args    []string      `json:"command-args,omitempty" yaml:"command-args,omitempty" toml:"command-args,omitempty"`
	Items   []encodedNode `json:"items,omitempty" yaml:"items,omitempty" toml:"items,omitempty"`
}

type encodedRoot struct {
	Label    string            `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Icon     string            `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	Icons    map[string]string `json:"icons,omitempty" yaml:"icons,omitempty" toml:"icons,omitempty"`
	Commands map[string]string `json:"commands,omitempty" yaml:"commands,omitempty" toml:"commands,omitempty"`
	Vars     map[string]string `json:"vars,omitempty" yaml:"vars,omitempty" toml:"vars,omitempty"`
	Items    []encodedNode     `json:"items" yaml:"items" toml:"items"`
}

// Encode serializes doc in format. Parsing the output yields the same tree
// and symbol tables.
func Encode(doc *Document, format Format) ([]byte, error) {
	if doc == nil {
		doc = &Document{}
	}
	root := doc.Root
	if root == nil {
		root = &Node{}
	}

	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(encodeRoot(root, doc), "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(encodeRoot(root, doc))
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(encodeRoot(root, doc)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatXML:
		return encodeXML(root, doc)
	case FormatHCL:
		return encodeHCL(root, doc), nil
	default:
		return nil, fmt.Errorf("unsupported settings format %q", format)
	}
}

func encodeRoot(root *Node, doc *Document) encodedRoot {
	return encodedRoot{
		Label:    root.Label,
		Icon:     root.Icon,
		Icons:    nonEmptyMap(doc.Symbols.Icons),
		Commands: nonEmptyMap(doc.Symbols.Commands),
		Vars:     nonEmptyMap(doc.Symbols.Vars),
		Items:    encodeNodes(root.Children),
	}
}

func encodeNodes(nodes []*Node) []encodedNode {
	out := make([]encodedNode, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.IsSeparator() {
			out = append(out, encodedNode{Label: SeparatorLabel})
			continue
		}
		out = append(out, encodedNode{
			Label:   n.Label,
			Icon:    n.Icon,
			Command: n.Command,
			Args:    n.Args,
			Items:   encodeNodes(n.Children),
		})
	}
	return out
}

func encodeXML(root *Node, doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	start := xml.StartElement{Name: xml.Name{Local: "settings"}, Attr: nodeAttrs(root)}
	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	sections := []struct {
		section, entry string
		values         map[string]string
	}{
		{"tray-icons", "icon", doc.Symbols.Icons},
		{"commands", "command", doc.Symbols.Commands},
		{"vars", "var", doc.Symbols.Vars},
	}
	for _, s := range sections {
		if len(s.values) == 0 {
			continue
		}
		if err := encodeXMLSymbols(enc, s.section, s.entry, s.values); err != nil {
			return nil, err
		}
	}
	if err := encodeXMLNodes(enc, root.Children); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func nodeAttrs(n *Node) []xml.Attr {
	var attrs []xml.Attr
	if n.Label != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "label"}, Value: n.Label})
	}
	if n.IsSeparator() {
		return attrs
	}
	if n.Icon != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "icon"}, Value: n.Icon})
	}
	if n.Command != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "cmd"}, Value: n.Command})
	}
	return attrs
}

func encodeXMLSymbols(enc *xml.Encoder, section, entry string, values map[string]string) error {
	start := xml.StartElement{Name: xml.Name{Local: section}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	for _, name := range sortedKeys(values) {
		el := xml.StartElement{
			Name: xml.Name{Local: entry},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "name"}, Value: name},
				{Name: xml.Name{Local: "value"}, Value: values[name]},
			},
		}
		if err := enc.EncodeToken(el); err != nil {
			return err
		}
		if err := enc.EncodeToken(el.End()); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func encodeXMLNodes(enc *xml.Encoder, nodes []*Node) error {
	for _, n := range nodes {
		if n == nil || n.Label == "" {
			continue
		}
		start := xml.StartElement{Name: xml.Name{Local: "item"}, Attr: nodeAttrs(n)}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		if !n.IsSeparator() {
			for _, arg := range n.Args {
				el := xml.StartElement{
					Name: xml.Name{Local: "arg"},
					Attr: []xml.Attr{{Name: xml.Name{Local: "value"}, Value: arg}},
				}
				if err := enc.EncodeToken(el); err != nil {
					return err
				}
				if err := enc.EncodeToken(el.End()); err != nil {
					return err
				}
			}
			if err := encodeXMLNodes(enc, n.Children); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return err
		}
	}
	return nil
}

func encodeHCL(root *Node, doc *Document) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	if root.Label != "" {
		body.SetAttributeValue("label", cty.StringVal(root.Label))
	}
	if root.Icon != "" {
		body.SetAttributeValue("icon", cty.StringVal(root.Icon))
	}
	setHCLMap(body, "icons", doc.Symbols.Icons)
	setHCLMap(body, "commands", doc.Symbols.Commands)
	setHCLMap(body, "vars", doc.Symbols.Vars)
	encodeHCLItems(body, root.Children)
	return f.Bytes()
}

func setHCLMap(body *hclwrite.Body, name string, values map[string]string) {
	if len(values) == 0 {
		return
	}
	vals := make(map[string]cty.Value, len(values))
	for k, v := range values {
		vals[k] = cty.StringVal(v)
	}
	body.SetAttributeValue(name, cty.MapVal(vals))
}

func encodeHCLItems(body *hclwrite.Body, nodes []*Node) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		body.AppendNewline()
		block := body.AppendNewBlock("item", []string{n.Label})
		if n.IsSeparator() {
			continue
		}
		inner := block.Body()
		if n.Icon != "" {
			inner.SetAttributeValue("icon", cty.StringVal(n.Icon))
		}
		if n.Command != "" {
			inner.SetAttributeValue("command", cty.StringVal(n.Command))
		}
		if len(n.Args) > 0 {
			args := make([]cty.Value, 0, len(n.Args))
			for _, arg := range n.Args {
				args = append(args, cty.StringVal(arg))
			}
			inner.SetAttributeValue("args", cty.ListVal(args))
		}
		encodeHCLItems(inner, n.Children)
	}
}

func nonEmptyMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	return in
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
