package configtree

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/example/lbmenu/internal/symbols"
)

// xmlElement is a generic element; the settings schema is attribute driven so
// decoding into a fixed struct would drop unknown nesting.
type xmlElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []xmlElement `xml:",any"`
	Text     string       `xml:",chardata"`
}

func (e xmlElement) attr(names ...string) string {
	for _, name := range names {
		for _, a := range e.Attrs {
			if a.Name.Local == name {
				return a.Value
			}
		}
	}
	return ""
}

func (e xmlElement) hasAttr(name string) bool {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

// parseXML decodes the attribute-tree shape:
//
//	<settings>
//	  <tray-icons><main>icons/main.png</main></tray-icons>
//	  <item label="Terminal" cmd="/usr/bin/open" icon="terminal">
//	    <arg value="/Applications/Utilities/Terminal.app"/>
//	  </item>
//	</settings>
func parseXML(data []byte) (*Document, error) {
	var root xmlElement
	decoder := xml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&root); err != nil {
		return nil, err
	}

	icons := make(map[string]string)
	commands := make(map[string]string)
	vars := make(map[string]string)

	node := &Node{
		Label:   root.attr("label"),
		Icon:    root.attr("icon"),
		Command: root.attr("cmd", "command"),
		Args:    xmlArgs(root),
	}

	var items []xmlElement
	for _, child := range root.Children {
		switch child.XMLName.Local {
		case "tray-icons", "icons":
			collectXMLSymbols(child, icons)
		case "commands":
			collectXMLSymbols(child, commands)
		case "vars":
			collectXMLSymbols(child, vars)
		default:
			items = append(items, child)
		}
	}
	node.Children = xmlChildren(items)

	return &Document{
		Root:    node,
		Symbols: symbols.New(icons, commands, vars),
	}, nil
}

func xmlChildren(elements []xmlElement) []*Node {
	var out []*Node
	for _, el := range elements {
		if el.XMLName.Local == "arg" {
			continue
		}
		if !el.hasAttr("label") || el.attr("label") == "" {
			// unlabeled elements only group their children
			out = append(out, xmlChildren(el.Children)...)
			continue
		}
		node := &Node{
			Label:   el.attr("label"),
			Icon:    el.attr("icon"),
			Command: el.attr("cmd", "command"),
		}
		if node.IsSeparator() {
			out = append(out, node)
			continue
		}
		node.Args = xmlArgs(el)
		node.Children = xmlChildren(el.Children)
		out = append(out, node)
	}
	return out
}

func xmlArgs(el xmlElement) []string {
	var args []string
	for _, child := range el.Children {
		if child.XMLName.Local != "arg" {
			continue
		}
		if child.hasAttr("value") {
			args = append(args, child.attr("value"))
			continue
		}
		args = append(args, strings.TrimSpace(child.Text))
	}
	return args
}

func collectXMLSymbols(section xmlElement, dest map[string]string) {
	for _, entry := range section.Children {
		name := entry.XMLName.Local
		if n := entry.attr("name"); n != "" {
			name = n
		}
		value := strings.TrimSpace(entry.Text)
		if entry.hasAttr("value") {
			value = entry.attr("value")
		}
		dest[name] = value
	}
}
