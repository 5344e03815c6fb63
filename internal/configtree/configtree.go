// Package configtree parses launcher settings files into a format independent
// tree of Nodes plus the symbol tables declared alongside them.
package configtree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/example/lbmenu/internal/symbols"
)

// SeparatorLabel marks a node that renders as a visual separator.
const SeparatorLabel = "separator"

// ErrConfigNotFound indicates the settings file does not exist. Callers are
// expected to continue with an empty menu.
var ErrConfigNotFound = errors.New("configtree: settings file not found")

// Format identifies the serialization used by a settings file.
type Format string

const (
	FormatUnknown Format = ""
	FormatXML     Format = "xml"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatHCL     Format = "hcl"
)

// Node is one entry of the parsed configuration before symbol resolution.
type Node struct {
	Label    string
	Icon     string
	Command  string
	Args     []string
	Children []*Node
}

// IsSeparator reports whether the node renders as a separator.
func (n *Node) IsSeparator() bool {
	return n.Label == SeparatorLabel
}

// IsCommand reports whether the node is an action leaf.
func (n *Node) IsCommand() bool {
	return n.Command != ""
}

// Document is the result of parsing a settings file.
type Document struct {
	Root    *Node
	Symbols symbols.Tables
}

// ParseError reports malformed settings content.
type ParseError struct {
	Path   string
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	target := e.Path
	if target == "" {
		target = "<input>"
	}
	if e.Format == FormatUnknown {
		return fmt.Sprintf("parse settings %s: %v", target, e.Err)
	}
	return fmt.Sprintf("parse %s settings %s: %v", e.Format, target, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads and parses the settings file at path, choosing the parser from
// the file extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	format := DetectFormat(path)
	if format == FormatUnknown {
		format = SniffFormat(data)
	}
	doc, err := Parse(data, format)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch format {
	case FormatXML:
		doc, err = parseXML(data)
	case FormatJSON:
		doc, err = parseJSON(data)
	case FormatYAML:
		doc, err = parseYAML(data)
	case FormatTOML:
		doc, err = parseTOML(data)
	case FormatHCL:
		doc, err = parseHCL(data)
	default:
		err = fmt.Errorf("unsupported settings format %q", format)
	}
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	if doc.Root == nil {
		doc.Root = &Node{}
	}
	return doc, nil
}

// DetectFormat maps a file extension to a Format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".hcl":
		return FormatHCL
	default:
		return FormatUnknown
	}
}

var (
	tomlTablePattern = regexp.MustCompile(`^\[\[?[A-Za-z0-9_.-]+\]\]?\s*$`)
	tomlKeyPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]+\s*=`)
	hclBlockPattern  = regexp.MustCompile(`(?m)^\s*item\s+"[^"]*"\s*\{`)
)

// SniffFormat guesses the format of content with no usable file extension,
// such as decrypted settings.
func SniffFormat(data []byte) Format {
	text := strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff"))
	if text == "" {
		return FormatUnknown
	}

	switch text[0] {
	case '<':
		return FormatXML
	case '{':
		return FormatJSON
	}

	firstLine := text
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		firstLine = strings.TrimSpace(text[:idx])
	}
	if text[0] == '[' {
		if tomlTablePattern.MatchString(firstLine) {
			return FormatTOML
		}
		return FormatJSON
	}
	if hclBlockPattern.MatchString(text) {
		return FormatHCL
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if tomlTablePattern.MatchString(line) || tomlKeyPattern.MatchString(line) {
			return FormatTOML
		}
	}
	return FormatYAML
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func firstNonEmptyList(values ...[]string) []string {
	for _, value := range values {
		if len(value) > 0 {
			out := make([]string, len(value))
			copy(out, value)
			return out
		}
	}
	return nil
}
