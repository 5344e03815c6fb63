package menu

import (
	"runtime"

	"github.com/example/lbmenu/internal/configtree"
	"github.com/example/lbmenu/internal/symbols"
)

// DefaultDocument returns the starter settings written when no configuration
// exists yet.
func DefaultDocument() *configtree.Document {
	terminal, editor, files := "xterm", "xdg-open", "xdg-open"
	switch runtime.GOOS {
	case "darwin":
		terminal, editor, files = "/usr/bin/open", "/usr/bin/open", "/usr/bin/open"
	case "windows":
		terminal, editor, files = "cmd.exe", "notepad.exe", "explorer.exe"
	}

	root := &configtree.Node{
		Children: []*configtree.Node{
			{
				Label: "Applications",
				Icon:  "folder",
				Children: []*configtree.Node{
					{Label: "Terminal", Icon: "terminal", Command: "terminal"},
					{Label: "Edit settings", Command: "editor", Args: []string{"%(settings)s"}},
				},
			},
			{Label: configtree.SeparatorLabel},
			{Label: "Home folder", Command: "files", Args: []string{"%(home)s"}},
		},
	}

	return &configtree.Document{
		Root: root,
		Symbols: symbols.New(
			map[string]string{"main": "icons/main.png", "folder": "icons/folder.png", "terminal": "icons/terminal.png"},
			map[string]string{"terminal": terminal, "editor": editor, "files": files},
			nil,
		),
	}
}
