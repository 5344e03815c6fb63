// Package profiles discovers Remmina connection profiles and exposes them as
// extra menu nodes.
package profiles

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/example/lbmenu/internal/configtree"
	"github.com/example/lbmenu/internal/logging"
)

const (
	// Extension is the suffix of Remmina profile files.
	Extension = ".remmina"

	section        = "remmina"
	defaultCommand = "remmina"
	menuLabel      = "Remmina"
	menuIcon       = "remmina"
)

// Options tunes how profiles become menu nodes.
type Options struct {
	// Command launches a profile; defaults to "remmina" resolved through PATH.
	Command string
	// Label names the submenu; defaults to "Remmina".
	Label string
}

// DefaultDir returns $HOME/.remmina.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".remmina")
}

// Scan reads every profile in dir, sorted by file name, and returns a submenu
// node with one command leaf per profile. It returns nil when dir does not
// exist or holds no usable profiles. Unreadable profiles are skipped.
func Scan(dir string, opts Options) (*configtree.Node, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		logging.Debugf("profile directory %s does not exist", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read profile directory: %w", err)
	}

	command := opts.Command
	if command == "" {
		command = defaultCommand
	}
	label := opts.Label
	if label == "" {
		label = menuLabel
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var children []*configtree.Node
	for _, name := range names {
		path := filepath.Join(dir, name)
		title, ok, err := profileTitle(path)
		if err != nil {
			log.Printf("skipping profile %s: %v", path, err)
			continue
		}
		if !ok {
			continue
		}
		children = append(children, &configtree.Node{
			Label:   title,
			Icon:    menuIcon,
			Command: command,
			Args:    []string{"-c", path},
		})
	}
	if len(children) == 0 {
		return nil, nil
	}
	logging.Debugf("discovered %d profiles in %s", len(children), dir)
	return &configtree.Node{Label: label, Icon: menuIcon, Children: children}, nil
}

// profileTitle returns the display name of a profile and whether the file has
// a [remmina] section at all.
func profileTitle(path string) (string, bool, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return "", false, err
	}
	sec, err := cfg.GetSection(section)
	if err != nil {
		return "", false, nil
	}
	for _, key := range []string{"name", "server"} {
		if v := strings.TrimSpace(sec.Key(key).String()); v != "" {
			return v, true, nil
		}
	}
	return strings.TrimSuffix(filepath.Base(path), Extension), true, nil
}

// Source binds Scan to dir so it can be rescanned on every menu refresh.
func Source(dir string, opts Options) func() (*configtree.Node, error) {
	return func() (*configtree.Node, error) {
		return Scan(dir, opts)
	}
}
