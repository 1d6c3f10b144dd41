package parser

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ProjectsDir returns ~/.claude/projects.
func ProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".claude", "projects"), nil
}

// DiscoverLatestSession finds the most recently modified top-level session
// log under root. Sub-agent files inside session subdirectories and legacy
// agent_* files are excluded. Returns os.ErrNotExist when nothing matches.
func DiscoverLatestSession(root string) (string, error) {
	var bestPath string
	var bestTime int64

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Skip directories we can't read.
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}

		// Expected: project/session.jsonl. Sub-agent logs sit one level
		// deeper (project/session/agent_x.jsonl) or carry an agent_ prefix.
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if len(strings.Split(rel, string(filepath.Separator))) > 2 {
			return nil
		}
		if strings.HasPrefix(d.Name(), "agent_") || strings.HasPrefix(d.Name(), "agent-") {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if mt := info.ModTime().UnixNano(); mt > bestTime {
			bestTime = mt
			bestPath = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if bestPath == "" {
		return "", os.ErrNotExist
	}
	return bestPath, nil
}
