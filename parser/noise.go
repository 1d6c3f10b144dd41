package parser

import "strings"

// noiseEntryTypes are record types that never produce visible output.
var noiseEntryTypes = map[string]bool{
	"file-history-snapshot": true,
	"queue-operation":       true,
	"progress":              true,
}

var (
	emptyStdout = "<local-command-stdout></local-command-stdout>"
	emptyStderr = "<local-command-stderr></local-command-stderr>"
)

// hardNoiseTags are tags whose sole presence makes the whole message noise.
var hardNoiseTags = []string{
	"<local-command-caveat>",
	"<system-reminder>",
}

// IsNoise reports whether a record carries nothing worth rendering. The view
// keeps noise records in place but gives them zero height.
func IsNoise(e *LogEntry) bool {
	if noiseEntryTypes[e.Type] {
		return true
	}
	if e.Type == "assistant" && e.Model == "<synthetic>" {
		return true
	}
	if len(e.Blocks) == 0 {
		return true
	}
	if e.Type != "user" {
		return false
	}

	// A user record is noise when every block is an empty or pure-noise text.
	for _, b := range e.Blocks {
		if b.Type != BlockText {
			return false
		}
		trimmed := strings.TrimSpace(b.Text)
		if trimmed == "" || trimmed == emptyStdout || trimmed == emptyStderr {
			continue
		}
		if isWrappedInNoiseTag(trimmed) {
			continue
		}
		return false
	}
	return true
}

func isWrappedInNoiseTag(s string) bool {
	for _, tag := range hardNoiseTags {
		closeTag := strings.Replace(tag, "<", "</", 1)
		if strings.HasPrefix(s, tag) && strings.HasSuffix(s, closeTag) {
			return true
		}
	}
	return false
}
