package parser

import (
	"encoding/json"
	"regexp"
)

const (
	localCommandStdoutTag = "<local-command-stdout>"
	localCommandStderrTag = "<local-command-stderr>"
)

// Command extraction regexes, used by SanitizeContent.
var (
	reCommandName = regexp.MustCompile(`<command-name>/([^<]+)</command-name>`)
	reCommandArgs = regexp.MustCompile(`<command-args>([^<]*)</command-args>`)
	reStdout      = regexp.MustCompile(`(?is)<local-command-stdout>(.*?)</local-command-stdout>`)
	reStderr      = regexp.MustCompile(`(?is)<local-command-stderr>(.*?)</local-command-stderr>`)
	reBashInput   = regexp.MustCompile(`(?is)<bash-input>(.*?)</bash-input>`)
)

// Tags whose blocks are system-generated and never shown.
var noiseTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<local-command-caveat>.*?</local-command-caveat>`),
	regexp.MustCompile(`(?is)<system-reminder>.*?</system-reminder>`),
}

// Command tags, removed after the display form is extracted.
var commandTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<command-name>.*?</command-name>`),
	regexp.MustCompile(`(?is)<command-message>.*?</command-message>`),
	regexp.MustCompile(`(?is)<command-args>.*?</command-args>`),
}

// contentBlockJSON is the common shape for partially unmarshaling content
// blocks. Unused fields unmarshal to zero values.
type contentBlockJSON struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Text      string          `json:"text"`
	Thinking  string          `json:"thinking"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

// textBlockJSON is a minimal block for when only type and text are needed.
type textBlockJSON struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
