package parser

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SubagentFile is a sub-agent transcript stored beside its session. Newer
// Claude Code versions write sub-agents to
// {project}/{session}/subagents/agent-{id}.jsonl instead of inlining them as
// sidechain records.
type SubagentFile struct {
	AgentID string
	Path    string
}

// SubagentFiles lists the sub-agent transcripts of the session log at
// sessionPath in name order. Empty files, context-compaction agents and
// warmup agents are skipped. A missing directory is not an error.
func SubagentFiles(sessionPath string) ([]SubagentFile, error) {
	dir := filepath.Join(
		filepath.Dir(sessionPath),
		strings.TrimSuffix(filepath.Base(sessionPath), ".jsonl"),
		"subagents",
	)
	des, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []SubagentFile
	for _, de := range des {
		name := de.Name()
		if de.IsDir() || !strings.HasPrefix(name, "agent-") || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		id := strings.TrimSuffix(strings.TrimPrefix(name, "agent-"), ".jsonl")
		if strings.HasPrefix(id, "acompact") {
			continue
		}
		if info, err := de.Info(); err != nil || info.Size() == 0 {
			continue
		}
		path := filepath.Join(dir, name)
		if isWarmupAgent(path) {
			continue
		}
		out = append(out, SubagentFile{AgentID: id, Path: path})
	}
	return out, nil
}

// isWarmupAgent reports whether the first user record of the file is the
// literal string "Warmup" that Claude Code sends to pre-spawn agents.
func isWarmupAgent(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	lr := newLineReader(f, 1)
	for {
		line, ok := lr.next()
		if !ok || line.oversized {
			return false
		}
		var rec struct {
			Type    string `json:"type"`
			Message struct {
				Content json.RawMessage `json:"content"`
			} `json:"message"`
		}
		if json.Unmarshal(line.data, &rec) != nil || rec.Type != "user" {
			continue
		}
		var s string
		return json.Unmarshal(rec.Message.Content, &s) == nil && s == "Warmup"
	}
}

// ReadSubagentFile parses a sub-agent transcript. Its records are tagged
// with the file's agent id and marked as sidechain so they route to the
// sub-agent's conversation even when the file omits agentId.
func ReadSubagentFile(sf SubagentFile) ([]ConversationEntry, Position, error) {
	entries, pos, err := ReadFile(sf.Path)
	MarkSubagent(entries, sf.AgentID)
	return entries, pos, err
}

// MarkSubagent tags valid records read from a sub-agent file as sidechain
// records of agentID, keeping an agentId the record already carries.
func MarkSubagent(entries []ConversationEntry, agentID string) {
	for i := range entries {
		if entries[i].IsMalformed() {
			continue
		}
		entries[i].Entry.IsSidechain = true
		if entries[i].Entry.AgentID == "" {
			entries[i].Entry.AgentID = agentID
		}
	}
}
