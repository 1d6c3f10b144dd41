package parser_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kylesnowschwartz/claude-logview/parser"
)

const (
	userLine      = `{"uuid":"u1","sessionId":"s1","type":"user","message":{"role":"user","content":"hello"}}`
	assistantLine = `{"uuid":"a1","sessionId":"s1","type":"assistant","message":{"role":"assistant","content":[{"type":"text","text":"hi"}]}}`
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.jsonl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
}

func TestReadFile(t *testing.T) {
	path := writeLog(t, userLine+"\n\n{broken\n"+assistantLine+"\n")
	entries, pos, err := parser.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].ID() != "u1" || entries[2].ID() != "a1" {
		t.Errorf("IDs = %q, %q", entries[0].ID(), entries[2].ID())
	}
	if !entries[1].IsMalformed() {
		t.Error("entries[1] should be malformed")
	}
	if entries[1].LineNumber() != 3 || entries[2].LineNumber() != 4 {
		t.Errorf("line numbers = %d, %d, want 3, 4", entries[1].LineNumber(), entries[2].LineNumber())
	}
	if pos.Line != 4 {
		t.Errorf("pos.Line = %d, want 4", pos.Line)
	}
	info, _ := os.Stat(path)
	if pos.Offset != info.Size() {
		t.Errorf("pos.Offset = %d, want %d", pos.Offset, info.Size())
	}
}

func TestReadFile_Missing(t *testing.T) {
	_, _, err := parser.ReadFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestReadFrom_Incremental(t *testing.T) {
	path := writeLog(t, userLine+"\n")
	first, pos, err := parser.ReadFile(path)
	if err != nil || len(first) != 1 {
		t.Fatalf("initial read: %d entries, err %v", len(first), err)
	}

	appendLog(t, path, assistantLine+"\n")
	more, pos2, err := parser.ReadFrom(path, pos)
	if err != nil {
		t.Fatalf("ReadFrom() error: %v", err)
	}
	if len(more) != 1 || more[0].ID() != "a1" {
		t.Fatalf("ReadFrom() = %d entries, want only the appended one", len(more))
	}
	if more[0].LineNumber() != 2 {
		t.Errorf("LineNumber() = %d, want 2", more[0].LineNumber())
	}

	none, pos3, err := parser.ReadFrom(path, pos2)
	if err != nil || len(none) != 0 {
		t.Errorf("ReadFrom() at EOF = %d entries, err %v", len(none), err)
	}
	if pos3 != pos2 {
		t.Errorf("position moved at EOF: %+v -> %+v", pos2, pos3)
	}
}

func TestReadFrom_HoldsBackPartialLine(t *testing.T) {
	half := assistantLine[:30]
	path := writeLog(t, userLine+"\n"+half)

	entries, pos, err := parser.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1 (partial line held back)", len(entries))
	}
	if pos.Offset != int64(len(userLine)+1) || pos.Line != 1 {
		t.Errorf("pos = %+v, want offset %d line 1", pos, len(userLine)+1)
	}

	appendLog(t, path, assistantLine[30:]+"\n")
	rest, _, err := parser.ReadFrom(path, pos)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0].IsMalformed() || rest[0].ID() != "a1" {
		t.Fatalf("completed line not parsed: %+v", rest)
	}
	if rest[0].LineNumber() != 2 {
		t.Errorf("LineNumber() = %d, want 2", rest[0].LineNumber())
	}
}

func TestReadFile_CompleteLastLineWithoutNewline(t *testing.T) {
	path := writeLog(t, userLine+"\n"+assistantLine)
	entries, _, err := parser.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestStream(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		pw.Write([]byte(userLine + "\n"))
		pw.Write([]byte("garbage\n" + assistantLine))
		pw.Close()
	}()

	s := parser.NewStream(pr)
	var ids []string
	var malformed int
	for {
		ce, ok := s.Next()
		if !ok {
			break
		}
		if ce.IsMalformed() {
			malformed++
			continue
		}
		ids = append(ids, ce.ID())
	}
	if s.Err() != nil {
		t.Fatalf("Err() = %v", s.Err())
	}
	if strings.Join(ids, ",") != "u1,a1" {
		t.Errorf("ids = %v, want [u1 a1]", ids)
	}
	if malformed != 1 {
		t.Errorf("malformed = %d, want 1", malformed)
	}
}
