package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var errOversized = errors.New("line exceeds maximum size")

// Position marks how far a log file has been consumed: the byte offset and
// the number of the last line read.
type Position struct {
	Offset int64
	Line   int
}

// ReadFile parses every line of a JSONL log file.
func ReadFile(path string) ([]ConversationEntry, Position, error) {
	return ReadFrom(path, Position{})
}

// ReadFrom parses lines appended after pos. This is the building block for
// live tailing: the caller keeps the returned Position for the next call.
// A final line with no newline that does not parse yet is not consumed.
func ReadFrom(path string, pos Position) ([]ConversationEntry, Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pos, err
	}
	defer f.Close()

	if _, err := f.Seek(pos.Offset, io.SeekStart); err != nil {
		return nil, pos, fmt.Errorf("seek %s: %w", path, err)
	}

	lr := newLineReader(f, pos.Line+1)
	var entries []ConversationEntry
	var next Position
	held := false
	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		e := parseRawLine(line)
		if line.partial && e.IsMalformed() && !line.oversized {
			// The writer is mid-line. Leave it for the next read.
			next = Position{Offset: pos.Offset + line.start, Line: line.number - 1}
			held = true
			break
		}
		entries = append(entries, e)
	}

	if !held {
		next = Position{Offset: pos.Offset + lr.BytesRead(), Line: lr.Lines()}
	}
	if err := lr.Err(); err != nil {
		return entries, next, err
	}
	return entries, next, nil
}

// Stream parses entries from a reader that may still be growing, such as
// piped stdin. Not safe for concurrent use.
type Stream struct {
	lr *lineReader
}

// NewStream returns a Stream reading from r.
func NewStream(r io.Reader) *Stream {
	return &Stream{lr: newLineReader(r, 1)}
}

// Next blocks until the next entry is available. It returns false at EOF or
// on a read error; check Err afterwards.
func (s *Stream) Next() (ConversationEntry, bool) {
	line, ok := s.lr.next()
	if !ok {
		return ConversationEntry{}, false
	}
	return parseRawLine(line), true
}

// Err returns the first non-EOF read error.
func (s *Stream) Err() error {
	return s.lr.Err()
}

func parseRawLine(line rawLine) ConversationEntry {
	if line.oversized {
		return NewMalformed(MalformedEntry{LineNumber: line.number, Err: errOversized})
	}
	return ParseLine(line.data, line.number)
}
