package parser

import (
	"bufio"
	"bytes"
	"io"
)

const (
	// initialBufSize is the starting buffer capacity for the line reader.
	initialBufSize = 64 * 1024

	// maxLineSize is the maximum allowed line length. 64 MiB accommodates
	// even the largest Claude API responses.
	maxLineSize = 64 * 1024 * 1024
)

// rawLine is one physical line of input.
type rawLine struct {
	data      []byte
	number    int   // 1-based
	start     int64 // byte offset of the line within the reader
	oversized bool  // data is empty; the line exceeded the limit
	partial   bool  // the input ended before a newline
}

// lineReader reads JSONL input line by line. Oversized lines are consumed
// and reported with oversized set instead of aborting the read. Blank lines
// are skipped but still counted, so line numbers match the file.
type lineReader struct {
	r         *bufio.Reader
	maxLen    int // 0 means use maxLineSize
	buf       []byte
	err       error
	bytesRead int64
	lines     int
}

func newLineReader(r io.Reader, firstLine int) *lineReader {
	return &lineReader{
		r:     bufio.NewReaderSize(r, initialBufSize),
		buf:   make([]byte, 0, initialBufSize),
		lines: firstLine - 1,
	}
}

// next returns the next non-blank line, or false at EOF or I/O error.
// Call Err afterwards to tell the two apart.
func (lr *lineReader) next() (rawLine, bool) {
	for {
		start := lr.bytesRead
		data, oversized, partial, err := lr.readLine()
		if err != nil {
			if err != io.EOF {
				lr.err = err
			}
			return rawLine{}, false
		}
		lr.lines++
		if oversized {
			return rawLine{number: lr.lines, start: start, oversized: true, partial: partial}, true
		}
		if len(data) == 0 {
			continue
		}
		// Copy out: buf is reused by the next call.
		out := make([]byte, len(data))
		copy(out, data)
		return rawLine{data: out, number: lr.lines, start: start, partial: partial}, true
	}
}

// Err returns the first non-EOF I/O error encountered, or nil.
func (lr *lineReader) Err() error {
	return lr.err
}

// BytesRead returns the exact number of bytes consumed so far, including
// skipped lines and newline delimiters.
func (lr *lineReader) BytesRead() int64 {
	return lr.bytesRead
}

// Lines returns the number of the last line consumed.
func (lr *lineReader) Lines() int {
	return lr.lines
}

// readLine reads one full line without its line ending. ReadSlice hands back
// buffer-sized chunks with ErrBufferFull; once the accumulated size passes
// the limit the rest of the line is drained without buffering.
func (lr *lineReader) readLine() (data []byte, oversized, partial bool, err error) {
	lr.buf = lr.buf[:0]

	limit := maxLineSize
	if lr.maxLen > 0 {
		limit = lr.maxLen
	}

	var n int
	for {
		chunk, rerr := lr.r.ReadSlice('\n')
		n += len(chunk)
		lr.bytesRead += int64(len(chunk))

		switch {
		case rerr == bufio.ErrBufferFull:
		case rerr == io.EOF:
			if n == 0 {
				return nil, false, false, io.EOF
			}
			partial = true
		case rerr != nil:
			return nil, false, false, rerr
		}

		if !oversized {
			lr.buf = append(lr.buf, chunk...)
			if len(bytes.TrimRight(lr.buf, "\r\n")) > limit {
				oversized = true
				lr.buf = lr.buf[:0]
			}
		}

		if rerr != bufio.ErrBufferFull {
			if oversized {
				return nil, true, partial, nil
			}
			return bytes.TrimRight(lr.buf, "\r\n"), false, partial, nil
		}
	}
}
