// Package sse parses Server-Sent Events from a Horizon event stream.
//
// Horizon frames look like:
//
//	retry: 1000
//	event: open
//	data: "hello"
//
//	id: 12884905984
//	data: {"id":"...","paging_token":"12884905984"}
//
// Comment lines (starting with ':') are ignored.
package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Event is one dispatched SSE frame.
type Event struct {
	ID    string
	Event string
	Data  string
	Retry time.Duration
}

// Parser parses SSE events from an io.Reader.
type Parser struct {
	reader  *bufio.Reader
	current struct {
		id        string
		eventType string
		dataLines []string
		retry     time.Duration
		touched   bool
	}
}

// NewParser creates a new SSE parser from an io.Reader.
func NewParser(r io.Reader) *Parser {
	return &Parser{
		reader: bufio.NewReader(r),
	}
}

// Next returns the next SSE event.
// Returns io.EOF when the stream is exhausted. An event not terminated by a
// blank line before EOF is dropped.
func (p *Parser) Next() (Event, error) {
	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			p.flush()

			return Event{}, err
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			if event, ok := p.flush(); ok {
				return event, nil
			}

			continue
		}

		p.field(line)
	}
}

func (p *Parser) field(line string) {
	if strings.HasPrefix(line, ":") {
		return
	}

	name, value, found := strings.Cut(line, ":")
	if found {
		value = strings.TrimPrefix(value, " ")
	}

	switch name {
	case "id":
		p.current.id = value
		p.current.touched = true
	case "event":
		p.current.eventType = value
		p.current.touched = true
	case "data":
		p.current.dataLines = append(p.current.dataLines, value)
		p.current.touched = true
	case "retry":
		ms, err := strconv.Atoi(value)
		if err == nil && ms >= 0 {
			p.current.retry = time.Duration(ms) * time.Millisecond
			p.current.touched = true
		}
	}
}

// flush returns the buffered event, if any, and resets state.
func (p *Parser) flush() (Event, bool) {
	if !p.current.touched {
		return Event{}, false
	}

	event := Event{
		ID:    p.current.id,
		Event: p.current.eventType,
		Data:  strings.Join(p.current.dataLines, "\n"),
		Retry: p.current.retry,
	}

	p.current.id = ""
	p.current.eventType = ""
	p.current.dataLines = nil
	p.current.retry = 0
	p.current.touched = false

	return event, true
}
