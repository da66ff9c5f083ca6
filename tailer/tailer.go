package tailer

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/logly/logly/model"
)

// Source is one configured log file to tail.
type Source struct {
	Name    string
	Path    string
	Enabled bool
}

// cursor tracks how far into a file the tailer has read. It lives only
// in memory, like log_parser.py's _file_positions dict (no durable
// checkpoint, no WAL-style replay). New starts every cursor at offset 0,
// so after a restart the first Poll reads each file from its beginning
// again and returns lines that an earlier process already returned.
type cursor struct {
	pos int64
}

// Tailer reads new lines from N configured sources since its last read,
// detecting rotation and dispatching each line to its source's parser.
type Tailer struct {
	sources []Source
	cursors map[string]*cursor
}

// New builds a Tailer for the given sources.
func New(sources []Source) *Tailer {
	t := &Tailer{sources: sources, cursors: make(map[string]*cursor)}
	for _, src := range sources {
		t.cursors[src.Name] = &cursor{}
	}
	return t
}

// Poll reads every enabled source's new lines since the last Poll call
// and returns the parsed events across all of them, in source-list
// order. A source whose file doesn't exist yet is skipped, not an
// error — log files routinely don't exist until their service starts.
func (t *Tailer) Poll() ([]model.LogEvent, error) {
	var events []model.LogEvent
	for _, src := range t.sources {
		if !src.Enabled {
			continue
		}
		evs, err := t.pollOne(src)
		if err != nil {
			return events, fmt.Errorf("tail %s (%s): %w", src.Name, src.Path, err)
		}
		events = append(events, evs...)
	}
	return events, nil
}

func (t *Tailer) pollOne(src Source) ([]model.LogEvent, error) {
	info, err := os.Stat(src.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cur := t.cursors[src.Name]
	if info.Size() < cur.pos {
		cur.pos = 0 // rotated — restart from the top of the new file
	}

	f, err := os.Open(src.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(cur.pos, io.SeekStart); err != nil {
		return nil, err
	}

	parse := ParserFor(src.Name)
	var events []model.LogEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if e := parse(line); e != nil {
			e.Source = src.Name
			events = append(events, *e)
		}
	}
	if err := scanner.Err(); err != nil {
		return events, err
	}

	// Commit the cursor only after a fully successful read, at the offset
	// the scan stopped at: the scanner read to EOF, so this covers every
	// line handed to the parser, including lines appended after the Stat.
	end, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return events, err
	}
	cur.pos = end
	return events, nil
}
