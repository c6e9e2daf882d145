/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// EventKind distinguishes pointer and keyboard input.
type EventKind int

const (
	PointerDown EventKind = iota + 1
	PointerMove
	PointerUp
	KeyPress
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case KeyPress:
		return "key"
	}
	return "unknown"
}

// Key names understood by the controller.
const (
	KeyArrowUp    = "ArrowUp"
	KeyArrowDown  = "ArrowDown"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
	KeyDelete     = "Delete"
	KeyBackspace  = "Backspace"
	KeyEscape     = "Escape"
)

// Event is one abstract input event in canvas coordinates.
type Event struct {
	Kind EventKind
	X, Y int
	Key  string
}

func (e Event) String() string {
	if e.Kind == KeyPress {
		return "key " + e.Key
	}
	return fmt.Sprintf("%s %d %d", e.Kind, e.X, e.Y)
}

// Down, Move, Up and Key build events.
func Down(x, y int) Event   { return Event{Kind: PointerDown, X: x, Y: y} }
func Move(x, y int) Event   { return Event{Kind: PointerMove, X: x, Y: y} }
func Up(x, y int) Event     { return Event{Kind: PointerUp, X: x, Y: y} }
func Key(name string) Event { return Event{Kind: KeyPress, Key: name} }

// InputSource delivers events one at a time. It returns io.EOF when exhausted.
type InputSource interface {
	Next(ctx context.Context) (Event, error)
}

var keyAliases = map[string]string{
	"arrowup": KeyArrowUp, "up": KeyArrowUp,
	"arrowdown": KeyArrowDown, "down": KeyArrowDown,
	"arrowleft": KeyArrowLeft, "left": KeyArrowLeft,
	"arrowright": KeyArrowRight, "right": KeyArrowRight,
	"delete": KeyDelete, "del": KeyDelete,
	"backspace": KeyBackspace,
	"escape": KeyEscape, "esc": KeyEscape,
}

// ParseKey normalizes a key name; unknown names are returned unchanged.
func ParseKey(s string) string {
	if k, ok := keyAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k
	}
	return strings.TrimSpace(s)
}

// ParseEvent reads the text form: "down X Y", "move X Y", "up X Y" or "key NAME".
func ParseEvent(line string) (Event, error) {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Event{}, fmt.Errorf("empty event")
	}
	verb := strings.ToLower(f[0])
	if verb == "key" {
		if len(f) != 2 {
			return Event{}, fmt.Errorf("usage: key NAME")
		}
		return Key(ParseKey(f[1])), nil
	}
	var kind EventKind
	switch verb {
	case "down":
		kind = PointerDown
	case "move":
		kind = PointerMove
	case "up":
		kind = PointerUp
	default:
		return Event{}, fmt.Errorf("unknown event %q", f[0])
	}
	if len(f) != 3 {
		return Event{}, fmt.Errorf("usage: %s X Y", verb)
	}
	x, err := strconv.Atoi(f[1])
	if err != nil {
		return Event{}, fmt.Errorf("bad x %q: %w", f[1], err)
	}
	y, err := strconv.Atoi(f[2])
	if err != nil {
		return Event{}, fmt.Errorf("bad y %q: %w", f[2], err)
	}
	return Event{Kind: kind, X: x, Y: y}, nil
}

// LineSource reads one event per line. Blank lines and lines starting with '#' are skipped.
type LineSource struct {
	sc   *bufio.Scanner
	line int
}

func NewLineSource(r io.Reader) *LineSource { return &LineSource{sc: bufio.NewScanner(r)} }

func (s *LineSource) Next(ctx context.Context) (Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}
		if !s.sc.Scan() {
			if err := s.sc.Err(); err != nil {
				return Event{}, err
			}
			return Event{}, io.EOF
		}
		s.line++
		text := strings.TrimSpace(s.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		ev, err := ParseEvent(text)
		if err != nil {
			return Event{}, fmt.Errorf("line %d: %w", s.line, err)
		}
		return ev, nil
	}
}

// SliceSource replays a fixed list of events.
type SliceSource struct {
	events []Event
}

func NewSliceSource(events ...Event) *SliceSource { return &SliceSource{events: events} }

func (s *SliceSource) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	if len(s.events) == 0 {
		return Event{}, io.EOF
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}
