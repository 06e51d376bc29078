// Package session records and replays the host events of a camera screen.
//
// A session log is JSON lines, one Event per line:
//
//	{"kind":"ready","at_ms":0,"ready":true}
//	{"kind":"touch_start","at_ms":10,"touches":[{"x":0,"y":0},{"x":100,"y":0}]}
//	{"kind":"touch_move","at_ms":26,"touches":[{"x":0,"y":0},{"x":120,"y":0}]}
//	{"kind":"scan","at_ms":900,"scan":{"type":"ean13","data":"4006381333931"}}
//	{"kind":"layout","target":"viewfinder","rect":{"x":40,"y":200,"width":300,"height":300}}
package session

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/frame"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/gesture"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind names a host callback.
type Kind string

const (
	KindTouchStart Kind = "touch_start"
	KindTouchMove  Kind = "touch_move"
	KindTouchEnd   Kind = "touch_end"
	KindScan       Kind = "scan"
	KindLayout     Kind = "layout"
	KindReady      Kind = "ready"
	KindMode       Kind = "mode"
	KindCapture    Kind = "capture"
)

// Layout targets.
const (
	TargetViewfinder = "viewfinder"
	TargetSurface    = "surface"
)

// ErrInvalidEvent is wrapped by every Event validation failure.
var ErrInvalidEvent = errors.New("invalid event")

// maxLineSize bounds a single log line.
const maxLineSize = 1 << 20

// Event is one host callback. Only the fields relevant to Kind are set.
type Event struct {
	Kind    Kind            `json:"kind"`
	AtMs    int64           `json:"at_ms"`
	Touches []gesture.Point `json:"touches,omitempty"`
	Scan    *scan.Event     `json:"scan,omitempty"`
	Target  string          `json:"target,omitempty"`
	Rect    *frame.Rect     `json:"rect,omitempty"`
	Ready   *bool           `json:"ready,omitempty"`
	Mode    string          `json:"mode,omitempty"`
}

// Validate checks that the fields Kind needs are present.
func (e Event) Validate() error {
	switch e.Kind {
	case KindTouchStart, KindTouchMove, KindTouchEnd, KindCapture:
		return nil
	case KindScan:
		if e.Scan == nil {
			return fmt.Errorf("%w: scan event without scan payload", ErrInvalidEvent)
		}
	case KindLayout:
		if e.Rect == nil {
			return fmt.Errorf("%w: layout event without rect", ErrInvalidEvent)
		}
		if e.Target != TargetViewfinder && e.Target != TargetSurface {
			return fmt.Errorf("%w: layout target %q", ErrInvalidEvent, e.Target)
		}
	case KindReady:
		if e.Ready == nil {
			return fmt.Errorf("%w: ready event without ready flag", ErrInvalidEvent)
		}
	case KindMode:
		if e.Mode == "" {
			return fmt.Errorf("%w: mode event without mode", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, e.Kind)
	}
	return nil
}

// Decode reads a JSON-lines session log. Blank lines are skipped.
func Decode(r io.Reader) ([]Event, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var events []Event
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var e Event
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading session log: %w", err)
	}
	return events, nil
}

// DecodeEvent parses a single event, as sent over the wire.
func DecodeEvent(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Encode writes events as JSON lines.
func Encode(w io.Writer, events []Event) error {
	bw := bufio.NewWriter(w)
	for i, e := range events {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		bw.Write(b)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
