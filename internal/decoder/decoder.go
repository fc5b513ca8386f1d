// Package decoder turns raw dungeon message payloads into typed events.
package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/afikmenashe/dungeon-monitor/internal/events"
)

var (
	// ErrNotJSON means the payload is not a syntactically valid JSON document.
	ErrNotJSON = errors.New("payload is not JSON")
	// ErrNotAnEvent means the payload is JSON but not an object with an "event" field.
	ErrNotAnEvent = errors.New("payload is not a dungeon event")
	// ErrTypeMismatch means a known field is present with the wrong type.
	ErrTypeMismatch = errors.New("field has unexpected type")
)

// DecodeError describes why a payload was rejected. It unwraps to one of the sentinel errors.
type DecodeError struct {
	Kind  error
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Field)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Kind }

// Reason returns a short label for err suitable for metrics and logs.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrNotJSON):
		return "not_json"
	case errors.Is(err, ErrNotAnEvent):
		return "not_an_event"
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	default:
		return "unknown"
	}
}

// integer fields merged into run state
var statFields = []string{"room", "hp", "gold", "xp"}

// Text converts a raw payload to text, replacing invalid UTF-8 with U+FFFD.
func Text(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "\uFFFD")
}

// Decode parses one message payload.
func Decode(raw []byte) (*events.Event, error) {
	text := Text(raw)

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &DecodeError{Kind: ErrNotJSON, Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Kind: ErrNotJSON, Err: errors.New("trailing data after document")}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &DecodeError{Kind: ErrNotAnEvent, Err: fmt.Errorf("top-level %s", jsonType(doc))}
	}
	rawEvent, ok := obj["event"]
	if !ok {
		return nil, &DecodeError{Kind: ErrNotAnEvent, Field: "event"}
	}

	name, ok := rawEvent.(string)
	if !ok {
		return nil, mismatch("event", rawEvent)
	}

	ev := &events.Event{
		RunID:   events.UnknownRunID,
		Kind:    events.ParseKind(name),
		RawKind: name,
		Fields:  obj,
	}

	if v, ok := obj["run_id"]; ok {
		switch t := v.(type) {
		case string:
			ev.RunID = t
		case json.Number:
			ev.RunID = t.String()
		default:
			return nil, mismatch("run_id", v)
		}
	}

	if ts, ok := obj["ts"].(string); ok {
		ev.TS = ts
	}

	for _, field := range statFields {
		v, present := obj[field]
		if !present {
			continue
		}
		n, ok := events.AsInt(v)
		if !ok {
			return nil, mismatch(field, v)
		}
		switch field {
		case "room":
			ev.Room = events.IntPtr(n)
		case "hp":
			ev.HP = events.IntPtr(n)
		case "gold":
			ev.Gold = events.IntPtr(n)
		case "xp":
			ev.XP = events.IntPtr(n)
		}
	}

	if v, present := obj["details"]; present {
		details, ok := v.(map[string]any)
		if !ok {
			return nil, mismatch("details", v)
		}
		ev.Details = details
	}

	return ev, nil
}

func mismatch(field string, v any) error {
	return &DecodeError{
		Kind:  ErrTypeMismatch,
		Field: field,
		Err:   fmt.Errorf("got %s", jsonType(v)),
	}
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Preview returns a bounded, printable excerpt of a payload for log lines.
func Preview(raw []byte) string {
	const limit = 200
	raw = bytes.TrimSpace(raw)
	runes := []rune(Text(raw))
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return string(runes)
}
