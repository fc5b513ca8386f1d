// Package events defines the dungeon event, run state and alert structures.
package events

import (
	"encoding/json"
	"fmt"
)

// UnknownRunID is the bucket used for events that carry no run_id.
const UnknownRunID = "unknown"

// Kind is the event vocabulary emitted by the dungeon producer.
type Kind string

const (
	KindMove         Kind = "MOVE"
	KindEncounter    Kind = "ENCOUNTER"
	KindLoot         Kind = "LOOT"
	KindTrap         Kind = "TRAP"
	KindBossIntro    Kind = "BOSS_INTRO"
	KindBossDefeated Kind = "BOSS_DEFEATED"
	KindDeath        Kind = "DEATH"
	// KindUnknown covers any event name outside the known vocabulary.
	KindUnknown Kind = "UNKNOWN"
)

var knownKinds = map[Kind]struct{}{
	KindMove:         {},
	KindEncounter:    {},
	KindLoot:         {},
	KindTrap:         {},
	KindBossIntro:    {},
	KindBossDefeated: {},
	KindDeath:        {},
}

// ParseKind maps a raw event name to a known Kind, or KindUnknown.
func ParseKind(raw string) Kind {
	k := Kind(raw)
	if _, ok := knownKinds[k]; ok {
		return k
	}
	return KindUnknown
}

// Event is one decoded dungeon message.
// Optional integer fields are nil when the message did not carry them.
type Event struct {
	RunID   string
	Kind    Kind
	RawKind string // event name exactly as received
	TS      string

	Room *int
	HP   *int
	Gold *int
	XP   *int

	// Details holds the nested "details" object, Fields the whole top-level object.
	Details map[string]any
	Fields  map[string]any
}

// Name returns the event name to report: the raw name if one was sent, otherwise the Kind.
func (e *Event) Name() string {
	if e.RawKind != "" {
		return e.RawKind
	}
	return string(e.Kind)
}

// LookupString resolves field as text. An empty nested string falls through to the
// top-level value; def is returned when neither tier has a usable value.
func (e *Event) LookupString(field, def string) string {
	if s := asString(e.Details[field]); s != "" {
		return s
	}
	if s := asString(e.Fields[field]); s != "" {
		return s
	}
	return def
}

// DetailInt looks up field in details only.
func (e *Event) DetailInt(field string) (int, bool) {
	return AsInt(e.Details[field])
}

// FieldInt looks up field in the top-level object only.
func (e *Event) FieldInt(field string) (int, bool) {
	return AsInt(e.Fields[field])
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}

// AsInt converts a decoded JSON value to int. Only integral numbers convert.
func AsInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		f, err := t.Float64()
		if err != nil || f != float64(int64(f)) {
			return 0, false
		}
		return int(f), true
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	default:
		return 0, false
	}
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
