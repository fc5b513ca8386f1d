package events

import (
	"encoding/json"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{"MOVE", KindMove},
		{"ENCOUNTER", KindEncounter},
		{"LOOT", KindLoot},
		{"TRAP", KindTrap},
		{"BOSS_INTRO", KindBossIntro},
		{"BOSS_DEFEATED", KindBossDefeated},
		{"DEATH", KindDeath},
		{"SHOP", KindUnknown},
		{"move", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseKind(tt.raw); got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEvent_Name(t *testing.T) {
	ev := &Event{Kind: KindUnknown, RawKind: "SHOP"}
	if got := ev.Name(); got != "SHOP" {
		t.Errorf("Name() = %q, want SHOP", got)
	}
	ev = &Event{Kind: KindUnknown}
	if got := ev.Name(); got != "UNKNOWN" {
		t.Errorf("Name() = %q, want UNKNOWN", got)
	}
}

func TestEvent_LookupString(t *testing.T) {
	tests := []struct {
		name    string
		details map[string]any
		fields  map[string]any
		want    string
	}{
		{"nested wins", map[string]any{"boss": "Lich"}, map[string]any{"boss": "Dragon"}, "Lich"},
		{"flat fallback", nil, map[string]any{"boss": "Dragon"}, "Dragon"},
		{"empty nested falls through", map[string]any{"boss": ""}, map[string]any{"boss": "Dragon"}, "Dragon"},
		{"default", map[string]any{}, map[string]any{}, "???"},
		{"number stringified", map[string]any{"boss": json.Number("7")}, nil, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := &Event{Details: tt.details, Fields: tt.fields}
			if got := ev.LookupString("boss", "???"); got != tt.want {
				t.Errorf("LookupString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   int
		wantOK bool
	}{
		{"json integer", json.Number("84"), 84, true},
		{"json negative", json.Number("-3"), -3, true},
		{"json integral float", json.Number("84.0"), 84, true},
		{"json fraction", json.Number("84.5"), 0, false},
		{"float64 integral", float64(12), 12, true},
		{"float64 fraction", 1.5, 0, false},
		{"int", 7, 7, true},
		{"string", "84", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("AsInt(%v) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestEvent_DetailAndFieldInt(t *testing.T) {
	ev := &Event{
		Details: map[string]any{"gold_found": json.Number("150")},
		Fields:  map[string]any{"gold_found": json.Number("5")},
	}
	if n, ok := ev.DetailInt("gold_found"); !ok || n != 150 {
		t.Errorf("DetailInt() = (%d, %v), want (150, true)", n, ok)
	}
	if n, ok := ev.FieldInt("gold_found"); !ok || n != 5 {
		t.Errorf("FieldInt() = (%d, %v), want (5, true)", n, ok)
	}
	if _, ok := ev.DetailInt("gold"); ok {
		t.Error("DetailInt(gold) should report missing")
	}
}

func TestNewRunState(t *testing.T) {
	st := NewRunState()
	want := RunState{HP: 100}
	if st != want {
		t.Errorf("NewRunState() = %+v, want %+v", st, want)
	}
}

func TestAlert_Message(t *testing.T) {
	tests := []struct {
		name  string
		alert Alert
		want  string
	}{
		{
			"boss appeared",
			Alert{Type: AlertBossAppeared, RunID: "run-1", BossName: "Lich", Room: IntPtr(5)},
			"[ALERT] run-1: Boss appeared - Lich (room 5)",
		},
		{
			"boss appeared without room",
			Alert{Type: AlertBossAppeared, RunID: "run-1", BossName: "???"},
			"[ALERT] run-1: Boss appeared - ??? (room None)",
		},
		{
			"boss defeated",
			Alert{Type: AlertBossDefeated, RunID: "run-1"},
			"[ALERT] run-1: Boss defeated. Run success",
		},
		{
			"player died",
			Alert{Type: AlertPlayerDied, RunID: "unknown", Cause: "lava"},
			"[ALERT] unknown: Player died (cause: lava)",
		},
		{
			"jackpot",
			Alert{Type: AlertJackpotLoot, RunID: "run-2", GoldFound: 150},
			"[ALERT] run-2: Jackpot loot found (+150 gold)",
		},
		{
			"low hp",
			Alert{Type: AlertLowHP, RunID: "run-3", HP: IntPtr(20)},
			"[ALERT] run-3: Low HP 20%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.alert.Message(); got != tt.want {
				t.Errorf("Message() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAlert_JSONOmitsIrrelevantFields(t *testing.T) {
	got, err := json.Marshal(Alert{Type: AlertLowHP, RunID: "run-3", HP: IntPtr(0)})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"type":"LOW_HP","run_id":"run-3","hp":0}`
	if string(got) != want {
		t.Errorf("json.Marshal() = %s, want %s", got, want)
	}
}

func TestSummary_String(t *testing.T) {
	st := RunState{HP: 84, Gold: 10, XP: 3, RoomsSeen: 3, AlertCount: 1}
	got := NewSummary("run-1", "ENCOUNTER", st).String()
	want := "[run-1] event:ENCOUNTER room:3 hp:84% gold:10 xp:3 alerts:1"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
