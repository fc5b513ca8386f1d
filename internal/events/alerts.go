package events

import "fmt"

// AlertType identifies which rule produced an alert.
type AlertType string

const (
	AlertBossAppeared AlertType = "BOSS_APPEARED"
	AlertBossDefeated AlertType = "BOSS_DEFEATED"
	AlertPlayerDied   AlertType = "PLAYER_DIED"
	AlertJackpotLoot  AlertType = "JACKPOT_LOOT"
	AlertLowHP        AlertType = "LOW_HP"
)

// Alert is a derived notification. Only the fields relevant to Type are set;
// AlertID and EventTS are assigned when the alert is emitted.
type Alert struct {
	AlertID   string    `json:"alert_id,omitempty"`
	Type      AlertType `json:"type"`
	RunID     string    `json:"run_id"`
	BossName  string    `json:"boss_name,omitempty"`
	Room      *int      `json:"room,omitempty"`
	Cause     string    `json:"cause,omitempty"`
	GoldFound int       `json:"gold_found,omitempty"`
	HP        *int      `json:"hp,omitempty"`
	EventTS   int64     `json:"event_ts,omitempty"`
}

// Message renders the alert as a single human-readable line.
func (a Alert) Message() string {
	switch a.Type {
	case AlertBossAppeared:
		room := "None"
		if a.Room != nil {
			room = fmt.Sprint(*a.Room)
		}
		return fmt.Sprintf("[ALERT] %s: Boss appeared - %s (room %s)", a.RunID, a.BossName, room)
	case AlertBossDefeated:
		return fmt.Sprintf("[ALERT] %s: Boss defeated. Run success", a.RunID)
	case AlertPlayerDied:
		return fmt.Sprintf("[ALERT] %s: Player died (cause: %s)", a.RunID, a.Cause)
	case AlertJackpotLoot:
		return fmt.Sprintf("[ALERT] %s: Jackpot loot found (+%d gold)", a.RunID, a.GoldFound)
	case AlertLowHP:
		hp := 0
		if a.HP != nil {
			hp = *a.HP
		}
		return fmt.Sprintf("[ALERT] %s: Low HP %d%%", a.RunID, hp)
	default:
		return fmt.Sprintf("[ALERT] %s: %s", a.RunID, a.Type)
	}
}

// Summary is the rolling per-message status record for a run.
type Summary struct {
	RunID      string `json:"run_id"`
	EventKind  string `json:"event_kind"`
	RoomsSeen  int    `json:"rooms_seen"`
	HP         int    `json:"hp"`
	Gold       int    `json:"gold"`
	XP         int    `json:"xp"`
	AlertCount int    `json:"alert_count"`
}

// NewSummary builds the summary for a run after an event has been applied.
func NewSummary(runID, eventKind string, st RunState) Summary {
	return Summary{
		RunID:      runID,
		EventKind:  eventKind,
		RoomsSeen:  st.RoomsSeen,
		HP:         st.HP,
		Gold:       st.Gold,
		XP:         st.XP,
		AlertCount: st.AlertCount,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("[%s] event:%s room:%d hp:%d%% gold:%d xp:%d alerts:%d",
		s.RunID, s.EventKind, s.RoomsSeen, s.HP, s.Gold, s.XP, s.AlertCount)
}
