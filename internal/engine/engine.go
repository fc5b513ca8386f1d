// Package engine applies the alert rules to a run's state.
package engine

import (
	"github.com/afikmenashe/dungeon-monitor/internal/events"
)

const (
	unknownBoss  = "???"
	unknownCause = "unknown"
)

// Evaluate merges ev into st and returns the updated state, the alerts that fired
// in rule order, and the rolling summary. It performs no I/O and does not retain st.
//
// Rules, in order:
//   - BOSS_INTRO on a run without a boss yet: BossAppeared
//   - BOSS_DEFEATED: BossDefeated (every time)
//   - DEATH: PlayerDied
//   - LOOT with an amount >= JackpotGold: JackpotLoot
//   - any event leaving HP <= LowHP: LowHP (every time, not only on the crossing)
func Evaluate(st events.RunState, ev *events.Event, th events.Thresholds) (events.RunState, []events.Alert, events.Summary) {
	st = merge(st, ev)

	var alerts []events.Alert
	fire := func(a events.Alert) {
		a.RunID = ev.RunID
		alerts = append(alerts, a)
		st.AlertCount++
	}

	switch ev.Kind {
	case events.KindBossIntro:
		if !st.BossSeen {
			st.BossSeen = true
			fire(events.Alert{
				Type:     events.AlertBossAppeared,
				BossName: ev.LookupString("boss", unknownBoss),
				Room:     copyInt(ev.Room),
			})
		}
	case events.KindBossDefeated:
		fire(events.Alert{Type: events.AlertBossDefeated})
	case events.KindDeath:
		fire(events.Alert{
			Type:  events.AlertPlayerDied,
			Cause: ev.LookupString("cause", unknownCause),
		})
	case events.KindLoot:
		if found := lootAmount(ev); found >= th.JackpotGold {
			fire(events.Alert{Type: events.AlertJackpotLoot, GoldFound: found})
		}
	}

	if st.HP <= th.LowHP {
		fire(events.Alert{Type: events.AlertLowHP, HP: events.IntPtr(st.HP)})
	}

	return st, alerts, events.NewSummary(ev.RunID, ev.Name(), st)
}

// merge applies the stat fields carried by ev. Absent fields keep their value;
// negative values are clamped to zero and rooms only ever grow.
func merge(st events.RunState, ev *events.Event) events.RunState {
	if ev.HP != nil {
		st.HP = clamp(*ev.HP)
	}
	if ev.Gold != nil {
		st.Gold = clamp(*ev.Gold)
	}
	if ev.XP != nil {
		st.XP = clamp(*ev.XP)
	}
	if ev.Room != nil {
		st.RoomsSeen = max(st.RoomsSeen, clamp(*ev.Room))
	}
	return st
}

// lootAmount resolves the gold found by a LOOT event:
// details.gold_found, then details.gold, then a flat gold_found, else 0.
// A value that is not an integral number counts as absent.
func lootAmount(ev *events.Event) int {
	if n, ok := ev.DetailInt("gold_found"); ok {
		return n
	}
	if n, ok := ev.DetailInt("gold"); ok {
		return n
	}
	if n, ok := ev.FieldInt("gold_found"); ok {
		return n
	}
	return 0
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	return events.IntPtr(*p)
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
