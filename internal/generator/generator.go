// Package generator simulates dungeon runs and emits their events.
// It supports deterministic generation via seed-based RNG for reproducible test data.
package generator

import (
	"encoding/json"
	"math/rand"
	"time"

	"github.com/afikmenashe/dungeon-monitor/internal/config"
	"github.com/afikmenashe/dungeon-monitor/internal/events"

	"github.com/google/uuid"
)

// Event is one dungeon event in the wire shape the run monitor consumes.
type Event struct {
	RunID     string         `json:"run_id"`
	TS        string         `json:"ts"`
	Event     string         `json:"event"`
	Room      *int           `json:"room,omitempty"`
	HP        *int           `json:"hp,omitempty"`
	Gold      *int           `json:"gold,omitempty"`
	XP        *int           `json:"xp,omitempty"`
	Direction string         `json:"direction,omitempty"`
	Enemy     string         `json:"enemy,omitempty"`
	Trap      string         `json:"trap,omitempty"`
	Damage    int            `json:"damage,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Marshal encodes the event as JSON.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

const (
	tsLayout = "2006-01-02T15:04:05"

	minBossRoom = 5
	maxBossRoom = 10
	// bossWinChance is the probability that one round of a boss fight ends in victory.
	bossWinChance = 0.6
	maxLootGold   = 200
)

var (
	directions = []string{"N", "S", "E", "W"}
	enemies    = []string{"Goblin", "Skeleton", "Mimic", "Slime", "Bat"}
	loot       = []string{"Potion", "Silver Coin", "Gem", "Ancient Relic"}
	traps      = []string{"Spikes", "Poison Dart", "Falling Rock"}
	bosses     = []string{"Lich King", "Ancient Dragon", "Minotaur", "Beholder"}
	steps      = []events.Kind{events.KindMove, events.KindEncounter, events.KindLoot, events.KindTrap}
)

// run is the simulated state of one dungeon run.
type run struct {
	id       string
	room     int
	hp       int
	gold     int
	xp       int
	bossRoom int
	boss     string
	inFight  bool
}

// Generator keeps a fixed number of runs active. A run that ends, by defeating
// its boss or by dying, is replaced by a fresh one.
type Generator struct {
	rng  *rand.Rand
	runs []*run
	now  func() time.Time
}

// New creates a generator with cfg.Runs concurrent runs (at least one).
func New(cfg config.ProducerConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}

	n := cfg.Runs
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		g.runs = append(g.runs, g.newRun())
	}
	return g
}

// SetClock overrides the clock used for event timestamps.
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// ActiveRuns returns the IDs of the runs currently in progress.
func (g *Generator) ActiveRuns() []string {
	ids := make([]string, len(g.runs))
	for i, r := range g.runs {
		ids[i] = r.id
	}
	return ids
}

func (g *Generator) newRun() *run {
	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		id = uuid.New()
	}
	return &run{
		id:       id.String(),
		room:     1,
		hp:       events.DefaultHP,
		bossRoom: minBossRoom + g.rng.Intn(maxBossRoom-minBossRoom+1),
		boss:     g.selectFrom(bosses),
	}
}

func (g *Generator) selectFrom(choices []string) string {
	return choices[g.rng.Intn(len(choices))]
}

func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// Next advances a randomly chosen run by one step and returns the event it produced.
func (g *Generator) Next() *Event {
	i := g.rng.Intn(len(g.runs))
	r := g.runs[i]

	ev, finished := g.step(r)
	ev.RunID = r.id
	ev.TS = g.now().UTC().Format(tsLayout) + "Z"
	if finished {
		g.runs[i] = g.newRun()
	}
	return ev
}

// step applies one action to r and reports whether the run ended.
func (g *Generator) step(r *run) (*Event, bool) {
	if r.inFight {
		return g.bossRound(r)
	}

	switch steps[g.rng.Intn(len(steps))] {
	case events.KindMove:
		r.room++
		if r.room == r.bossRoom {
			r.inFight = true
			return &Event{
				Event:   string(events.KindBossIntro),
				Room:    events.IntPtr(r.room),
				Details: map[string]any{"boss": r.boss},
			}, false
		}
		return &Event{
			Event:     string(events.KindMove),
			Room:      events.IntPtr(r.room),
			Direction: g.selectFrom(directions),
		}, false

	case events.KindEncounter:
		enemy := g.selectFrom(enemies)
		dmg := g.between(5, 20)
		r.hp -= dmg
		r.xp += 10
		if r.hp <= 0 {
			return g.death(r, enemy), true
		}
		return &Event{
			Event:  string(events.KindEncounter),
			Enemy:  enemy,
			Damage: dmg,
			HP:     events.IntPtr(r.hp),
			XP:     events.IntPtr(r.xp),
		}, false

	case events.KindLoot:
		found := g.between(1, maxLootGold)
		r.gold += found
		return &Event{
			Event: string(events.KindLoot),
			Gold:  events.IntPtr(r.gold),
			Details: map[string]any{
				"item":       g.selectFrom(loot),
				"gold_found": found,
			},
		}, false

	default:
		trap := g.selectFrom(traps)
		dmg := g.between(3, 15)
		r.hp -= dmg
		if r.hp <= 0 {
			return g.death(r, trap), true
		}
		return &Event{
			Event:  string(events.KindTrap),
			Trap:   trap,
			Damage: dmg,
			HP:     events.IntPtr(r.hp),
		}, false
	}
}

func (g *Generator) bossRound(r *run) (*Event, bool) {
	if g.rng.Float64() < bossWinChance {
		r.xp += 100
		return &Event{
			Event:   string(events.KindBossDefeated),
			Room:    events.IntPtr(r.room),
			XP:      events.IntPtr(r.xp),
			Details: map[string]any{"boss": r.boss},
		}, true
	}

	dmg := g.between(10, 30)
	r.hp -= dmg
	if r.hp <= 0 {
		return g.death(r, r.boss), true
	}
	return &Event{
		Event:  string(events.KindEncounter),
		Enemy:  r.boss,
		Damage: dmg,
		HP:     events.IntPtr(r.hp),
	}, false
}

func (g *Generator) death(r *run, cause string) *Event {
	r.hp = 0
	return &Event{
		Event:   string(events.KindDeath),
		Room:    events.IntPtr(r.room),
		HP:      events.IntPtr(0),
		Details: map[string]any{"cause": cause},
	}
}
