package events

// RunState is the rolling aggregate kept for a single run.
type RunState struct {
	HP         int  `json:"hp"`
	Gold       int  `json:"gold"`
	XP         int  `json:"xp"`
	RoomsSeen  int  `json:"rooms_seen"`
	BossSeen   bool `json:"boss_seen"`
	AlertCount int  `json:"alert_count"`
}

// DefaultHP is the health a run starts with.
const DefaultHP = 100

// NewRunState returns the state of a run that has not been seen before.
func NewRunState() RunState {
	return RunState{HP: DefaultHP}
}

// Thresholds configures when alerts fire. Read once at startup.
type Thresholds struct {
	LowHP       int
	JackpotGold int
}

const (
	DefaultLowHPThreshold       = 25
	DefaultJackpotGoldThreshold = 120
)

// DefaultThresholds returns the built-in thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowHP:       DefaultLowHPThreshold,
		JackpotGold: DefaultJackpotGoldThreshold,
	}
}
